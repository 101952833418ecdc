package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helsejournal/internal/domain"
)

type stubIndex struct {
	hits    []domain.IndexHit
	err     error
	queries int
}

func (s *stubIndex) Query(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.IndexHit, error) {
	s.queries++
	return s.hits, s.err
}

type stubStore struct {
	docs         map[string]*domain.Document
	fallbackDocs []domain.Document
	fallbackErr  error
	fallbacks    int
}

func (s *stubStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *stubStore) SearchLike(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Document, error) {
	s.fallbacks++
	return s.fallbackDocs, s.fallbackErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearchShortQuerySkipsIndex(t *testing.T) {
	index := &stubIndex{}
	svc := NewSearchService(index, &stubStore{}, discardLogger())

	for _, q := range []string{"", " ", "a", " a "} {
		results, err := svc.Search(context.Background(), q, domain.SearchFilters{})
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Zero(t, index.queries, "short queries must never reach the index")
}

func TestSearchJoinsHitsWithMetadata(t *testing.T) {
	index := &stubIndex{hits: []domain.IndexHit{
		{DocumentID: "d1", Score: 2.0, Snippet: "<b>blood</b> sample"},
		{DocumentID: "d2", Score: 1.0},
	}}
	store := &stubStore{docs: map[string]*domain.Document{
		"d1": {ID: "d1", Title: "Lab results", Year: intptr(2023)},
		"d2": {ID: "d2", Title: "Referral"},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "blood", domain.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "d1", results[0].ID)
	assert.Equal(t, "Lab results", results[0].Title)
	assert.Equal(t, "<b>blood</b> sample", results[0].Highlight)
	assert.Equal(t, 2.0, results[0].Score)
	assert.Equal(t, "d2", results[1].ID)
}

func TestSearchDropsStaleHits(t *testing.T) {
	index := &stubIndex{hits: []domain.IndexHit{
		{DocumentID: "gone", Score: 5.0},
		{DocumentID: "d1", Score: 1.0},
	}}
	store := &stubStore{docs: map[string]*domain.Document{
		"d1": {ID: "d1", Title: "Still here"},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "anything", domain.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].ID)
}

func TestSearchDropsArchivedHits(t *testing.T) {
	index := &stubIndex{hits: []domain.IndexHit{{DocumentID: "d1", Score: 1.0}}}
	store := &stubStore{docs: map[string]*domain.Document{
		"d1": {ID: "d1", IsArchived: true},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "anything", domain.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchReappliesFiltersAgainstStore(t *testing.T) {
	// The index can lag behind a metadata edit; the stored year wins.
	index := &stubIndex{hits: []domain.IndexHit{
		{DocumentID: "d", Score: 2.0},
		{DocumentID: "e", Score: 1.0},
	}}
	store := &stubStore{docs: map[string]*domain.Document{
		"d": {ID: "d", Year: intptr(2023)},
		"e": {ID: "e", Year: intptr(2021)},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "scan", domain.SearchFilters{Year: intptr(2023)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d", results[0].ID)
}

func TestSearchEqualScoresOrderByID(t *testing.T) {
	index := &stubIndex{hits: []domain.IndexHit{
		{DocumentID: "z", Score: 1.0},
		{DocumentID: "a", Score: 1.0},
		{DocumentID: "m", Score: 3.0},
	}}
	store := &stubStore{docs: map[string]*domain.Document{
		"a": {ID: "a"}, "m": {ID: "m"}, "z": {ID: "z"},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "tie", domain.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "m", results[0].ID)
	assert.Equal(t, "a", results[1].ID)
	assert.Equal(t, "z", results[2].ID)
}

func TestSearchFallsBackWhenIndexUnavailable(t *testing.T) {
	index := &stubIndex{err: domain.ErrIndexUnavailable}
	store := &stubStore{fallbackDocs: []domain.Document{
		{ID: "newer", Title: "Newer"},
		{ID: "older", Title: "Older"},
	}}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "scan", domain.SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.fallbacks)
	require.Len(t, results, 2)

	// Fallback results keep store order and carry no ranking.
	assert.Equal(t, "newer", results[0].ID)
	assert.Zero(t, results[0].Score)
	assert.Empty(t, results[0].Highlight)
}

func TestSearchFallbackErrorPropagates(t *testing.T) {
	index := &stubIndex{err: domain.ErrIndexUnavailable}
	store := &stubStore{fallbackErr: errors.New("connection refused")}
	svc := NewSearchService(index, store, discardLogger())

	_, err := svc.Search(context.Background(), "scan", domain.SearchFilters{})
	require.Error(t, err)
}

func TestSearchRejectedQueryYieldsEmptyResult(t *testing.T) {
	// A syntax error from the index is not an outage: no fallback, no
	// user-facing failure.
	index := &stubIndex{err: errors.New("Syntax error at offset 3")}
	store := &stubStore{}
	svc := NewSearchService(index, store, discardLogger())

	results, err := svc.Search(context.Background(), "a{b", domain.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, store.fallbacks)
}

func TestSearchStoreErrorPropagates(t *testing.T) {
	index := &stubIndex{hits: []domain.IndexHit{{DocumentID: "d1"}}}
	store := &errStore{}
	svc := NewSearchService(index, store, discardLogger())

	_, err := svc.Search(context.Background(), "scan", domain.SearchFilters{})
	require.Error(t, err)
}

type errStore struct{}

func (errStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return nil, errors.New("connection reset")
}

func (errStore) SearchLike(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Document, error) {
	return nil, errors.New("connection reset")
}
