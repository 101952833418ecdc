package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helsejournal/internal/domain"
)

type memShareStore struct {
	links  map[string]*domain.ShareLink
	nextID int
}

func newMemShareStore() *memShareStore {
	return &memShareStore{links: make(map[string]*domain.ShareLink)}
}

func (s *memShareStore) Create(ctx context.Context, link *domain.ShareLink) error {
	s.nextID++
	link.ID = string(rune('0' + s.nextID))
	link.CreatedAt = time.Now()
	copied := *link
	s.links[link.ID] = &copied
	return nil
}

func (s *memShareStore) GetActiveByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	for _, link := range s.links {
		if link.Token == token && link.IsActive {
			copied := *link
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memShareStore) IncrementViews(ctx context.Context, id string) (int, error) {
	link, ok := s.links[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	link.ViewCount++
	return link.ViewCount, nil
}

func (s *memShareStore) Deactivate(ctx context.Context, id string) error {
	link, ok := s.links[id]
	if !ok {
		return domain.ErrNotFound
	}
	link.IsActive = false
	return nil
}

func (s *memShareStore) GetByID(ctx context.Context, id, documentID string) (*domain.ShareLink, error) {
	link, ok := s.links[id]
	if !ok || link.DocumentID != documentID {
		return nil, domain.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

type stubFileOpener struct{}

func (stubFileOpener) Open(filename string) (io.ReadSeekCloser, error) {
	return nopReadSeekCloser{bytes.NewReader([]byte("%PDF"))}, nil
}

type stubDocGetter struct {
	docs map[string]*domain.Document
}

func (s *stubDocGetter) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestShareService() (*ShareService, *memShareStore) {
	links := newMemShareStore()
	docs := &stubDocGetter{docs: map[string]*domain.Document{
		"doc-1": {ID: "doc-1", Filename: "stored.pdf", OriginalFilename: "a.pdf"},
	}}
	svc := NewShareService(links, docs, stubFileOpener{}, passthroughTx{})
	return svc, links
}

func TestShareCreateAndAccess(t *testing.T) {
	svc, _ := newTestShareService()

	link, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, link.Token)
	assert.True(t, link.IsActive)
	assert.Nil(t, link.ExpiresAt)

	doc, reader, err := svc.Access(context.Background(), link.Token)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "doc-1", doc.ID)
}

func TestShareCreateUnknownDocument(t *testing.T) {
	svc, _ := newTestShareService()

	_, err := svc.Create(context.Background(), "missing", CreateShareRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareTokensAreUnique(t *testing.T) {
	svc, _ := newTestShareService()

	a, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestShareAccessUnknownToken(t *testing.T) {
	svc, _ := newTestShareService()

	_, _, err := svc.Access(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareExpiryDeactivatesLink(t *testing.T) {
	svc, links := newTestShareService()

	days := 2
	link, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{ExpiresInDays: &days})
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)

	// Jump past the expiry.
	svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }

	_, _, err = svc.Access(context.Background(), link.Token)
	assert.ErrorIs(t, err, domain.ErrGone)
	assert.False(t, links.links[link.ID].IsActive, "expired link must be deactivated")

	// A dead token now reads as not found, matching any other unknown token.
	_, _, err = svc.Access(context.Background(), link.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareViewBudget(t *testing.T) {
	svc, links := newTestShareService()

	max := 2
	link, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{MaxViews: &max})
	require.NoError(t, err)

	for i := 0; i < max; i++ {
		_, reader, err := svc.Access(context.Background(), link.Token)
		require.NoError(t, err)
		reader.Close()
	}

	_, _, err = svc.Access(context.Background(), link.Token)
	assert.ErrorIs(t, err, domain.ErrGone)
	assert.False(t, links.links[link.ID].IsActive)
}

func TestShareRevoke(t *testing.T) {
	svc, links := newTestShareService()

	link, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), "doc-1", link.ID))
	assert.False(t, links.links[link.ID].IsActive)

	_, _, err = svc.Access(context.Background(), link.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareRevokeWrongDocument(t *testing.T) {
	svc, _ := newTestShareService()

	link, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{})
	require.NoError(t, err)

	err = svc.Revoke(context.Background(), "doc-2", link.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareCreateValidation(t *testing.T) {
	svc, _ := newTestShareService()

	bad := 0
	_, err := svc.Create(context.Background(), "doc-1", CreateShareRequest{MaxViews: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
