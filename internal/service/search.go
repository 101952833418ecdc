package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"helsejournal/internal/domain"
	"helsejournal/internal/metrics"
)

const (
	minQueryLength = 2
	searchLimit    = 50
)

// searchIndex is the full-text side of a search. Query returns ranked
// hits; an unreachable index surfaces domain.ErrIndexUnavailable.
type searchIndex interface {
	Query(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.IndexHit, error)
}

// searchStore is the relational side: authoritative metadata for hits
// and the substring fallback when the index is down.
type searchStore interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	SearchLike(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Document, error)
}

// SearchService joins full-text index hits with relational metadata.
// The index ranks and snippets; the database is the source of truth
// for everything shown to the user.
type SearchService struct {
	index  searchIndex
	store  searchStore
	logger *slog.Logger
}

func NewSearchService(index searchIndex, store searchStore, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: store, logger: logger}
}

// Search runs a user query. Queries shorter than two characters return
// an empty result without touching the index. When the index is
// unreachable the relational fallback serves degraded results; when
// the index rejects the query the result is empty rather than an
// error, so a stray syntax character never breaks the search box.
func (s *SearchService) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return []domain.SearchResult{}, nil
	}

	hits, err := s.index.Query(ctx, query, filters, searchLimit)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			metrics.SearchFallbacks.Inc()
			s.logger.Warn("search index unavailable, using relational fallback", "error", err)
			return s.fallback(ctx, query, filters)
		}
		metrics.SearchIndexErrors.Inc()
		s.logger.Warn("search index rejected query", "query", query, "error", err)
		return []domain.SearchResult{}, nil
	}
	metrics.SearchIndexQueries.Inc()

	// Index order is score-ranked but not fully deterministic across
	// equal scores; pin the tie-break on document ID.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		doc, err := s.store.GetByID(ctx, hit.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Stale hit: deleted from the store but still
				// indexed. Drop it silently.
				continue
			}
			return nil, fmt.Errorf("resolve search hit %s: %w", hit.DocumentID, err)
		}
		if doc.IsArchived || !matchesFilters(doc, filters) {
			continue
		}
		results = append(results, toSearchResult(doc, hit))
	}
	return results, nil
}

// fallback serves results from the relational store, ordered newest
// first. No ranking or highlighting is available on this path.
func (s *SearchService) fallback(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	docs, err := s.store.SearchLike(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(docs))
	for _, doc := range docs {
		doc := doc
		results = append(results, toSearchResult(&doc, domain.IndexHit{}))
	}
	return results, nil
}

// matchesFilters re-checks filters against stored metadata. The index
// applies them too, but its copy can lag a metadata edit; the store
// wins.
func matchesFilters(doc *domain.Document, filters domain.SearchFilters) bool {
	if filters.Year != nil {
		if doc.Year == nil || *doc.Year != *filters.Year {
			return false
		}
	}
	if filters.Hospital != "" {
		if doc.Hospital == nil || !strings.EqualFold(*doc.Hospital, filters.Hospital) {
			return false
		}
	}
	return true
}

func toSearchResult(doc *domain.Document, hit domain.IndexHit) domain.SearchResult {
	return domain.SearchResult{
		ID:               doc.ID,
		Title:            doc.DisplayTitle(),
		OriginalFilename: doc.OriginalFilename,
		Year:             doc.Year,
		Hospital:         doc.Hospital,
		Doctor:           doc.Doctor,
		Highlight:        hit.Snippet,
		Score:            hit.Score,
	}
}
