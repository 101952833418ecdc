package search

import (
	"context"

	"helsejournal/internal/domain"
)

// Unavailable returns an index whose every operation reports
// domain.ErrIndexUnavailable. It stands in when the index cannot be
// reached at startup, so the rest of the service runs in degraded mode
// instead of refusing to start.
func Unavailable() *DisabledIndex {
	return &DisabledIndex{}
}

type DisabledIndex struct{}

func (*DisabledIndex) Ping(ctx context.Context) error {
	return domain.ErrIndexUnavailable
}

func (*DisabledIndex) EnsureIndex(ctx context.Context) error {
	return domain.ErrIndexUnavailable
}

func (*DisabledIndex) IndexDocument(ctx context.Context, doc *domain.Document) error {
	return domain.ErrIndexUnavailable
}

func (*DisabledIndex) RemoveDocument(ctx context.Context, id string) error {
	return domain.ErrIndexUnavailable
}

func (*DisabledIndex) Query(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.IndexHit, error) {
	return nil, domain.ErrIndexUnavailable
}

func (*DisabledIndex) Close() {}
