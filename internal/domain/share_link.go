package domain

import "time"

// ShareLink grants unauthenticated access to one document via an
// opaque token, limited by expiry and/or a view budget.
type ShareLink struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Token      string     `json:"token"`
	ExpiresAt  *time.Time `json:"expires_at"`
	MaxViews   *int       `json:"max_views"`
	ViewCount  int        `json:"view_count"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the link's expiry has passed.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// Exhausted reports whether the link's view budget is used up.
func (l *ShareLink) Exhausted() bool {
	return l.MaxViews != nil && l.ViewCount >= *l.MaxViews
}
