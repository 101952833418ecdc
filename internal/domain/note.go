package domain

import "time"

// Note is a free-text annotation on a document, optionally pinned to a
// page. The page number is not checked against the actual page count.
type Note struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	PageNumber *int      `json:"page_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
