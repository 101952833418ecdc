package domain

import "time"

// Notification severity levels.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is an in-app alert for the account, optionally tied to
// the document that triggered it.
type Notification struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Type              string    `json:"notification_type"`
	IsRead            bool      `json:"is_read"`
	RelatedDocumentID *string   `json:"related_document_id"`
	CreatedAt         time.Time `json:"created_at"`
}
