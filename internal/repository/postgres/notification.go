package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"helsejournal/internal/domain"
)

// NotificationRepository stores in-app alerts.
type NotificationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(config *RepositoryConfig) *NotificationRepository {
	return &NotificationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a notification for a user.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, message, notification_type, related_document_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.UserID,
		n.Title,
		n.Message,
		n.Type,
		n.RelatedDocumentID,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("user %s: %w", n.UserID, domain.ErrNotFound)
		}
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByUser returns a user's notifications, newest first. With
// unreadOnly set, read notifications are filtered out.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, message, notification_type, is_read, related_document_id, created_at
		FROM %s
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, id ASC
		LIMIT $3
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.RelatedDocumentID,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}

	return notifications, nil
}

// MarkRead flags one notification as read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_read = TRUE WHERE id = $1 AND user_id = $2`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkAllRead flags every unread notification for a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}

	return nil
}
