package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"helsejournal/internal/domain"
)

// ShareLinkRepository stores share tokens and their view budgets.
type ShareLinkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewShareLinkRepository creates a new share link repository
func NewShareLinkRepository(config *RepositoryConfig) *ShareLinkRepository {
	return &ShareLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a share link.
func (r *ShareLinkRepository) Create(ctx context.Context, link *domain.ShareLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, token, expires_at, max_views)
		VALUES ($1, $2, $3, $4)
		RETURNING id, view_count, is_active, created_at
	`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		link.DocumentID,
		link.Token,
		link.ExpiresAt,
		link.MaxViews,
	).Scan(&link.ID, &link.ViewCount, &link.IsActive, &link.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", link.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create share link: %w", err)
	}

	return nil
}

// GetActiveByToken loads an active link by its token. The row is
// locked so concurrent redemptions inside a transaction serialize on
// the view counter.
func (r *ShareLinkRepository) GetActiveByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, token, expires_at, max_views, view_count, is_active, created_at
		FROM %s
		WHERE token = $1 AND is_active = TRUE
		FOR UPDATE
	`, r.tables.ShareLinks)

	var link domain.ShareLink
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, token).Scan(
		&link.ID,
		&link.DocumentID,
		&link.Token,
		&link.ExpiresAt,
		&link.MaxViews,
		&link.ViewCount,
		&link.IsActive,
		&link.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("share link: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	return &link, nil
}

// IncrementViews bumps the view counter and returns the new count.
func (r *ShareLinkRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`, r.tables.ShareLinks)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment share views: %w", err)
	}

	return count, nil
}

// Deactivate turns a share link off. Used both for explicit revocation
// and when expiry or the view budget is hit.
func (r *ShareLinkRepository) Deactivate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = FALSE WHERE id = $1`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate share link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// GetByID retrieves a share link scoped to its document.
func (r *ShareLinkRepository) GetByID(ctx context.Context, id, documentID string) (*domain.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, token, expires_at, max_views, view_count, is_active, created_at
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, r.tables.ShareLinks)

	var link domain.ShareLink
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, documentID).Scan(
		&link.ID,
		&link.DocumentID,
		&link.Token,
		&link.ExpiresAt,
		&link.MaxViews,
		&link.ViewCount,
		&link.IsActive,
		&link.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	return &link, nil
}
