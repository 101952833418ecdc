package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"helsejournal/internal/domain"
)

// NoteRepository stores document annotations.
type NoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) *NoteRepository {
	return &NoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a note for a document.
func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, content, page_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.Notes)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		note.DocumentID,
		note.Content,
		note.PageNumber,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", note.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// ListByDocument returns a document's notes, newest first.
func (r *NoteRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, content, page_number, created_at, updated_at
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at DESC, id ASC
	`, r.tables.Notes)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var note domain.Note
		err := rows.Scan(
			&note.ID,
			&note.DocumentID,
			&note.Content,
			&note.PageNumber,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	if notes == nil {
		notes = []domain.Note{}
	}

	return notes, nil
}

// Delete removes a note, scoped to its document so a note ID from one
// document cannot delete another document's note.
func (r *NoteRepository) Delete(ctx context.Context, id, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND document_id = $2`, r.tables.Notes)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, documentID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
