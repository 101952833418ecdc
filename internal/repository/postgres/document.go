package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helsejournal/internal/domain"
)

// DocumentRepository is the authoritative store for document rows.
type DocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) *DocumentRepository {
	return &DocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// metadataColumns are the columns loaded for listings and tree builds.
// The extracted text stays behind; only GetByID and the fallback
// search touch it.
func (r *DocumentRepository) metadataColumns() string {
	return fmt.Sprintf(`d.id, d.filename, d.original_filename, d.file_size, d.file_hash,
		d.title, d.description, d.year, d.hospital, d.doctor, d.document_date,
		d.document_type, d.is_processed, d.is_favorite, d.is_archived,
		(SELECT COUNT(*) FROM %s n WHERE n.document_id = d.id) AS note_count,
		d.created_at, d.updated_at`, r.tables.Notes)
}

func scanDocument(row pgx.Row, doc *domain.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalFilename,
		&doc.FileSize,
		&doc.FileHash,
		&doc.Title,
		&doc.Description,
		&doc.Year,
		&doc.Hospital,
		&doc.Doctor,
		&doc.DocumentDate,
		&doc.DocumentType,
		&doc.IsProcessed,
		&doc.IsFavorite,
		&doc.IsArchived,
		&doc.NoteCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create inserts a new document row. A hash collision means the same
// file was uploaded before; the conflict error carries the existing
// document's ID.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (filename, original_filename, file_size, file_hash, title,
			description, year, hospital, doctor, document_date, document_type,
			extracted_text, is_processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Filename,
		doc.OriginalFilename,
		doc.FileSize,
		doc.FileHash,
		doc.Title,
		doc.Description,
		doc.Year,
		doc.Hospital,
		doc.Doctor,
		doc.DocumentDate,
		doc.DocumentType,
		doc.ExtractedText,
		doc.IsProcessed,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			existingID, queryErr := r.getIDByHash(ctx, doc.FileHash)
			if queryErr != nil {
				return fmt.Errorf("document already exists: %w", domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      "this document already exists",
				ResourceType: "document",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID, including its extracted text.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s, d.extracted_text
		FROM %s d
		WHERE d.id = $1
	`, r.metadataColumns(), r.tables.Documents)

	var doc domain.Document
	executor := GetExecutor(ctx, r.pool)
	row := executor.QueryRow(ctx, query, id)
	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalFilename,
		&doc.FileSize,
		&doc.FileHash,
		&doc.Title,
		&doc.Description,
		&doc.Year,
		&doc.Hospital,
		&doc.Doctor,
		&doc.DocumentDate,
		&doc.DocumentType,
		&doc.IsProcessed,
		&doc.IsFavorite,
		&doc.IsArchived,
		&doc.NoteCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.ExtractedText,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// getIDByHash finds the document carrying the given file hash.
func (r *DocumentRepository) getIDByHash(ctx context.Context, hash string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE file_hash = $1`, r.tables.Documents)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, hash).Scan(&id); err != nil {
		return "", fmt.Errorf("get document by hash: %w", err)
	}
	return id, nil
}

// List returns non-archived document metadata, newest first, narrowed
// by the filter.
func (r *DocumentRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		WHERE d.is_archived = FALSE
	`, r.metadataColumns(), r.tables.Documents)

	var args []interface{}
	paramIndex := 1

	if filter.Year != nil {
		query += fmt.Sprintf(` AND d.year = $%d`, paramIndex)
		args = append(args, *filter.Year)
		paramIndex++
	}
	if filter.Hospital != "" {
		query += fmt.Sprintf(` AND d.hospital ILIKE $%d`, paramIndex)
		args = append(args, "%"+filter.Hospital+"%")
		paramIndex++
	}
	if filter.Favorite != nil {
		query += fmt.Sprintf(` AND d.is_favorite = $%d`, paramIndex)
		args = append(args, *filter.Favorite)
		paramIndex++
	}

	query += ` ORDER BY d.created_at DESC, d.id ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
		args = append(args, filter.Limit, filter.Skip)
	}

	return r.queryDocuments(ctx, query, args...)
}

// ListAll returns every non-archived document's metadata, newest
// first. The tree projector consumes this snapshot.
func (r *DocumentRepository) ListAll(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		WHERE d.is_archived = FALSE
		ORDER BY d.created_at DESC, d.id ASC
	`, r.metadataColumns(), r.tables.Documents)

	return r.queryDocuments(ctx, query)
}

// SearchLike is the relational fallback search: case-insensitive
// containment over title, hospital, doctor and original filename,
// newest first. No content-body match, no ranking.
func (r *DocumentRepository) SearchLike(ctx context.Context, q string, filters domain.SearchFilters) ([]domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		WHERE d.is_archived = FALSE
		  AND (d.title ILIKE $1 OR d.hospital ILIKE $1 OR d.doctor ILIKE $1 OR d.original_filename ILIKE $1)
	`, r.metadataColumns(), r.tables.Documents)

	args := []interface{}{"%" + q + "%"}
	paramIndex := 2

	if filters.Year != nil {
		query += fmt.Sprintf(` AND d.year = $%d`, paramIndex)
		args = append(args, *filters.Year)
		paramIndex++
	}
	if filters.Hospital != "" {
		query += fmt.Sprintf(` AND LOWER(d.hospital) = LOWER($%d)`, paramIndex)
		args = append(args, filters.Hospital)
	}

	query += ` ORDER BY d.created_at DESC, d.id ASC`

	return r.queryDocuments(ctx, query, args...)
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]domain.Document, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Return empty slice instead of nil
	if documents == nil {
		documents = []domain.Document{}
	}

	return documents, nil
}

// Update writes document metadata. Fixed upload facts (filename, size,
// hash, extracted text) never change here.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, year = $3, hospital = $4, doctor = $5,
			document_date = $6, document_type = $7, is_favorite = $8,
			is_archived = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.Description,
		doc.Year,
		doc.Hospital,
		doc.Doctor,
		doc.DocumentDate,
		doc.DocumentType,
		doc.IsFavorite,
		doc.IsArchived,
		doc.ID,
	).Scan(&doc.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *DocumentRepository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_favorite = NOT is_favorite, updated_at = NOW()
		WHERE id = $1
		RETURNING is_favorite
	`, r.tables.Documents)

	var favorite bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&favorite); err != nil {
		if IsPgNoRowsError(err) {
			return false, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	return favorite, nil
}

// Delete removes a document row. Notes and share links go with it via
// ON DELETE CASCADE.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
