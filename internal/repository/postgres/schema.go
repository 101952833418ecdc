package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes this application needs.
// Statements are idempotent so startup can always run them.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				username VARCHAR(50) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				email VARCHAR(100),
				full_name VARCHAR(100),
				language VARCHAR(10) NOT NULL DEFAULT 'en',
				theme VARCHAR(10) NOT NULL DEFAULT 'light',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				filename VARCHAR(255) NOT NULL,
				original_filename VARCHAR(255) NOT NULL,
				file_size BIGINT NOT NULL,
				file_hash VARCHAR(64) NOT NULL UNIQUE,
				title VARCHAR(255) NOT NULL DEFAULT '',
				description TEXT,
				year INTEGER,
				hospital VARCHAR(255),
				doctor VARCHAR(255),
				document_date TIMESTAMPTZ,
				document_type VARCHAR(100) NOT NULL DEFAULT '',
				extracted_text TEXT NOT NULL DEFAULT '',
				is_processed BOOLEAN NOT NULL DEFAULT FALSE,
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_year_hospital ON %s (year, hospital)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				document_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				page_number INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Notes, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_document ON %s (document_id)`,
			tables.Notes, tables.Notes),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				document_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
				token VARCHAR(64) NOT NULL UNIQUE,
				expires_at TIMESTAMPTZ,
				max_views INTEGER,
				view_count INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.ShareLinks, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL,
				notification_type VARCHAR(50) NOT NULL DEFAULT 'info',
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				related_document_id UUID REFERENCES %s (id) ON DELETE SET NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Notifications, tables.Users, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user_read ON %s (user_id, is_read)`,
			tables.Notifications, tables.Notifications),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
