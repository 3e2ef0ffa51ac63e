package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wedshare/album-backend/pkg/album"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres is a database-backed metadata store. Each key is one row and
// writes are per-key upserts, so the merge contract holds without a
// read-merge-write cycle.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a new PostgreSQL metadata store
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// NewPostgresWithPool creates a new PostgreSQL metadata store backed by a connection pool
func NewPostgresWithPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

// CreateSchema creates the metadata table if it does not exist yet.
func (p *Postgres) CreateSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS media_metadata (
			object_key    TEXT PRIMARY KEY,
			title         TEXT NOT NULL DEFAULT '',
			uploader_name TEXT NOT NULL DEFAULT '',
			media_type    TEXT NOT NULL DEFAULT '',
			created_date  TIMESTAMPTZ,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := p.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create media_metadata table: %w", err)
	}
	return nil
}

// Read returns the full mapping of tracked keys
func (p *Postgres) Read(ctx context.Context) (map[string]album.MetadataRecord, error) {
	query := `
		SELECT object_key, title, uploader_name, media_type, created_date
		FROM media_metadata`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata rows: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]album.MetadataRecord)
	for rows.Next() {
		var key string
		var record album.MetadataRecord
		if err := rows.Scan(&key, &record.Title, &record.UploaderName, &record.MediaType, &record.CreatedDate); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		entries[key] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata rows: %w", err)
	}
	return entries, nil
}

// Write upserts one row per entry
func (p *Postgres) Write(ctx context.Context, entries map[string]album.MetadataRecord) error {
	query := `
		INSERT INTO media_metadata (object_key, title, uploader_name, media_type, created_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (object_key) DO UPDATE SET
			title = EXCLUDED.title,
			uploader_name = EXCLUDED.uploader_name,
			media_type = EXCLUDED.media_type,
			created_date = EXCLUDED.created_date,
			updated_at = now()`

	for key, record := range entries {
		if _, err := p.db.Exec(ctx, query, key, record.Title, record.UploaderName, record.MediaType, record.CreatedDate); err != nil {
			return fmt.Errorf("failed to upsert metadata for %s: %w", key, err)
		}
	}
	return nil
}
