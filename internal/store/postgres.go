// Package store persists analysis results in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/filemeta/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_metadata_analyses (
	id          UUID PRIMARY KEY,
	file_name   TEXT        NOT NULL,
	charset     TEXT        NOT NULL,
	delimiter   TEXT        NOT NULL,
	enclosure   TEXT        NOT NULL DEFAULT '',
	field_count INTEGER     NOT NULL,
	bad_headers INTEGER     NOT NULL,
	bad_footers INTEGER     NOT NULL,
	data_lines  INTEGER     NOT NULL,
	has_header  BOOLEAN     NOT NULL,
	fields      JSONB       NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS file_metadata_analyses_analyzed_at_idx
	ON file_metadata_analyses (analyzed_at DESC);
`

const insertSQL = `
INSERT INTO file_metadata_analyses
	(id, file_name, charset, delimiter, enclosure, field_count,
	 bad_headers, bad_footers, data_lines, has_header, fields, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectColumns = `
SELECT id, file_name, charset, delimiter, enclosure, field_count,
       bad_headers, bad_footers, data_lines, has_header, fields, analyzed_at
FROM file_metadata_analyses`

// Postgres is a core.HistoryStore backed by a single table.
type Postgres struct {
	db DBTX
}

var _ core.HistoryStore = (*Postgres)(nil)

// NewPostgres wraps db. Call EnsureSchema once before use.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the analyses table and its index if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save inserts meta. The ID must be a UUID.
func (p *Postgres) Save(ctx context.Context, meta *core.FileMetadata) error {
	id, err := toPgUUID(meta.ID)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	fields, err := json.Marshal(meta.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	_, err = p.db.Exec(ctx, insertSQL,
		id,
		meta.FileName,
		meta.Charset,
		meta.Delimiter,
		meta.Enclosure,
		meta.FieldCount,
		meta.BadHeaders,
		meta.BadFooters,
		meta.DataLines,
		meta.HasHeader,
		fields,
		meta.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", meta.ID, err)
	}
	return nil
}

// Get returns one analysis. Unknown or malformed IDs yield core.ErrAnalysisNotFound.
func (p *Postgres) Get(ctx context.Context, id string) (*core.FileMetadata, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, core.ErrAnalysisNotFound)
	}

	meta, err := scanAnalysis(p.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, core.ErrAnalysisNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return meta, nil
}

// Recent returns up to limit analyses, newest first.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]core.FileMetadata, error) {
	rows, err := p.db.Query(ctx, selectColumns+` ORDER BY analyzed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []core.FileMetadata
	for rows.Next() {
		meta, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, *meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

func scanAnalysis(row pgx.Row) (*core.FileMetadata, error) {
	var (
		meta       core.FileMetadata
		id         pgtype.UUID
		fields     []byte
		analyzedAt time.Time
	)
	err := row.Scan(
		&id,
		&meta.FileName,
		&meta.Charset,
		&meta.Delimiter,
		&meta.Enclosure,
		&meta.FieldCount,
		&meta.BadHeaders,
		&meta.BadFooters,
		&meta.DataLines,
		&meta.HasHeader,
		&fields,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fields, &meta.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	meta.ID = pgUUIDToString(id)
	meta.AnalyzedAt = analyzedAt.UTC()
	return &meta, nil
}

func toPgUUID(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid analysis id %q: %w", s, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func pgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
