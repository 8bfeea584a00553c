// Package store indexes rendered audio artifacts in SQLite so the retention
// sweeper can find and expire them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/audio"
	"github.com/RobinCoderZhao/newsninja/pkg/storage"
)

// Schema is the SQLite schema for the artifact index. Timestamps are unix
// milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id          TEXT PRIMARY KEY,
    path        TEXT NOT NULL UNIQUE,
    label       TEXT NOT NULL DEFAULT '',
    provider    TEXT NOT NULL,
    size        INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL,
    deleted_at  INTEGER
);

CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
`

// ErrNotFound is returned when an artifact id is unknown.
var ErrNotFound = errors.New("artifact not found")

// Record is one indexed artifact.
type Record struct {
	ID        string
	Path      string
	Label     string
	Provider  string
	Size      int64
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Stats summarizes the index.
type Stats struct {
	Live      int
	Deleted   int
	LiveBytes int64
}

// Store provides artifact index persistence.
type Store struct {
	db *storage.DB
}

// New wraps an open database and initializes the schema.
func New(ctx context.Context, db *storage.DB) (*Store, error) {
	if err := db.Migrate(ctx, Schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open opens the database described by cfg and initializes the schema.
func Open(ctx context.Context, cfg storage.Config) (*Store, error) {
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordArtifact indexes a rendered artifact and returns its id. Rendering
// to an already indexed path replaces the old entry.
func (s *Store) RecordArtifact(ctx context.Context, a audio.Artifact) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, path, label, provider, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id, label = excluded.label, provider = excluded.provider,
			size = excluded.size, created_at = excluded.created_at, deleted_at = NULL
	`, id, a.Path, a.Label, a.Provider, a.Size, a.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("record artifact: %w", err)
	}
	return id, nil
}

// Get returns one artifact by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, label, provider, size, created_at, deleted_at
		FROM artifacts WHERE id = ?
	`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// Expired returns live artifacts created before the cutoff, oldest first.
func (s *Store) Expired(ctx context.Context, before time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, label, provider, size, created_at, deleted_at
		FROM artifacts
		WHERE deleted_at IS NULL AND created_at < ?
		ORDER BY created_at ASC
	`, before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query expired: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// MarkDeleted records that the artifact's file is gone.
func (s *Store) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE artifacts SET deleted_at = ? WHERE id = ?`, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsTracked reports whether path belongs to an indexed artifact.
func (s *Store) IsTracked(ctx context.Context, path string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts WHERE path = ?`, path).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats counts live and deleted artifacts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN deleted_at IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN deleted_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN deleted_at IS NULL THEN size ELSE 0 END), 0)
		FROM artifacts
	`).Scan(&st.Live, &st.Deleted, &st.LiveBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		r         Record
		createdMs int64
		deletedMs sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Path, &r.Label, &r.Provider, &r.Size, &createdMs, &deletedMs); err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(createdMs)
	if deletedMs.Valid {
		t := time.UnixMilli(deletedMs.Int64)
		r.DeletedAt = &t
	}
	return &r, nil
}
