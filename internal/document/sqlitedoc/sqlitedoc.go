// Package sqlitedoc stores documents as rows of a SQLite table.
package sqlitedoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starquake/kuis/internal/document"
)

const (
	getDocumentSQL = `SELECT body FROM documents WHERE name = ?`
	putDocumentSQL = `INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
)

// Storage is a document.Storage backed by the documents table.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Storage using conn. The documents table must have been migrated.
func New(conn *sql.DB) *Storage {
	return &Storage{db: conn, now: time.Now}
}

// Get returns the body of the named document.
func (s *Storage) Get(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, getDocumentSQL, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", document.ErrNotExist, name)
		}

		return nil, fmt.Errorf("error querying document %q: %w", name, err)
	}

	return body, nil
}

// Put inserts or replaces the named document.
func (s *Storage) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, putDocumentSQL, name, data, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("error writing document %q: %w", name, err)
	}

	return nil
}

// Ping verifies the connection to the database.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
