// Package dbtest provides helpers for testing database code.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/starquake/kuis/internal/database"
)

// Open opens an in-memory database with the documents table migrated.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db := OpenUnmigrated(t)

	database.SetupGoose()
	if err := database.Migrate(t.Context(), db); err != nil {
		t.Fatalf("error migrating test database: %v", err)
	}

	return db
}

// OpenUnmigrated opens an empty in-memory database. The connection is closed when the test ends.
func OpenUnmigrated(t *testing.T) *sql.DB {
	t.Helper()

	// A single connection keeps every query on the same in-memory database.
	db, err := database.Open(t.Context(), "sqlite", ":memory:", 1, 1, 0)
	if err != nil {
		t.Fatalf("error opening test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("error closing test database: %v", closeErr)
		}
	})

	return db
}

// CountDocuments returns the number of rows in the documents table.
func CountDocuments(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		t.Fatalf("error counting documents: %v", err)
	}

	return n
}
