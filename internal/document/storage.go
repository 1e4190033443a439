// Package document stores whole JSON documents that map category names to record lists.
// A document is always read and written as a unit. The backing Storage is injected so the
// same collection logic runs against flat files, SQLite, Redis or memory.
package document

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Storage.Get when the named document has never been written.
var ErrNotExist = errors.New("document does not exist")

// Storage loads and saves raw documents by name.
type Storage interface {
	// Get returns the stored bytes of a document. Returns ErrNotExist if there is none.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put replaces the document with data.
	Put(ctx context.Context, name string, data []byte) error
	// Ping checks that the storage is reachable.
	Ping(ctx context.Context) error
}
