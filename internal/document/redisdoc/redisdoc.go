// Package redisdoc stores documents as Redis string keys.
package redisdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/starquake/kuis/internal/document"
)

// Storage is a document.Storage keeping each document under <prefix>doc:<name>.
type Storage struct {
	client *redis.Client
	prefix string
}

// New returns a Storage using client. prefix namespaces every key, e.g. "kuis:".
func New(client *redis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

// Get returns the named document.
func (s *Storage) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %q", document.ErrNotExist, name)
		}

		return nil, fmt.Errorf("error reading document %q: %w", name, err)
	}

	return data, nil
}

// Put replaces the named document. Documents never expire.
func (s *Storage) Put(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("error writing document %q: %w", name, err)
	}

	return nil
}

// Ping checks the Redis connection.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (s *Storage) key(name string) string {
	return s.prefix + "doc:" + name
}
