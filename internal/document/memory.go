package document

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStorage keeps documents in process memory. Contents are lost on restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string][]byte)}
}

// Get returns a copy of the named document.
func (s *MemoryStorage) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotExist, name)
	}

	return slices.Clone(data), nil
}

// Put stores a copy of data under name.
func (s *MemoryStorage) Put(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = slices.Clone(data)

	return nil
}

// Ping always succeeds.
func (*MemoryStorage) Ping(_ context.Context) error {
	return nil
}
