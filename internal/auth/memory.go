package auth

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session Session
	expires time.Time
}

// MemorySessions keeps sessions in process memory. Sessions are lost on restart.
type MemorySessions struct {
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
}

// NewMemorySessions returns an empty MemorySessions using now as its clock.
func NewMemorySessions(now func() time.Time) *MemorySessions {
	return &MemorySessions{
		now:      now,
		sessions: make(map[string]memoryEntry),
	}
}

// Save stores s under id until ttl elapses.
func (m *MemorySessions) Save(_ context.Context, id string, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = memoryEntry{session: s, expires: m.now().Add(ttl)}

	return nil
}

// Load returns the session stored under id. Expired sessions are removed.
func (m *MemorySessions) Load(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)

		return Session{}, ErrSessionNotFound
	}

	return e.session, nil
}

// Delete removes the session stored under id.
func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)

	return nil
}
