package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// InMemoryBackend is a SessionStore shared process-wide, for tests and
// throwaway runs.
type InMemoryBackend struct {
	sessionID string
}

var memorySessions = struct {
	sync.RWMutex
	m map[string][]byte
}{m: make(map[string][]byte)}

// NewInMemoryBackend returns a store for sessionID.
func NewInMemoryBackend(sessionID string) (*InMemoryBackend, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}
	return &InMemoryBackend{sessionID: sessionID}, nil
}

// LoadSession implements SessionStore. The result is a private copy.
func (b *InMemoryBackend) LoadSession(sessionID string) (*Session, error) {
	if sessionID != b.sessionID {
		return nil, fmt.Errorf("session ID mismatch: backend is for %q, got %q", b.sessionID, sessionID)
	}
	memorySessions.RLock()
	data, ok := memorySessions.m[sessionID]
	memorySessions.RUnlock()
	if !ok {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session copy: %w", err)
	}
	return &s, nil
}

// SaveSession implements SessionStore.
func (b *InMemoryBackend) SaveSession(s *Session) error {
	if s.ID != b.sessionID {
		return fmt.Errorf("session ID mismatch: backend is for %q, got %q", b.sessionID, s.ID)
	}
	s.Version = currentSchemaVersion
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	memorySessions.Lock()
	memorySessions.m[s.ID] = data
	memorySessions.Unlock()
	return nil
}

// Close implements SessionStore.
func (b *InMemoryBackend) Close() error { return nil }

// ClearAllInMemorySessions drops every in-memory session. Tests only.
func ClearAllInMemorySessions() {
	memorySessions.Lock()
	memorySessions.m = make(map[string][]byte)
	memorySessions.Unlock()
}

var _ SessionStore = (*InMemoryBackend)(nil)
