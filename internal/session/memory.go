package session

import (
	"sync"
	"time"
)

// MemoryStore keeps sessions in-process. It is the default when no Redis
// address is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get retrieves a session by ID.
func (m *MemoryStore) Get(id string) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

// Save stores or replaces a session.
func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = s
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
