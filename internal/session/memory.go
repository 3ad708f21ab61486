package session

import "sync"

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	role  Role
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryStore) Role() Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

func (m *MemoryStore) Set(token string, role Role) error {
	if err := validateSet(token, role); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.role = role
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.role = ""
	return nil
}
