package session

import "sync"

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Field]string
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Field]string)}
}

func (m *MemoryStore) Get(field Field) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[field]
	return v, ok
}

func (m *MemoryStore) Set(field Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[field] = value
	return nil
}

func (m *MemoryStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}
