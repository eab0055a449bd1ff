package db

import "sync"

// MemoryService keeps items in process memory. Contents are lost on restart.
type MemoryService struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryService returns an empty in-memory Service.
func NewMemoryService() *MemoryService {
	return &MemoryService{items: make(map[string]string)}
}

func (m *MemoryService) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryService) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryService) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

