package storage

import "sync"

// MemoryStorage is an in-process Storage used by tests.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[name]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

func (m *MemoryStorage) Set(name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	m.values[name] = copied
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
