package kvstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	values map[string]string
	lock   sync.RWMutex
}

// NewMemory returns a process-local store. Values do not survive a restart.
func NewMemory() Storage {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryStore) Close() error {
	return nil
}
