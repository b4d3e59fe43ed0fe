package kvstore

import (
	"context"
	"slices"
	"sync"
)

// Memory is a process-local Store.
type Memory struct {
	watchers

	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return slices.Clone(v), ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = slices.Clone(value)
	m.mu.Unlock()

	m.notify(Change{Key: key, Value: slices.Clone(value)})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	m.notify(Change{Key: key, Deleted: true})
	return nil
}

func (m *Memory) Close() error { return nil }
