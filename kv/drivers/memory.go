// Package drivers holds the concrete key-value store backends.
package drivers

import (
	"context"
	"sync"
)

// MemoryStore implements kv.Store using an in-memory map.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	values map[string]string
}

// NewMemoryStore creates a new in-memory key-value store.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix: prefix,
		values: make(map[string]string),
	}
}

// Get implements kv.Store.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[s.prefix+key]
	return v, ok, nil
}

// Set implements kv.Store.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[s.prefix+key] = value
	return nil
}

// Remove implements kv.Store.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, s.prefix+key)
	return nil
}

// Close implements kv.Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return nil
}
