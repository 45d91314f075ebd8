package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/creastat/shophub"
)

// memoryStore implements Store using an in-memory map with optimistic locking.
// Values are copied in and out so callers never share state with the store.
type memoryStore struct {
	mu    sync.RWMutex
	carts map[string]*CartData
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string]*CartData)}
}

// Create implements Store.
func (s *memoryStore) Create(ctx context.Context, data *CartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.carts[data.SessionID]; exists {
		return shophub.ErrVersionConflict
	}

	now := time.Now()
	data.CreatedAt = now
	data.UpdatedAt = now
	data.Version = 1

	s.carts[data.SessionID] = data.Clone()
	return nil
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, sessionID string) (*CartData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.carts[sessionID]
	if !exists {
		return nil, nil
	}
	return data.Clone(), nil
}

// Update implements Store.
func (s *memoryStore) Update(ctx context.Context, data *CartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.carts[data.SessionID]
	if !exists {
		return shophub.ErrNotFound
	}

	if stored.Version != data.Version {
		return shophub.ErrVersionConflict
	}

	data.Version++
	data.UpdatedAt = time.Now()

	s.carts[data.SessionID] = data.Clone()
	return nil
}

// Delete implements Store.
func (s *memoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// Touch implements Store. Memory carts never expire.
func (s *memoryStore) Touch(ctx context.Context, sessionID string) error {
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts = make(map[string]*CartData)
	return nil
}
