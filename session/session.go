// Package session owns the client's anonymous session identifier. The
// identifier is created once per storage profile, never rotated, and sent
// with every API request.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/creastat/shophub/kv"
)

// StorageKey is the key under which the identifier is persisted.
const StorageKey = "shophub_session_id"

// Store reads and writes the session identifier.
// Read failures are logged and reported as "no session".
type Store struct {
	kv  kv.Store
	log zerolog.Logger
}

// NewStore creates a session store on top of a key-value store.
func NewStore(store kv.Store, log zerolog.Logger) *Store {
	return &Store{kv: store, log: log}
}

// HasSession reports whether an identifier is stored.
func (s *Store) HasSession(ctx context.Context) bool {
	_, ok := s.GetSession(ctx)
	return ok
}

// GetSession returns the stored identifier.
func (s *Store) GetSession(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read session id")
		return "", false
	}
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// CreateSession stores id as the session identifier.
func (s *Store) CreateSession(ctx context.Context, id string) error {
	return s.kv.Set(ctx, StorageKey, id)
}

// ClearSession removes the identifier (logout).
func (s *Store) ClearSession(ctx context.Context) error {
	return s.kv.Remove(ctx, StorageKey)
}

// EnsureSession returns the stored identifier, creating a new UUID only
// when none exists.
func (s *Store) EnsureSession(ctx context.Context) (string, error) {
	if id, ok := s.GetSession(ctx); ok {
		return id, nil
	}

	id := uuid.NewString()
	if err := s.CreateSession(ctx, id); err != nil {
		return "", err
	}
	s.log.Info().Str("session_id", id).Msg("session created")
	return id, nil
}
