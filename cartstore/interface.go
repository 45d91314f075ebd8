// Package cartstore persists server-side carts keyed by session identifier.
package cartstore

import "context"

// Store defines the interface for cart storage operations.
type Store interface {
	// Create creates a new cart with Version set to 1.
	// Returns ErrVersionConflict if a cart already exists for the session.
	Create(ctx context.Context, data *CartData) error

	// Get retrieves a cart by session ID.
	// Returns nil if the cart is not found (not an error).
	Get(ctx context.Context, sessionID string) (*CartData, error)

	// Update updates an existing cart with optimistic locking.
	// Verifies the Version matches the stored version, increments Version,
	// updates UpdatedAt timestamp, and persists the CartData.
	// Returns ErrVersionConflict if the version does not match.
	// Returns ErrNotFound if the cart does not exist.
	Update(ctx context.Context, data *CartData) error

	// Touch extends the cart's expiry. Get never modifies the key, so a
	// Get followed by Update only conflicts with real writers.
	Touch(ctx context.Context, sessionID string) error

	// Delete deletes a cart by session ID.
	Delete(ctx context.Context, sessionID string) error

	// Close closes the store and releases any resources.
	Close() error
}
