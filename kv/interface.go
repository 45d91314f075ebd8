// Package kv is the persistent key-value collaborator that stands in for
// browser-local storage: the session identifier and the chat history live
// here, keyed by fixed string constants.
package kv

import "context"

// Store defines the narrow storage contract used by the client.
type Store interface {
	// Get returns the value stored under key.
	// ok is false when the key is absent (not an error).
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close closes the store and releases any resources.
	Close() error
}
