// Package embedding turns catalog and FAQ text into vectors for the
// assistant's semantic search.
package embedding

import (
	"context"
	"fmt"
)

// Embedder generates vector embeddings.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size.
	Dimensions() int

	// Name identifies the engine in logs.
	Name() string
}

// Provider names.
const (
	ProviderGenAI = "genai"
	ProviderHash  = "hash"
)

// Config selects and configures an engine.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	Dimensions int
}

// New creates the configured engine. An empty provider selects the hashing
// engine.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderGenAI:
		return NewGenAIEngine(cfg.APIKey, cfg.Model, cfg.Dimensions)
	case ProviderHash, "":
		return NewHashEngine(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}
