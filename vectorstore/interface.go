package vectorstore

import "context"

// VectorStore is a technology-agnostic interface for vector similarity search.
// Implementations can use Qdrant or an in-process index.
type VectorStore interface {
	// Search performs vector similarity search with optional filtering.
	Search(ctx context.Context, vector []float32, filter SearchFilter, limit int) ([]SearchResult, error)

	// Upsert inserts or replaces points by ID.
	Upsert(ctx context.Context, points []Point) error

	// Count returns the number of stored points.
	Count(ctx context.Context) (uint64, error)

	// EnsureCollection creates the collection for vectors of size dim if it
	// does not exist yet.
	EnsureCollection(ctx context.Context, dim int) error

	// Close releases any resources held by the vector store.
	Close() error
}

// Kinds of indexed documents.
const (
	KindProduct = "product"
	KindInfo    = "hub_info"
)

// Point is a document to index.
type Point struct {
	// ID is the caller's stable identifier (e.g. "product_5").
	ID string

	Vector []float32

	// Content is the embedded text.
	Content string

	// Kind is KindProduct or KindInfo.
	Kind string

	// Metadata holds scalar payload values (string, int, int64, float64, bool).
	Metadata map[string]any
}

// SearchFilter defines filtering options for vector search.
type SearchFilter struct {
	// Kind restricts results to one document kind.
	Kind string

	// Metadata filters results by metadata key-value pairs.
	Metadata map[string]any

	// MinScore filters results below this similarity threshold (0.0-1.0).
	MinScore float32
}

// SearchResult represents a single result from vector similarity search.
type SearchResult struct {
	// ID is the caller's identifier of the point.
	ID string

	// Score is the similarity score (higher is more similar).
	Score float32

	// Content is the text content associated with this vector.
	Content string

	// Kind is the document kind.
	Kind string

	// Metadata contains additional key-value pairs.
	Metadata map[string]any
}

// String returns the metadata value for key as a string, or "".
func (r SearchResult) String(key string) string {
	if v, ok := r.Metadata[key].(string); ok {
		return v
	}
	return ""
}
