package vectorstore

import "fmt"

// Type selects a vector store backend.
type Type string

const (
	TypeMemory Type = "memory"
	TypeQdrant Type = "qdrant"
)

// ParseType validates a configured backend name. Empty means memory.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "", TypeMemory:
		return TypeMemory, nil
	case TypeQdrant:
		return TypeQdrant, nil
	default:
		return "", fmt.Errorf("unsupported vector store %q", s)
	}
}
