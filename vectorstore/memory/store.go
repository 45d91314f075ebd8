// Package memory is an in-process vectorstore.VectorStore using cosine
// similarity over a flat index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/creastat/shophub/vectorstore"
)

// Store implements vectorstore.VectorStore in memory.
type Store struct {
	mu     sync.RWMutex
	dim    int
	points map[string]vectorstore.Point
	order  []string
}

// New creates an empty store.
func New() *Store {
	return &Store{points: make(map[string]vectorstore.Point)}
}

// Search implements vectorstore.VectorStore.
func (s *Store) Search(ctx context.Context, vector []float32, filter vectorstore.SearchFilter, limit int) ([]vectorstore.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim > 0 && len(vector) != s.dim {
		return nil, fmt.Errorf("query dimension %d does not match collection dimension %d", len(vector), s.dim)
	}

	results := make([]vectorstore.SearchResult, 0, len(s.points))
	for _, id := range s.order {
		p := s.points[id]
		if !matches(p, filter) {
			continue
		}
		score := cosine(vector, p.Vector)
		if filter.MinScore > 0 && score < filter.MinScore {
			continue
		}
		results = append(results, vectorstore.SearchResult{
			ID:       p.ID,
			Score:    score,
			Content:  p.Content,
			Kind:     p.Kind,
			Metadata: copyMetadata(p.Metadata),
		})
	}

	// Stable so equal scores keep insertion order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Upsert implements vectorstore.VectorStore.
func (s *Store) Upsert(ctx context.Context, points []vectorstore.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dim > 0 && len(p.Vector) != s.dim {
			return fmt.Errorf("point %s: dimension %d does not match collection dimension %d", p.ID, len(p.Vector), s.dim)
		}
	}

	for _, p := range points {
		if _, ok := s.points[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		p.Vector = append([]float32(nil), p.Vector...)
		p.Metadata = copyMetadata(p.Metadata)
		s.points[p.ID] = p
	}
	return nil
}

// Count implements vectorstore.VectorStore.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.points)), nil
}

// EnsureCollection implements vectorstore.VectorStore. The first call fixes
// the dimension.
func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = dim
		return nil
	}
	if s.dim != dim {
		return fmt.Errorf("collection exists with dimension %d, requested %d", s.dim, dim)
	}
	return nil
}

// Close implements vectorstore.VectorStore.
func (s *Store) Close() error {
	return nil
}

func matches(p vectorstore.Point, filter vectorstore.SearchFilter) bool {
	if filter.Kind != "" && p.Kind != filter.Kind {
		return false
	}
	for k, want := range filter.Metadata {
		if fmt.Sprint(p.Metadata[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ vectorstore.VectorStore = (*Store)(nil)
