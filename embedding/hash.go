package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDimensions is the vector size of the hashing engine.
const DefaultHashDimensions = 256

// HashEngine is a deterministic bag-of-words embedder. Each lowercased token
// is hashed into a bucket and the vector is L2-normalized, so texts sharing
// words score high under cosine similarity. It needs no network access.
type HashEngine struct {
	dim int
}

// NewHashEngine creates a hashing engine with dim buckets.
func NewHashEngine(dim int) *HashEngine {
	if dim <= 0 {
		dim = DefaultHashDimensions
	}
	return &HashEngine{dim: dim}
}

// Embed implements Embedder.
func (e *HashEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		// Top bit picks the sign to spread collisions.
		sign := float32(1)
		if sum&0x80000000 != 0 {
			sign = -1
		}
		vec[int(sum%uint32(e.dim))] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// EmbedBatch implements Embedder.
func (e *HashEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions implements Embedder.
func (e *HashEngine) Dimensions() int { return e.dim }

// Name implements Embedder.
func (e *HashEngine) Name() string { return "hash" }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
