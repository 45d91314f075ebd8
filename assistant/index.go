package assistant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/embedding"
	"github.com/creastat/shophub/vectorstore"
)

// Index batching.
const (
	embedBatchSize   = 50
	embedConcurrency = 4
)

// Content types of store info documents.
const (
	ContentGeneral = "general"
	ContentFAQ     = "faq"
)

// Index embeds the catalog and store FAQs into a vector store and answers
// similarity queries against it.
type Index struct {
	store    vectorstore.VectorStore
	embedder embedding.Embedder
	log      zerolog.Logger
}

// NewIndex creates an index over store using embedder.
func NewIndex(store vectorstore.VectorStore, embedder embedding.Embedder, log zerolog.Logger) *Index {
	return &Index{store: store, embedder: embedder, log: log}
}

// Build indexes products and the store info when the collection is empty.
// It returns the number of documents written, zero if the collection was
// already populated.
func (ix *Index) Build(ctx context.Context, products []shophub.Product) (int, error) {
	if err := ix.store.EnsureCollection(ctx, ix.embedder.Dimensions()); err != nil {
		return 0, err
	}

	n, err := ix.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		ix.log.Info().Uint64("documents", n).Msg("search index already populated")
		return 0, nil
	}
	return ix.Rebuild(ctx, products)
}

// Rebuild embeds and upserts every document regardless of what is stored.
func (ix *Index) Rebuild(ctx context.Context, products []shophub.Product) (int, error) {
	if err := ix.store.EnsureCollection(ctx, ix.embedder.Dimensions()); err != nil {
		return 0, err
	}

	points := Documents(products)
	texts := make([]string, len(points))
	for i, p := range points {
		texts[i] = p.Content
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		g.Go(func() error {
			vectors, err := ix.embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed documents %d-%d: %w", start, end, err)
			}
			for i, v := range vectors {
				points[start+i].Vector = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := ix.store.Upsert(ctx, points); err != nil {
		return 0, err
	}

	ix.log.Info().
		Int("products", len(products)).
		Int("info_documents", len(FAQs)+1).
		Str("embedder", ix.embedder.Name()).
		Msg("search index built")
	return len(points), nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count(ctx context.Context) (uint64, error) {
	return ix.store.Count(ctx)
}

// Search returns the limit documents most similar to query.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.store.Search(ctx, vector, vectorstore.SearchFilter{}, limit)
}

// ProductDocument is the text embedded for a product.
func ProductDocument(p shophub.Product) string {
	return fmt.Sprintf("Product: %s. Category: %s. Description: %s. Price: $%s",
		p.Title, p.Category, p.Description, formatPrice(p.Price))
}

// Documents builds the unembedded points for products followed by the store
// description and FAQs.
func Documents(products []shophub.Product) []vectorstore.Point {
	points := make([]vectorstore.Point, 0, len(products)+len(FAQs)+1)

	for _, p := range products {
		id := strconv.Itoa(p.ID)
		points = append(points, vectorstore.Point{
			ID:      "product_" + id,
			Content: ProductDocument(p),
			Kind:    vectorstore.KindProduct,
			Metadata: map[string]any{
				"product_id":  id,
				"title":       p.Title,
				"price":       formatPrice(p.Price),
				"category":    p.Category,
				"image":       p.Image,
				"description": p.Description,
			},
		})
	}

	points = append(points, vectorstore.Point{
		ID:      "hub_info_description",
		Content: StoreDescription,
		Kind:    vectorstore.KindInfo,
		Metadata: map[string]any{
			"topic":        "description",
			"content_type": ContentGeneral,
		},
	})

	for i, faq := range FAQs {
		points = append(points, vectorstore.Point{
			ID:      fmt.Sprintf("hub_info_faq_%d", i),
			Content: fmt.Sprintf("Q: %s A: %s", faq.Question, faq.Answer),
			Kind:    vectorstore.KindInfo,
			Metadata: map[string]any{
				"topic":        faq.Topic,
				"question":     faq.Question,
				"answer":       faq.Answer,
				"content_type": ContentFAQ,
			},
		})
	}

	return points
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
