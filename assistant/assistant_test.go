package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/cart"
	"github.com/creastat/shophub/cartstore"
	"github.com/creastat/shophub/catalog"
	"github.com/creastat/shophub/embedding"
	"github.com/creastat/shophub/vectorstore"
	"github.com/creastat/shophub/vectorstore/memory"
)

// ============================================================================
// Intent detection
// ============================================================================

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Hello there", IntentGreeting},
		{"hey", IntentGreeting},
		{"this looks nice", IntentUnknown},
		{"What is your shipping policy?", IntentStoreInfo},
		{"add products 5 and 9", IntentAddMultiple},
		{"put 3, 9 in my basket", IntentAddMultiple},
		{"add product 5 to cart", IntentAddToCart},
		{"add products 5 and 9 and checkout", IntentAddCheckout},
		{"checkout", IntentCheckout},
		{"I want to place order", IntentCheckout},
		{"show my cart", IntentCartQuery},
		{"cart", IntentCartQuery},
		{"tell me about product 5", IntentProductByID},
		{"id: 7", IntentProductByID},
		{"I want a jacket", IntentSearch},
		{"qwerty", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.message))
		})
	}
}

func TestExtractProductIDs(t *testing.T) {
	tests := []struct {
		message string
		want    []string
	}{
		{"Add product 5, 6, and 7", []string{"5", "6", "7"}},
		{"products 1 2 3", []string{"1", "2", "3"}},
		{"add 5 and 9 and 5", []string{"5", "9"}},
		{"product 5 and product 5", []string{"5"}},
		{"nothing here", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractProductIDs(tt.message))
		})
	}
}

// ============================================================================
// Replies
// ============================================================================

type fakeSearcher struct {
	results []vectorstore.SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	return f.results, f.err
}

func newAssistant(t *testing.T, search Searcher) (*Assistant, *cart.Service) {
	t.Helper()
	store, err := cartstore.NewStore(cartstore.StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	products := catalog.NewService(catalog.NewStaticSource(catalog.Fixtures()...))
	carts := cart.NewService(store, products, zerolog.Nop())
	return New(carts, products, search, zerolog.Nop()), carts
}

func TestGreetingAndUnknown(t *testing.T) {
	a, _ := newAssistant(t, nil)
	ctx := context.Background()

	resp, err := a.Reply(ctx, "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, GreetingReply, resp.Response)
	assert.Empty(t, resp.Action)

	resp, err = a.Reply(ctx, "s1", "qwerty")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, resp.Intent)
	assert.Equal(t, UnknownReply, resp.Response)
}

func TestAddToCart(t *testing.T) {
	a, _ := newAssistant(t, nil)
	ctx := context.Background()

	resp, err := a.Reply(ctx, "s1", "add product 3 to cart")
	require.NoError(t, err)
	assert.Equal(t, IntentAddToCart, resp.Intent)
	assert.Equal(t, shophub.ActionShowCart, resp.Action)
	assert.Equal(t, "Added Mens Cotton Jacket to your cart! You now have 1 items totaling $55.99.", resp.Response)

	resp, err = a.Reply(ctx, "s1", "add product 42 to cart")
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "couldn't find a product with ID 42")
	assert.Empty(t, resp.Action)

	resp, err = a.Reply(ctx, "s1", "add this to cart")
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "Please specify which product to add")
}

func TestAddMultiple(t *testing.T) {
	a, carts := newAssistant(t, nil)
	ctx := context.Background()

	resp, err := a.Reply(ctx, "s1", "add products 2, 9 and 99")
	require.NoError(t, err)
	assert.Equal(t, IntentAddMultiple, resp.Intent)
	assert.Equal(t, shophub.ActionShowCart, resp.Action)
	assert.Contains(t, resp.Response, "Successfully added 2 items to your cart:")
	assert.Contains(t, resp.Response, "Could not find products: 99")
	assert.Contains(t, resp.Response, "Your cart now has 2 items totaling $86.30")
	assert.Equal(t, []string{"99"}, resp.Metadata["failed_products"])

	c, err := carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount)

	resp, err = a.Reply(ctx, "s2", "add products 98 and 99")
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "Product IDs 98, 99 were not found")
	assert.Empty(t, resp.Action)
}

func TestAddAndCheckout(t *testing.T) {
	a, _ := newAssistant(t, nil)

	resp, err := a.Reply(context.Background(), "s1", "add products 2 and 9 and checkout")
	require.NoError(t, err)
	assert.Equal(t, IntentAddCheckout, resp.Intent)
	assert.Equal(t, shophub.ActionRedirectToCheckout, resp.Action)
	assert.Equal(t, true, resp.Metadata["checkout_ready"])
	assert.Contains(t, resp.Response, "Added 2 items to your cart!")
	assert.Contains(t, resp.Response, "Total Amount: $86.30")
}

func TestCheckoutAndCartQuery(t *testing.T) {
	a, carts := newAssistant(t, nil)
	ctx := context.Background()

	resp, err := a.Reply(ctx, "s1", "checkout")
	require.NoError(t, err)
	assert.Equal(t, "Your cart is empty. Add some products before checking out!", resp.Response)
	assert.Empty(t, resp.Action)

	resp, err = a.Reply(ctx, "s1", "show my cart")
	require.NoError(t, err)
	assert.Equal(t, "Your cart is currently empty. Would you like to add some products?", resp.Response)
	assert.Equal(t, shophub.ActionShowCart, resp.Action)

	_, err = carts.Add(ctx, "s1", "18", 2)
	require.NoError(t, err)

	resp, err = a.Reply(ctx, "s1", "show my cart")
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "- MBJ Women's Solid Short Sleeve Boat Neck V (x2): $19.70")
	assert.Contains(t, resp.Response, "Total: $19.70")

	resp, err = a.Reply(ctx, "s1", "buy now")
	require.NoError(t, err)
	assert.Equal(t, IntentCheckout, resp.Intent)
	assert.Equal(t, shophub.ActionShowCheckoutButton, resp.Action)
	assert.Contains(t, resp.Response, "Your order total is $19.70 for 2 items.")
}

func TestProductByID(t *testing.T) {
	a, _ := newAssistant(t, nil)
	ctx := context.Background()

	resp, err := a.Reply(ctx, "s1", "tell me about product 2")
	require.NoError(t, err)
	assert.Equal(t, IntentProductByID, resp.Intent)
	assert.Contains(t, resp.Response, "Mens Casual Premium Slim Fit T-Shirts\n\nPrice: $22.3\nCategory: men's clothing")
	assert.NotNil(t, resp.Metadata["product"])
	assert.Empty(t, resp.Action)

	resp, err = a.Reply(ctx, "s1", "product 404")
	require.NoError(t, err)
	assert.Equal(t, notFound("404"), resp.Response)
}

func TestSemanticSearchFormatting(t *testing.T) {
	product := vectorstore.SearchResult{
		ID: "product_18", Kind: vectorstore.KindProduct,
		Metadata: map[string]any{"title": "MBJ Top", "price": "9.85", "category": "women's clothing", "product_id": "18"},
	}
	faq := vectorstore.SearchResult{
		ID: "hub_info_faq_0", Kind: vectorstore.KindInfo,
		Metadata: map[string]any{"content_type": ContentFAQ, "question": "Q?", "answer": "A."},
	}
	general := vectorstore.SearchResult{
		ID: "hub_info_description", Kind: vectorstore.KindInfo, Content: "  Welcome.  ",
		Metadata: map[string]any{"content_type": ContentGeneral},
	}

	t.Run("products found", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeSearcher{results: []vectorstore.SearchResult{product, faq}})
		resp, err := a.Reply(context.Background(), "s1", "I want a top")
		require.NoError(t, err)
		assert.Equal(t, IntentSearch, resp.Intent)
		assert.Equal(t, "1. MBJ Top - $9.85\n   Category: women's clothing\n   Product ID: 18\n\nQ?\nA.\n\n"+
			"Would you like to know more about any of these products or add one to your cart?", resp.Response)
		assert.Len(t, resp.Metadata["results"], 1)
	})

	t.Run("store info only", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeSearcher{results: []vectorstore.SearchResult{faq, general}})
		resp, err := a.Reply(context.Background(), "s1", "what is your return policy")
		require.NoError(t, err)
		assert.Equal(t, IntentHubInfo, resp.Intent)
		assert.Equal(t, "Q?\nA.\n\nWelcome.", resp.Response)
		assert.Len(t, resp.Metadata["results"], 2)
	})

	t.Run("no results", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeSearcher{})
		resp, err := a.Reply(context.Background(), "s1", "I want a spaceship")
		require.NoError(t, err)
		assert.Equal(t, NoResultsReply, resp.Response)
	})

	t.Run("search error falls back to catalog", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeSearcher{err: errors.New("qdrant down")})
		resp, err := a.Reply(context.Background(), "s1", "I want a jacket")
		require.NoError(t, err)
		assert.Equal(t, IntentSearch, resp.Intent)
		assert.Contains(t, resp.Response, "Mens Cotton Jacket")
	})
}

// ============================================================================
// Index
// ============================================================================

func TestIndexBuildAndSearch(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex(memory.New(), embedding.NewHashEngine(128), zerolog.Nop())
	products := catalog.Fixtures()

	n, err := ix.Build(ctx, products)
	require.NoError(t, err)
	assert.Equal(t, len(products)+len(FAQs)+1, n)

	n, err = ix.Build(ctx, products)
	require.NoError(t, err)
	assert.Zero(t, n, "populated index is not rebuilt")

	count, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(products)+len(FAQs)+1), count)

	results, err := ix.Search(ctx, ProductDocument(products[2]), 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "product_3", results[0].ID)
	assert.Equal(t, "3", results[0].String("product_id"))
	assert.Equal(t, "55.99", results[0].String("price"))
}

func TestProductDocument(t *testing.T) {
	doc := ProductDocument(shophub.Product{Title: "Ring", Category: "jewelery", Description: "Gold.", Price: 10.5})
	assert.Equal(t, "Product: Ring. Category: jewelery. Description: Gold.. Price: $10.5", doc)
}
