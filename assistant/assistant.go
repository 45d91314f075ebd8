// Package assistant is the storefront's keyword-driven shopping assistant.
// It answers cart and catalog questions and performs cart actions on the
// caller's behalf.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/metrics"
	"github.com/creastat/shophub/vectorstore"
)

// Fixed replies.
const (
	GreetingReply = "Hey there! I'm E-vee, your shopping assistant. How can I help you today?"
	UnknownReply  = "I'm not sure I understand. I can help you with:\n- Finding products\n- Checking your cart\n" +
		"- Checking out your cart\n- Store info (shipping, returns, about...)\n- Adding items to cart\n\nWhat would you like to do?"
	NoResultsReply = "I couldn't find relevant information. Could you rephrase your question?"
)

// searchLimit is the number of semantic matches shown.
const searchLimit = 3

// Cart is the cart service the assistant acts on.
type Cart interface {
	Get(ctx context.Context, sessionID string) (*shophub.Cart, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) (*shophub.Cart, error)
}

// Catalog is the product lookup the assistant reads from.
type Catalog interface {
	Lookup(ctx context.Context, productID string) (*shophub.Product, error)
	Search(ctx context.Context, query string) ([]shophub.Product, error)
}

// Searcher answers similarity queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error)
}

// Assistant turns chat messages into replies.
type Assistant struct {
	cart    Cart
	catalog Catalog
	search  Searcher
	log     zerolog.Logger
}

// New creates an assistant. search may be nil, in which case product
// questions fall back to catalog text search.
func New(cart Cart, catalog Catalog, search Searcher, log zerolog.Logger) *Assistant {
	return &Assistant{cart: cart, catalog: catalog, search: search, log: log}
}

// Reply processes one message for a session.
func (a *Assistant) Reply(ctx context.Context, sessionID, message string) (*shophub.ChatResponse, error) {
	intent := DetectIntent(message)

	var ids []string
	switch intent {
	case IntentAddMultiple, IntentAddToCart, IntentAddCheckout, IntentProductByID:
		ids = ExtractProductIDs(message)
	}

	resp, err := a.dispatch(ctx, intent, sessionID, message, ids)
	if err != nil {
		return nil, err
	}

	resp.Action = actionFor(resp)
	metrics.ChatIntents.WithLabelValues(resp.Intent).Inc()
	a.log.Debug().
		Str("session_id", sessionID).
		Str("intent", resp.Intent).
		Str("action", string(resp.Action)).
		Msg("chat reply")
	return resp, nil
}

func (a *Assistant) dispatch(ctx context.Context, intent, sessionID, message string, ids []string) (*shophub.ChatResponse, error) {
	switch intent {
	case IntentGreeting:
		return reply(GreetingReply, intent), nil
	case IntentCartQuery:
		return a.cartQuery(ctx, sessionID)
	case IntentAddMultiple:
		return a.addMultiple(ctx, sessionID, ids)
	case IntentAddCheckout:
		return a.addAndCheckout(ctx, sessionID, ids)
	case IntentCheckout:
		return a.checkout(ctx, sessionID)
	case IntentProductByID:
		if len(ids) == 0 {
			return reply("Please provide a valid product ID. For example: 'Tell me about product 5'", intent), nil
		}
		return a.productByID(ctx, ids[0])
	case IntentAddToCart:
		if len(ids) == 0 {
			return reply("Please specify which product to add. For example: 'Add product 5 to cart'", intent), nil
		}
		return a.addToCart(ctx, sessionID, ids[0])
	case IntentSearch, IntentStoreInfo:
		return a.semanticSearch(ctx, message)
	default:
		return reply(UnknownReply, IntentUnknown), nil
	}
}

func (a *Assistant) cartQuery(ctx context.Context, sessionID string) (*shophub.ChatResponse, error) {
	cart, err := a.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := reply("Your cart is currently empty. Would you like to add some products?", IntentCartQuery)
	resp.Metadata["cart"] = cart
	if cart.IsEmpty() {
		return resp, nil
	}

	lines := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, fmt.Sprintf("- %s (x%d): $%.2f", item.Title, item.Quantity, item.Subtotal))
	}
	resp.Response = fmt.Sprintf("Here's what's in your cart:\n\n%s\n\nTotal: $%.2f\n\nReady to checkout?",
		strings.Join(lines, "\n"), cart.Total)
	return resp, nil
}

func (a *Assistant) addMultiple(ctx context.Context, sessionID string, ids []string) (*shophub.ChatResponse, error) {
	if len(ids) == 0 {
		return reply("Please specify which products to add. For example: 'Add products 5, 6, and 7 to cart'", IntentAddMultiple), nil
	}

	var (
		added  []shophub.Product
		failed []string
	)
	for _, id := range ids {
		product, err := a.catalog.Lookup(ctx, id)
		if err != nil {
			if !errors.Is(err, shophub.ErrNotFound) {
				a.log.Warn().Err(err).Str("product_id", id).Msg("product lookup failed")
			}
			failed = append(failed, id)
			continue
		}
		if _, err := a.cart.Add(ctx, sessionID, id, 1); err != nil {
			a.log.Warn().Err(err).Str("product_id", id).Msg("failed to add product")
			failed = append(failed, id)
			continue
		}
		added = append(added, *product)
	}

	if len(added) == 0 {
		return reply(fmt.Sprintf("Sorry, I couldn't add any of the products. Product IDs %s were not found.",
			strings.Join(failed, ", ")), IntentAddMultiple), nil
	}

	cart, err := a.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	parts := []string{fmt.Sprintf("Successfully added %d items to your cart:", len(added))}
	for _, p := range added {
		parts = append(parts, "• "+p.Title)
	}
	if len(failed) > 0 {
		parts = append(parts, "\nCould not find products: "+strings.Join(failed, ", "))
	}
	parts = append(parts, fmt.Sprintf("\nYour cart now has %d items totaling $%.2f", cart.ItemCount, cart.Total))

	resp := reply(strings.Join(parts, "\n"), IntentAddMultiple)
	resp.Metadata["cart"] = cart
	resp.Metadata["added_products"] = added
	resp.Metadata["failed_products"] = nonNil(failed)
	return resp, nil
}

func (a *Assistant) addAndCheckout(ctx context.Context, sessionID string, ids []string) (*shophub.ChatResponse, error) {
	if len(ids) == 0 {
		// Nothing to add; behave like a plain checkout request.
		resp, err := a.checkout(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		resp.Intent = IntentAddCheckout
		return resp, nil
	}

	added, err := a.addMultiple(ctx, sessionID, ids)
	if err != nil {
		return nil, err
	}
	addedProducts, _ := added.Metadata["added_products"].([]shophub.Product)
	if len(addedProducts) == 0 {
		added.Intent = IntentAddCheckout
		return added, nil
	}

	cart := added.Metadata["cart"].(*shophub.Cart)
	if cart.IsEmpty() {
		return reply("Your cart is empty. Please add items before checking out.", IntentAddCheckout), nil
	}

	resp := reply(fmt.Sprintf("Added %d items to your cart!\n\nReady to checkout:\nTotal Items: %d\nTotal Amount: $%.2f\n\n"+
		"To complete your purchase, please proceed to the checkout page where you can enter your shipping and payment details.",
		len(addedProducts), cart.ItemCount, cart.Total), IntentAddCheckout)
	resp.Metadata["cart"] = cart
	resp.Metadata["checkout_ready"] = true
	resp.Metadata["added_products"] = addedProducts
	return resp, nil
}

func (a *Assistant) checkout(ctx context.Context, sessionID string) (*shophub.ChatResponse, error) {
	cart, err := a.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cart.IsEmpty() {
		resp := reply("Your cart is empty. Add some products before checking out!", IntentCheckout)
		resp.Metadata["cart"] = cart
		return resp, nil
	}

	resp := reply(fmt.Sprintf("Great! Your order total is $%.2f for %d items. To complete checkout, please proceed "+
		"to our checkout page where you can enter shipping and payment details.", cart.Total, cart.ItemCount), IntentCheckout)
	resp.Metadata["cart"] = cart
	resp.Metadata["checkout_ready"] = true
	return resp, nil
}

func (a *Assistant) productByID(ctx context.Context, id string) (*shophub.ChatResponse, error) {
	product, err := a.catalog.Lookup(ctx, id)
	if errors.Is(err, shophub.ErrNotFound) {
		return reply(notFound(id), IntentProductByID), nil
	}
	if err != nil {
		return nil, err
	}

	resp := reply(fmt.Sprintf("%s\n\nPrice: $%s\nCategory: %s\n\n%s\n\nWould you like to add this to your cart?",
		product.Title, formatPrice(product.Price), product.Category, product.Description), IntentProductByID)
	resp.Metadata["product"] = product
	return resp, nil
}

func (a *Assistant) addToCart(ctx context.Context, sessionID, id string) (*shophub.ChatResponse, error) {
	product, err := a.catalog.Lookup(ctx, id)
	if errors.Is(err, shophub.ErrNotFound) {
		return reply(notFound(id), IntentAddToCart), nil
	}
	if err != nil {
		return nil, err
	}

	cart, err := a.cart.Add(ctx, sessionID, id, 1)
	if err != nil {
		return nil, err
	}

	resp := reply(fmt.Sprintf("Added %s to your cart! You now have %d items totaling $%.2f.",
		product.Title, cart.ItemCount, cart.Total), IntentAddToCart)
	resp.Metadata["cart"] = cart
	resp.Metadata["product"] = product
	return resp, nil
}

func (a *Assistant) semanticSearch(ctx context.Context, query string) (*shophub.ChatResponse, error) {
	if a.search == nil {
		return a.keywordSearch(ctx, query)
	}

	results, err := a.search.Search(ctx, query, searchLimit)
	if err != nil {
		a.log.Warn().Err(err).Msg("semantic search failed, using catalog search")
		return a.keywordSearch(ctx, query)
	}
	if len(results) == 0 {
		return reply(NoResultsReply, IntentSearch), nil
	}

	var (
		parts    []string
		products []map[string]any
		all      []map[string]any
	)
	for i, r := range results {
		all = append(all, r.Metadata)
		switch r.Kind {
		case vectorstore.KindProduct:
			products = append(products, r.Metadata)
			parts = append(parts, fmt.Sprintf("%d. %s - $%s\n   Category: %s\n   Product ID: %s",
				i+1, r.String("title"), r.String("price"), r.String("category"), r.String("product_id")))
		case vectorstore.KindInfo:
			if r.String("content_type") == ContentFAQ {
				parts = append(parts, r.String("question")+"\n"+r.String("answer"))
			} else {
				parts = append(parts, strings.TrimSpace(r.Content))
			}
		}
	}

	text := strings.Join(parts, "\n\n")
	if len(products) > 0 {
		resp := reply(text+"\n\nWould you like to know more about any of these products or add one to your cart?", IntentSearch)
		resp.Metadata["results"] = products
		return resp, nil
	}

	resp := reply(text, IntentHubInfo)
	resp.Metadata["results"] = all
	return resp, nil
}

// keywordSearch matches each significant query word against the catalog.
func (a *Assistant) keywordSearch(ctx context.Context, query string) (*shophub.ChatResponse, error) {
	seen := make(map[int]bool)
	var found []shophub.Product
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?'\"")
		if len(word) < 4 || stopWords[word] {
			continue
		}
		matches, err := a.catalog.Search(ctx, word)
		if err != nil {
			return nil, err
		}
		for _, p := range matches {
			if !seen[p.ID] {
				seen[p.ID] = true
				found = append(found, p)
			}
		}
		if len(found) >= searchLimit {
			break
		}
	}

	if len(found) == 0 {
		return reply(NoResultsReply, IntentSearch), nil
	}
	if len(found) > searchLimit {
		found = found[:searchLimit]
	}

	parts := make([]string, 0, len(found))
	for i, p := range found {
		parts = append(parts, fmt.Sprintf("%d. %s - $%s\n   Category: %s\n   Product ID: %d",
			i+1, p.Title, formatPrice(p.Price), p.Category, p.ID))
	}
	resp := reply(strings.Join(parts, "\n\n")+
		"\n\nWould you like to know more about any of these products or add one to your cart?", IntentSearch)
	resp.Metadata["results"] = found
	return resp, nil
}

var stopWords = map[string]bool{
	"show": true, "want": true, "need": true, "find": true, "looking": true, "with": true,
	"have": true, "your": true, "what": true, "price": true, "cost": true, "cheap": true,
	"available": true, "product": true, "products": true, "item": true, "items": true,
	"some": true, "about": true, "expensive": true, "shop": true,
}

// actionFor maps a reply to the UI side effect the client should run.
func actionFor(resp *shophub.ChatResponse) shophub.Action {
	_, hasCart := resp.Metadata["cart"]
	ready, _ := resp.Metadata["checkout_ready"].(bool)

	switch resp.Intent {
	case IntentCartQuery, IntentAddToCart, IntentAddMultiple:
		if hasCart {
			return shophub.ActionShowCart
		}
	case IntentCheckout:
		if ready {
			return shophub.ActionShowCheckoutButton
		}
	case IntentAddCheckout:
		if ready {
			return shophub.ActionRedirectToCheckout
		}
		if hasCart {
			return shophub.ActionShowCart
		}
	}
	return ""
}

func reply(text, intent string) *shophub.ChatResponse {
	return &shophub.ChatResponse{Response: text, Intent: intent, Metadata: map[string]any{}}
}

func notFound(id string) string {
	return fmt.Sprintf("Sorry, I couldn't find a product with ID %s. Please check the ID and try again.", id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
