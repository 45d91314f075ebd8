package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/checkout"
)

// Products reads the catalog.
type Products struct{ c *Client }

// List returns every product.
func (p *Products) List(ctx context.Context) ([]shophub.Product, error) {
	var out []shophub.Product
	if err := p.c.do(ctx, http.MethodGet, "/products/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single product.
func (p *Products) Get(ctx context.Context, id int) (*shophub.Product, error) {
	var out shophub.Product
	if err := p.c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByCategory returns the products of one category.
func (p *Products) ByCategory(ctx context.Context, category string) ([]shophub.Product, error) {
	var out []shophub.Product
	if err := p.c.do(ctx, http.MethodGet, "/products/category/"+url.PathEscape(category), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns the distinct category names, sorted.
func (p *Products) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := p.c.do(ctx, http.MethodGet, "/products/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search runs a text search over titles and descriptions.
func (p *Products) Search(ctx context.Context, query string) (*shophub.ProductSearchResponse, error) {
	var out shophub.ProductSearchResponse
	if err := p.c.do(ctx, http.MethodGet, "/products/search/"+url.PathEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cart manages the session's cart. Every mutation returns the full
// server-computed cart.
type Cart struct{ c *Client }

// Get returns the current cart.
func (ca *Cart) Get(ctx context.Context) (*shophub.Cart, error) {
	var out shophub.Cart
	if err := ca.c.do(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Add adds quantity units of a product.
func (ca *Cart) Add(ctx context.Context, productID string, quantity int) (*shophub.CartResponse, error) {
	return ca.mutate(ctx, http.MethodPost, "/cart/add", shophub.AddToCartRequest{ProductID: productID, Quantity: quantity})
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (ca *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) (*shophub.CartResponse, error) {
	return ca.mutate(ctx, http.MethodPut, "/cart/update", shophub.AddToCartRequest{ProductID: productID, Quantity: quantity})
}

// Remove deletes a line.
func (ca *Cart) Remove(ctx context.Context, productID string) (*shophub.CartResponse, error) {
	return ca.mutate(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil)
}

// Clear empties the cart.
func (ca *Cart) Clear(ctx context.Context) (*shophub.CartResponse, error) {
	return ca.mutate(ctx, http.MethodDelete, "/cart/clear", nil)
}

// ItemCount returns the number of units in the cart, or zero when the
// cart cannot be fetched.
func (ca *Cart) ItemCount(ctx context.Context) int {
	cart, err := ca.Get(ctx)
	if err != nil {
		return 0
	}
	return cart.ItemCount
}

func (ca *Cart) mutate(ctx context.Context, method, path string, in any) (*shophub.CartResponse, error) {
	var out shophub.CartResponse
	if err := ca.c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout prices the cart and places orders.
type Checkout struct{ c *Client }

// Summary returns the server-computed totals for the current cart.
func (co *Checkout) Summary(ctx context.Context) (*shophub.CheckoutSummary, error) {
	var out shophub.CheckoutSummary
	if err := co.c.do(ctx, http.MethodGet, "/checkout/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Process validates req and places the order. An invalid request returns
// a *checkout.ValidationError without contacting the server.
func (co *Checkout) Process(ctx context.Context, req shophub.CheckoutRequest) (*shophub.OrderConfirmation, error) {
	if err := checkout.ValidateRequest(req); err != nil {
		return nil, err
	}

	var out shophub.OrderConfirmation
	if err := co.c.do(ctx, http.MethodPost, "/checkout/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chatbot talks to the shopping assistant.
type Chatbot struct{ c *Client }

// Chat sends one message.
func (cb *Chatbot) Chat(ctx context.Context, message string) (*shophub.ChatResponse, error) {
	var out shophub.ChatResponse
	if err := cb.c.do(ctx, http.MethodPost, "/chatbot/chat", shophub.ChatRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatBatch sends messages one after another and stops at the first error.
func (cb *Chatbot) ChatBatch(ctx context.Context, messages []string) ([]*shophub.ChatResponse, error) {
	out := make([]*shophub.ChatResponse, 0, len(messages))
	for i, m := range messages {
		resp, err := cb.Chat(ctx, m)
		if err != nil {
			return out, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, resp)
	}
	return out, nil
}

var (
	_ checkout.API = (*Checkout)(nil)
)
