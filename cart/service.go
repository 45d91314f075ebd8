// Package cart implements the server-side cart: stored lines priced against
// the catalog on every read.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/cartstore"
	"github.com/creastat/shophub/metrics"
)

// DefaultMaxRetries bounds retries of a mutation that lost a version race.
const DefaultMaxRetries = 3

// Catalog is the subset of the catalog service the cart needs.
type Catalog interface {
	Lookup(ctx context.Context, productID string) (*shophub.Product, error)
	Index(ctx context.Context) (map[string]shophub.Product, error)
}

// Service reads and mutates carts.
type Service struct {
	store      cartstore.Store
	catalog    Catalog
	log        zerolog.Logger
	maxRetries int
}

// NewService creates a cart service.
func NewService(store cartstore.Store, catalog Catalog, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		catalog:    catalog,
		log:        log,
		maxRetries: DefaultMaxRetries,
	}
}

// Get returns the priced cart for a session. A session without a stored
// cart has an empty cart.
func (s *Service) Get(ctx context.Context, sessionID string) (*shophub.Cart, error) {
	data, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if data == nil {
		data = &cartstore.CartData{SessionID: sessionID}
	} else if err := s.store.Touch(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to extend cart expiry")
	}
	return s.price(ctx, data)
}

// Add adds quantity units of productID. The product must exist.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) (*shophub.Cart, error) {
	if quantity < 1 {
		return nil, shophub.ErrInvalidQuantity
	}
	if _, err := s.catalog.Lookup(ctx, productID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *cartstore.CartData) {
		c.Add(productID, quantity)
	})
}

// UpdateQuantity sets the quantity of productID; zero or less removes the
// line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*shophub.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, sessionID, productID)
	}
	if _, err := s.catalog.Lookup(ctx, productID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *cartstore.CartData) {
		c.Set(productID, quantity)
	})
}

// Remove drops productID. Removing an absent line is not an error.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) (*shophub.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cartstore.CartData) {
		c.Remove(productID)
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) (*shophub.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cartstore.CartData) {
		c.Clear()
	})
}

// mutate applies fn to the stored cart, creating it on first write, and
// retries when another writer got there first.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*cartstore.CartData)) (*shophub.Cart, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		data, err := s.write(ctx, sessionID, fn)
		if err == nil {
			return s.price(ctx, data)
		}
		if !errors.Is(err, shophub.ErrVersionConflict) {
			return nil, err
		}

		metrics.CartVersionConflicts.Inc()
		s.log.Debug().Str("session_id", sessionID).Int("attempt", attempt+1).Msg("cart version conflict, retrying")
		lastErr = err
	}
	return nil, fmt.Errorf("update cart after %d retries: %w", s.maxRetries, lastErr)
}

func (s *Service) write(ctx context.Context, sessionID string, fn func(*cartstore.CartData)) (*cartstore.CartData, error) {
	data, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if data == nil {
		data = &cartstore.CartData{SessionID: sessionID}
		fn(data)
		if err := s.store.Create(ctx, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	fn(data)
	if err := s.store.Update(ctx, data); err != nil {
		if errors.Is(err, shophub.ErrNotFound) {
			// Deleted or expired between read and write.
			return nil, shophub.ErrVersionConflict
		}
		return nil, err
	}
	return data, nil
}

// price builds the cart view. Lines whose product has left the catalog are
// skipped; item_count still counts every stored unit.
func (s *Service) price(ctx context.Context, data *cartstore.CartData) (*shophub.Cart, error) {
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	cart := &shophub.Cart{
		SessionID: data.SessionID,
		Items:     []shophub.CartItem{},
		ItemCount: data.ItemCount(),
	}

	var total float64
	for _, line := range data.Lines {
		product, ok := index[line.ProductID]
		if !ok {
			s.log.Warn().Str("product_id", line.ProductID).Msg("cart line references unknown product")
			continue
		}
		subtotal := product.Price * float64(line.Quantity)
		cart.Items = append(cart.Items, shophub.CartItem{
			ProductID: line.ProductID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Subtotal:  roundCents(subtotal),
			Image:     product.Image,
		})
		total += subtotal
	}
	cart.Total = roundCents(total)

	return cart, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
