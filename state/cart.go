// Package state holds the client's observable state containers: the cart
// snapshot shared by every page, and the assistant conversation.
package state

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
)

// CartAPI is the subset of the cart API module the container needs.
type CartAPI interface {
	Get(ctx context.Context) (*shophub.Cart, error)
	Add(ctx context.Context, productID string, quantity int) (*shophub.CartResponse, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*shophub.CartResponse, error)
	Remove(ctx context.Context, productID string) (*shophub.CartResponse, error)
	Clear(ctx context.Context) (*shophub.CartResponse, error)
}

// CartState is a point-in-time view of the container.
type CartState struct {
	Cart    *shophub.Cart
	Loading bool
	Error   string
}

// CartContainer owns the current cart snapshot. The snapshot is only ever
// replaced wholesale by a server response, never edited locally.
//
// Every call is numbered. A successful response is applied unless a newer
// call's response has already been applied, so the snapshot always comes
// from the latest call that succeeded.
type CartContainer struct {
	api CartAPI
	log zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cart      *shophub.Cart
	pending   int
	err       string
	seq       uint64
	applied   uint64
	closed    bool
	observers []func(CartState)
}

// NewCartContainer creates an empty container. Nothing is fetched until
// Refresh is called.
func NewCartContainer(api CartAPI, log zerolog.Logger) *CartContainer {
	ctx, cancel := context.WithCancel(context.Background())
	return &CartContainer{
		api:    api,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Subscribe registers fn to be called after every state change.
func (c *CartContainer) Subscribe(fn func(CartState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// State returns the current state.
func (c *CartContainer) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Snapshot returns the last cart received from the server, or nil.
func (c *CartContainer) Snapshot() *shophub.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart
}

// Loading reports whether a request is in flight.
func (c *CartContainer) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Err returns the display message of the last failure, or "".
func (c *CartContainer) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ItemCount returns the number of units in the cart, zero when nothing
// has been loaded.
func (c *CartContainer) ItemCount() int {
	if cart := c.Snapshot(); cart != nil {
		return cart.ItemCount
	}
	return 0
}

// Total returns the cart total, zero when nothing has been loaded.
func (c *CartContainer) Total() float64 {
	if cart := c.Snapshot(); cart != nil {
		return cart.Total
	}
	return 0
}

// Refresh reloads the cart. Failures are recorded, not returned.
func (c *CartContainer) Refresh(ctx context.Context) {
	_ = c.run(ctx, "Failed to fetch cart", func(ctx context.Context) (*shophub.Cart, error) {
		return c.api.Get(ctx)
	})
}

// Add adds quantity units of a product.
func (c *CartContainer) Add(ctx context.Context, productID string, quantity int) error {
	return c.run(ctx, "Failed to add item to cart", func(ctx context.Context) (*shophub.Cart, error) {
		return cartOf(c.api.Add(ctx, productID, quantity))
	})
}

// Remove deletes a line.
func (c *CartContainer) Remove(ctx context.Context, productID string) error {
	return c.run(ctx, "Failed to remove item from cart", func(ctx context.Context) (*shophub.Cart, error) {
		return cartOf(c.api.Remove(ctx, productID))
	})
}

// UpdateQuantity sets the quantity of a line.
func (c *CartContainer) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return c.run(ctx, "Failed to update quantity", func(ctx context.Context) (*shophub.Cart, error) {
		return cartOf(c.api.UpdateQuantity(ctx, productID, quantity))
	})
}

// Clear empties the cart.
func (c *CartContainer) Clear(ctx context.Context) error {
	return c.run(ctx, "Failed to clear cart", func(ctx context.Context) (*shophub.Cart, error) {
		return cartOf(c.api.Clear(ctx))
	})
}

// Close cancels every in-flight request. Responses that arrive afterwards
// are dropped and later calls return shophub.ErrClosed.
func (c *CartContainer) Close() error {
	c.mu.Lock()
	c.closed = true
	c.observers = nil
	c.mu.Unlock()

	c.cancel()
	return nil
}

func (c *CartContainer) run(ctx context.Context, fallback string, call func(context.Context) (*shophub.Cart, error)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shophub.ErrClosed
	}
	c.seq++
	seq := c.seq
	c.pending++
	c.err = ""
	c.notifyLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	cart, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	if c.closed {
		return shophub.ErrClosed
	}

	if seq < c.applied {
		c.log.Debug().Uint64("seq", seq).Uint64("applied", c.applied).Msg("discarding stale cart response")
		c.notifyLocked()
		return err
	}

	if err != nil {
		c.err = shophub.DisplayMessage(err, fallback)
		c.log.Error().Err(err).Msg(fallback)
	} else {
		c.cart = cart
		c.applied = seq
	}
	c.notifyLocked()
	return err
}

// notifyLocked snapshots the state and releases the lock while observers
// run, then takes it back.
func (c *CartContainer) notifyLocked() {
	st := c.stateLocked()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(st)
	}
	c.mu.Lock()
}

func (c *CartContainer) stateLocked() CartState {
	return CartState{Cart: c.cart, Loading: c.pending > 0, Error: c.err}
}

func cartOf(resp *shophub.CartResponse, err error) (*shophub.Cart, error) {
	if err != nil {
		return nil, err
	}
	cart := resp.Cart
	return &cart, nil
}
