package supabase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/creastat/shophub"
)

// Config holds Supabase connection configuration
type Config struct {
	URL      string
	APIKey   string
	Table    string        // Default: products
	CacheTTL time.Duration // Default: 5 minutes
}

// Client implements the Store interface using Supabase
type Client struct {
	client   *supabase.Client
	table    string
	cache    *cache
	cacheTTL time.Duration
}

// cache provides thread-safe caching for frequently accessed data
type cache struct {
	mu   sync.RWMutex
	all  *cacheEntry[[]shophub.Product]
	byID map[int]*cacheEntry[*shophub.Product]
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// New creates a new Supabase client
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	if cfg.Table == "" {
		cfg.Table = "products"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		client:   client,
		table:    cfg.Table,
		cacheTTL: cfg.CacheTTL,
		cache: &cache{
			byID: make(map[int]*cacheEntry[*shophub.Product]),
		},
	}, nil
}

// Products retrieves all active products
func (c *Client) Products(ctx context.Context) ([]shophub.Product, error) {
	if cached, ok := c.getAllFromCache(); ok {
		return cached, nil
	}

	var rows []ProductRow
	_, err := c.client.From(c.table).
		Select("*", "", false).
		Eq("is_active", "true").
		ExecuteTo(&rows)

	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := make([]shophub.Product, len(rows))
	for i, row := range rows {
		products[i] = row.Product()
	}

	c.addAllToCache(products)

	return products, nil
}

// Product retrieves a product by ID
func (c *Client) Product(ctx context.Context, id int) (*shophub.Product, error) {
	if cached := c.getFromCacheByID(id); cached != nil {
		return cached, nil
	}

	var rows []ProductRow
	_, err := c.client.From(c.table).
		Select("*", "", false).
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&rows)

	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("product %d: %w", id, shophub.ErrNotFound)
	}

	product := rows[0].Product()
	c.addToCacheByID(id, &product)

	return &product, nil
}

// Close closes the Supabase client
func (c *Client) Close() error {
	// Supabase client doesn't require explicit close
	return nil
}

func (c *Client) getAllFromCache() ([]shophub.Product, bool) {
	c.cache.mu.RLock()
	defer c.cache.mu.RUnlock()

	if e := c.cache.all; e != nil && time.Now().Before(e.expiresAt) {
		return e.value, true
	}
	return nil, false
}

func (c *Client) getFromCacheByID(id int) *shophub.Product {
	c.cache.mu.RLock()
	defer c.cache.mu.RUnlock()

	if e, ok := c.cache.byID[id]; ok {
		if time.Now().Before(e.expiresAt) {
			return e.value
		}
	}
	return nil
}

// addAllToCache stores the full list and indexes every product by ID
func (c *Client) addAllToCache(products []shophub.Product) {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	expiresAt := time.Now().Add(c.cacheTTL)
	c.cache.all = &cacheEntry[[]shophub.Product]{value: products, expiresAt: expiresAt}
	for i := range products {
		c.cache.byID[products[i].ID] = &cacheEntry[*shophub.Product]{value: &products[i], expiresAt: expiresAt}
	}
}

func (c *Client) addToCacheByID(id int, product *shophub.Product) {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	c.cache.byID[id] = &cacheEntry[*shophub.Product]{
		value:     product,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
}

// Compile-time check that Client implements Store
var _ Store = (*Client)(nil)
