package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/metrics"
)

// CacheKey is the redis key holding the serialized product list.
const CacheKey = "products:all"

// DefaultCacheTTL keeps the catalog for a year; the upstream feed is static.
const DefaultCacheTTL = 365 * 24 * time.Hour

// LoadTimeout bounds one upstream fetch shared by concurrent callers.
const LoadTimeout = 30 * time.Second

const cacheType = "catalog"

// Cache fronts a Source with redis. Concurrent misses share one upstream
// fetch. Redis failures are logged and the source is used directly.
type Cache struct {
	src    Source
	client *redis.Client // nil disables redis
	ttl    time.Duration
	log    zerolog.Logger
	group  singleflight.Group
}

// NewCache wraps src. client may be nil.
func NewCache(src Source, client *redis.Client, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{src: src, client: client, ttl: ttl, log: log}
}

// Products implements Source.
func (c *Cache) Products(ctx context.Context) ([]shophub.Product, error) {
	if c.client != nil {
		products, ok, err := c.get(ctx)
		switch {
		case err != nil:
			metrics.CacheErrors.WithLabelValues(cacheType).Inc()
			c.log.Warn().Err(err).Msg("catalog cache read failed, using source")
		case ok:
			metrics.RecordCacheLookup(cacheType, true)
			return products, nil
		default:
			metrics.RecordCacheLookup(cacheType, false)
		}
	}
	return c.load(ctx)
}

// Refresh bypasses the cache, fetches from the source and stores the result.
func (c *Cache) Refresh(ctx context.Context) ([]shophub.Product, error) {
	return c.load(ctx)
}

// Invalidate drops the cached list.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, CacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}

// TTL returns the remaining lifetime of the cached list, zero when absent.
func (c *Cache) TTL(ctx context.Context) time.Duration {
	if c.client == nil {
		return 0
	}
	d, err := c.client.TTL(ctx, CacheKey).Result()
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Cache) get(ctx context.Context) ([]shophub.Product, bool, error) {
	raw, err := c.client.Get(ctx, CacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []shophub.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.log.Warn().Err(err).Msg("discarding undecodable catalog cache entry")
		return nil, false, nil
	}
	return products, true, nil
}

func (c *Cache) load(ctx context.Context) ([]shophub.Product, error) {
	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := c.group.DoChan(CacheKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		products, err := c.src.Products(fetchCtx)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			c.log.Warn().Msg("source returned no products")
			return products, nil
		}
		c.store(fetchCtx, products)
		return products, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		c.log.Debug().Msg("catalog load shared with concurrent caller")
	}

	products := res.Val.([]shophub.Product)
	out := make([]shophub.Product, len(products))
	copy(out, products)
	return out, nil
}

func (c *Cache) store(ctx context.Context, products []shophub.Product) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode catalog for cache")
		return
	}
	if err := c.client.Set(ctx, CacheKey, raw, c.ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues(cacheType).Inc()
		c.log.Warn().Err(err).Msg("write catalog cache")
		return
	}
	c.log.Info().Int("count", len(products)).Dur("ttl", c.ttl).Msg("catalog cached")
}
