package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub"
)

type countingSource struct {
	calls    atomic.Int32
	products []shophub.Product
	err      error
	delay    time.Duration
}

func (s *countingSource) Products(ctx context.Context) ([]shophub.Product, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.products, s.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestServiceQueries(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewStaticSource())

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(Fixtures()))

	p, err := svc.ByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 109.95, p.Price)

	_, err = svc.ByID(ctx, 999)
	assert.ErrorIs(t, err, shophub.ErrNotFound)

	p, err = svc.Lookup(ctx, " 3 ")
	require.NoError(t, err)
	assert.Equal(t, "Mens Cotton Jacket", p.Title)

	_, err = svc.Lookup(ctx, "abc")
	assert.ErrorIs(t, err, shophub.ErrNotFound)

	electronics, err := svc.ByCategory(ctx, "ELECTRONICS")
	require.NoError(t, err)
	assert.Len(t, electronics, 2)

	_, err = svc.ByCategory(ctx, "furniture")
	assert.ErrorIs(t, err, shophub.ErrNotFound)

	results, err := svc.Search(ctx, "cotton")
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	none, err := svc.Search(ctx, "spaceship")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "jewelery", "men's clothing", "women's clothing"}, cats)

	idx, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Contains(t, idx, "13")
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	src := NewStaticSource()
	a, _ := src.Products(context.Background())
	a[0].Title = "changed"
	b, _ := src.Products(context.Background())
	assert.NotEqual(t, "changed", b[0].Title)
}

func TestCacheStoresInRedis(t *testing.T) {
	mr, client := newRedis(t)
	src := &countingSource{products: Fixtures()}
	cache := NewCache(src, client, time.Hour, zerolog.Nop())
	ctx := context.Background()

	first, err := cache.Products(ctx)
	require.NoError(t, err)
	second, err := cache.Products(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, mr.Exists(CacheKey))
	assert.Equal(t, time.Hour, mr.TTL(CacheKey))
	assert.Greater(t, cache.TTL(ctx), time.Duration(0))

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(CacheKey))

	_, err = cache.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	_, err = cache.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCacheDoesNotStoreEmptyList(t *testing.T) {
	mr, client := newRedis(t)
	cache := NewCache(&countingSource{}, client, time.Hour, zerolog.Nop())

	products, err := cache.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.False(t, mr.Exists(CacheKey))
}

func TestCacheFallsBackOnRedisError(t *testing.T) {
	mr, client := newRedis(t)
	src := &countingSource{products: Fixtures()}
	cache := NewCache(src, client, time.Hour, zerolog.Nop())

	mr.SetError("READONLY")
	defer mr.SetError("")

	products, err := cache.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, len(Fixtures()))
}

func TestCacheIgnoresCorruptEntry(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set(CacheKey, "{not json"))

	src := &countingSource{products: Fixtures()}
	cache := NewCache(src, client, time.Hour, zerolog.Nop())

	products, err := cache.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, len(Fixtures()))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	src := &countingSource{products: Fixtures(), delay: 50 * time.Millisecond}
	cache := NewCache(src, nil, time.Hour, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Products(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, src.calls.Load(), int32(10))
}

// gatedSource blocks until released and fails if its context ended first.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) Products(ctx context.Context) ([]shophub.Product, error) {
	close(s.started)
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Fixtures(), nil
}

func TestCacheSharedLoadSurvivesCallerCancel(t *testing.T) {
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src, nil, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Products(ctx)
		first <- err
	}()
	<-src.started

	second := make(chan []shophub.Product, 1)
	go func() {
		products, err := cache.Products(context.Background())
		assert.NoError(t, err)
		second <- products
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(src.release)
	assert.Len(t, <-second, len(Fixtures()))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Fixtures()[:2])
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPSourceConfig{URL: srv.URL}, zerolog.Nop())
	require.NoError(t, err)

	products, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 3.9, products[0].Rating.Rate)
}

func TestHTTPSourceOpensCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPSourceConfig{URL: srv.URL, MinRequests: 2, OpenTimeout: time.Minute}, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := src.Products(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, src.State())

	_, err = src.Products(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(2), hits.Load())
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(SourceConfig{Type: SourceTypeStatic}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &StaticSource{}, src)
	products, err := src.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, len(Fixtures()))

	_, err = NewSource(SourceConfig{Type: SourceTypeHTTP}, zerolog.Nop())
	assert.ErrorIs(t, err, shophub.ErrInvalidConfig)

	_, err = NewSource(SourceConfig{Type: SourceTypeSupabase}, zerolog.Nop())
	assert.ErrorIs(t, err, shophub.ErrInvalidConfig)

	_, err = NewSource(SourceConfig{Type: "ftp"}, zerolog.Nop())
	assert.ErrorIs(t, err, shophub.ErrInvalidStoreType)
}
