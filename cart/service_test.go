package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/cartstore"
	"github.com/creastat/shophub/catalog"
)

func testCatalog() *catalog.Service {
	return catalog.NewService(catalog.NewStaticSource(
		shophub.Product{ID: 1, Title: "Backpack", Price: 40, Category: "bags", Image: "bp.jpg"},
		shophub.Product{ID: 2, Title: "T-Shirt", Price: 22.3, Category: "clothing"},
		shophub.Product{ID: 3, Title: "Ring", Price: 0.1, Category: "jewelery"},
	))
}

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := cartstore.NewStore(cartstore.StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, testCatalog(), zerolog.Nop())
}

func TestGetEmpty(t *testing.T) {
	svc := newService(t)
	cart, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", cart.SessionID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.Zero(t, cart.ItemCount)
	assert.Zero(t, cart.Total)
}

func TestAddMergesQuantities(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "2", 2)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, "s1", "1", 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "1", cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 120.0, cart.Items[0].Subtotal)
	assert.Equal(t, "bp.jpg", cart.Items[0].Image)
	assert.Equal(t, 5, cart.ItemCount)
	assert.Equal(t, 164.6, cart.Total)
}

func TestAddRejects(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "999", 1)
	assert.ErrorIs(t, err, shophub.ErrNotFound)

	_, err = svc.Add(ctx, "s1", "1", 0)
	assert.ErrorIs(t, err, shophub.ErrInvalidQuantity)
}

func TestTotalRoundsToCents(t *testing.T) {
	svc := newService(t)
	cart, err := svc.Add(context.Background(), "s1", "3", 3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cart.Total)
}

func TestUpdateQuantity(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "s1", "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)

	cart, err = svc.UpdateQuantity(ctx, "s1", "1", 0)
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
	assert.Empty(t, cart.Items)

	_, err = svc.UpdateQuantity(ctx, "s1", "999", 2)
	assert.ErrorIs(t, err, shophub.ErrNotFound)
}

func TestRemoveOnlyItemEmptiesCart(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "2", 1)
	require.NoError(t, err)

	cart, err := svc.Remove(ctx, "s1", "2")
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
	assert.Zero(t, cart.Total)

	cart, err = svc.Remove(ctx, "s1", "2")
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
}

func TestClearAndIsolation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "a", "1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "b", "2", 2)
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)

	other, err := svc.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, other.ItemCount)
}

func TestUnknownProductSkippedInView(t *testing.T) {
	store, err := cartstore.NewStore(cartstore.StoreTypeMemory)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &cartstore.CartData{
		SessionID: "s1",
		Lines:     []cartstore.Line{{ProductID: "1", Quantity: 1}, {ProductID: "42", Quantity: 2}},
	}))

	svc := NewService(store, testCatalog(), zerolog.Nop())
	cart, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 40.0, cart.Total)
	assert.Equal(t, 3, cart.ItemCount)
}

// conflictingStore fails the first n updates with a version conflict.
type conflictingStore struct {
	cartstore.Store
	mu        sync.Mutex
	conflicts int
}

func (s *conflictingStore) Update(ctx context.Context, data *cartstore.CartData) error {
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return shophub.ErrVersionConflict
	}
	s.mu.Unlock()
	return s.Store.Update(ctx, data)
}

func TestVersionConflictsAreRetried(t *testing.T) {
	inner, err := cartstore.NewStore(cartstore.StoreTypeMemory)
	require.NoError(t, err)
	store := &conflictingStore{Store: inner}
	svc := NewService(store, testCatalog(), zerolog.Nop())
	ctx := context.Background()

	_, err = svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)

	store.conflicts = 2
	cart, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount)

	store.conflicts = DefaultMaxRetries + 1
	_, err = svc.Add(ctx, "s1", "1", 1)
	assert.ErrorIs(t, err, shophub.ErrVersionConflict)
}

func TestGetExtendsRedisExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := cartstore.NewStore(cartstore.StoreTypeRedis,
		cartstore.WithRedisClient(client),
		cartstore.WithRedisTTL(time.Hour),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store, testCatalog(), zerolog.Nop())
	ctx := context.Background()

	_, err = svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	mr.FastForward(45 * time.Minute)

	_, err = svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("cart:s1"))
}

func TestConcurrentAddsOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := cartstore.NewStore(cartstore.StoreTypeRedis, cartstore.WithRedisClient(client))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store, testCatalog(), zerolog.Nop())
	svc.maxRetries = 50
	ctx := context.Background()

	_, err = svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, "s1", "1", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 6, cart.ItemCount)
}
