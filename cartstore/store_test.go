package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	mem, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rs, err := NewStore(StoreTypeRedis, WithRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})))
	require.NoError(t, err)

	return map[string]Store{"memory": mem, "redis": rs}
}

func TestNewStore_Errors(t *testing.T) {
	_, err := NewStore("postgres")
	assert.ErrorIs(t, err, shophub.ErrInvalidStoreType)

	_, err = NewStore(StoreTypeRedis)
	assert.ErrorIs(t, err, shophub.ErrInvalidConfig)
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, got)

			data := &CartData{SessionID: "s1"}
			data.Add("3", 2)
			require.NoError(t, store.Create(ctx, data))
			assert.Equal(t, int64(1), data.Version)

			assert.ErrorIs(t, store.Create(ctx, &CartData{SessionID: "s1"}), shophub.ErrVersionConflict)

			got, err = store.Get(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, 2, got.Quantity("3"))

			got.Add("7", 1)
			require.NoError(t, store.Update(ctx, got))
			assert.Equal(t, int64(2), got.Version)

			reread, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []Line{{ProductID: "3", Quantity: 2}, {ProductID: "7", Quantity: 1}}, reread.Lines)

			require.NoError(t, store.Delete(ctx, "s1"))
			got, err = store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_VersionConflict(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, &CartData{SessionID: "s2"}))

			a, err := store.Get(ctx, "s2")
			require.NoError(t, err)
			b, err := store.Get(ctx, "s2")
			require.NoError(t, err)

			a.Add("1", 1)
			require.NoError(t, store.Update(ctx, a))

			b.Add("2", 1)
			assert.ErrorIs(t, store.Update(ctx, b), shophub.ErrVersionConflict)

			assert.ErrorIs(t, store.Update(ctx, &CartData{SessionID: "missing"}), shophub.ErrNotFound)
		})
	}
}

func TestMemoryStore_DoesNotAliasCallerData(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)

	data := &CartData{SessionID: "s3"}
	require.NoError(t, store.Create(ctx, data))
	data.Add("9", 4)

	got, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestRedisStore_OnlyTouchExtendsTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := NewStore(StoreTypeRedis,
		WithRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		WithRedisTTL(time.Hour),
	)
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, &CartData{SessionID: "s4"}))
	mr.FastForward(30 * time.Minute)

	got, err := store.Get(ctx, "s4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30*time.Minute, mr.TTL("cart:s4"), "reads leave the expiry alone")

	require.NoError(t, store.Touch(ctx, "s4"))
	assert.Equal(t, time.Hour, mr.TTL("cart:s4"))

	mem, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	assert.NoError(t, mem.Touch(ctx, "missing"))
}

func TestCartData_Mutations(t *testing.T) {
	c := &CartData{}
	c.Add("1", 1)
	c.Add("2", 2)
	c.Add("1", 3)
	assert.Equal(t, 4, c.Quantity("1"))
	assert.Equal(t, 6, c.ItemCount())

	c.Set("2", 5)
	assert.Equal(t, 5, c.Quantity("2"))

	c.Set("1", 0)
	assert.Equal(t, 0, c.Quantity("1"))
	assert.Len(t, c.Lines, 1)

	c.Remove("2")
	assert.Equal(t, 0, c.ItemCount())

	c.Add("4", 1)
	c.Clear()
	assert.Empty(t, c.Lines)
}
