package kv

import (
	"fmt"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/kv/drivers"
)

// StoreType represents the type of key-value store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeBadger StoreType = "badger"
	StoreTypeRedis  StoreType = "redis"
)

// NewStore creates a new Store based on the given type.
// For Redis, requires WithRedisClient option.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}

	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return drivers.NewMemoryStore(config.keyPrefix), nil

	case StoreTypeBadger:
		store, err := drivers.NewBadgerStore(config.path, config.keyPrefix)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, shophub.ErrInvalidConfig
		}
		return drivers.NewRedisStore(config.redisClient, config.keyPrefix, config.redisTTL), nil

	default:
		return nil, shophub.ErrInvalidStoreType
	}
}

// Compile-time checks that every driver implements Store.
var (
	_ Store = (*drivers.MemoryStore)(nil)
	_ Store = (*drivers.BadgerStore)(nil)
	_ Store = (*drivers.RedisStore)(nil)
)
