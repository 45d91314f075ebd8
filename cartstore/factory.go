package cartstore

import (
	"time"

	"github.com/creastat/shophub"
)

// StoreType represents the type of cart store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Default TTL for cart keys (24 hours).
const defaultTTL = 24 * time.Hour

// NewStore creates a new Store based on the given type.
// Supports "memory" and "redis" driver types.
// For Redis, requires WithRedisClient option.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}

	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(), nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, shophub.ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = defaultTTL
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
		}, nil

	default:
		return nil, shophub.ErrInvalidStoreType
	}
}
