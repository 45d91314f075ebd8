package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/creastat/shophub"
)

// Redis key prefix for carts
const cartKeyPrefix = "cart:"

// redisStore implements Store using Redis with optimistic locking.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Create implements Store.
func (s *redisStore) Create(ctx context.Context, data *CartData) error {
	now := time.Now()
	data.CreatedAt = now
	data.UpdatedAt = now
	data.Version = 1

	val, err := json.Marshal(data)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, s.key(data.SessionID), val, s.ttl).Result()
	if err != nil {
		return err
	}
	if !created {
		return shophub.ErrVersionConflict
	}
	return nil
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, sessionID string) (*CartData, error) {
	key := s.key(sessionID)
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data CartData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Touch implements Store.
func (s *redisStore) Touch(ctx context.Context, sessionID string) error {
	return s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
}

// Update implements Store.
// Uses WATCH/MULTI/EXEC so a concurrent writer fails the transaction.
func (s *redisStore) Update(ctx context.Context, data *CartData) error {
	key := s.key(data.SessionID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return shophub.ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored CartData
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}

		if stored.Version != data.Version {
			return shophub.ErrVersionConflict
		}

		next := data.Clone()
		next.Version++
		next.UpdatedAt = time.Now()

		newVal, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		data.Version = next.Version
		data.UpdatedAt = next.UpdatedAt
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return shophub.ErrVersionConflict
	}
	return err
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}

// key constructs the Redis key for a session ID.
func (s *redisStore) key(sessionID string) string {
	return cartKeyPrefix + sessionID
}
