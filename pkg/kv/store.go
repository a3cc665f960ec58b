// Package kv provides a TTL-capable key-value store abstraction shared by
// the snapshot cache and the rate limiter, with Redis and in-memory
// implementations.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	errs "liscraper/pkg/errors"
)

// Store defines the operations the service needs from a shared key-value store
type Store interface {
	// Get returns the value for key; found is false on a miss
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set writes key with the given TTL (0 means no expiry)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key; missing keys are not an error
	Delete(ctx context.Context, key string) error
	// IncrWithTTL atomically increments the counter at key and returns the
	// new value. The TTL is attached when the counter is first created and
	// never extended afterward.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Ping checks connectivity
	Ping(ctx context.Context) error
}

// RedisStore implements Store on a Redis connection
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis address
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Get returns the value for key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Newf(errs.ErrorTypeNetwork, "redis get %s: %v", key, err)
	}
	return val, true, nil
}

// Set writes key with the given TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "redis set %s: %v", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "redis del %s: %v", key, err)
	}
	return nil
}

// IncrWithTTL atomically increments key, attaching the TTL on first creation.
// INCR and EXPIRE NX run in one pipeline so concurrent callers cannot observe
// a counter without an expiry.
func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errs.Newf(errs.ErrorTypeNetwork, "redis incr %s: %v", key, err)
	}
	return incr.Val(), nil
}

// Ping checks connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "redis ping: %v", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
