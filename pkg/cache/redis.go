package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the requested key was not found (or has
// expired) in the Redis tier.
var ErrCacheMiss = errors.New("cache miss")

// keyPrefix namespaces proxy response entries inside a shared Redis.
const keyPrefix = "market:response:"

// RedisStore is a shared TTL cache for raw upstream response payloads.
// Expiry is enforced server-side via the key TTL, so unlike Store there
// is no lazy expiry pass. Several proxy instances pointed at the same
// Redis share one fetch per key per TTL window.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed response cache.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

// Get retrieves the payload stored under key.
// Returns ErrCacheMiss if the key does not exist.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(storeRedis).Inc()
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	CacheHits.WithLabelValues(storeRedis).Inc()
	return data, nil
}

// Set stores payload under key for ttl. Entries with a non-positive
// ttl are not cached.
func (r *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every entry in this store's namespace. Other keys in
// the shared Redis are untouched.
func (r *RedisStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
