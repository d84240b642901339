package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "vibeguide:ai:" // key layout: vibeguide:ai:{path}:{payload sha256}

// Cache memoizes AI responses keyed by request path and payload.
// Implementations are best-effort: a failed Get is a miss, a failed
// Set is dropped.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// CacheKey derives the cache key for a request.
func CacheKey(path string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return cacheKeyPrefix + path + ":" + hex.EncodeToString(sum[:])
}

// RedisCache is a Redis-backed Cache with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache around an existing Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	c.client.Set(ctx, key, value, c.ttl)
}
