package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/uni-timetable-api/pkg/config"
)

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// ResultCache stores generation responses keyed by a digest of the request
// body. Generation is deterministic for equal input and options, so a cached
// body stands in for a fresh solve; it is returned as stored, including the
// first solve's solve_time_seconds and run_id.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps a Redis client for response caching.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Key digests the request body bytes as given; bodies that differ only in
// whitespace or field order get different keys.
func (c *ResultCache) Key(body []byte) string {
	sum := sha256.Sum256(body)
	return "timetable:result:" + hex.EncodeToString(sum[:])
}

// Get returns the cached response body for the key, or nil on miss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Set stores a response body under the key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, body []byte) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, body, c.ttl).Err()
}
