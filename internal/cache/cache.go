// Package cache memoizes final extraction results by bundle digest. A cache
// hit skips inference entirely; the cache is optional and the pipeline works
// without one.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pactscan/pactscan/pkg/models"
)

// Cache is the result-cache interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	GetResult(ctx context.Context, digest string) (*models.ExtractionResult, bool, error)
	SetResult(ctx context.Context, digest string, r *models.ExtractionResult, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache implements Cache using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetResult(ctx context.Context, digest string) (*models.ExtractionResult, bool, error) {
	val, err := c.client.Get(ctx, ResultKey(digest)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var r models.ExtractionResult
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &r, true, nil
}

func (c *RedisCache) SetResult(ctx context.Context, digest string, r *models.ExtractionResult, ttl time.Duration) error {
	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return c.client.Set(ctx, ResultKey(digest), val, ttl).Err()
}
