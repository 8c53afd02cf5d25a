package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"oxygen-dispatch-service/internal/platform/obs"
	"oxygen-dispatch-service/internal/ports"
)

// RedisETACache is a Redis-backed cache for ETA estimation results.
// Entries expire after the configured TTL; the cache is an optimization
// only and misses are never surfaced as failures to the caller.
type RedisETACache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisETACache(client *redis.Client, ttl time.Duration) *RedisETACache {
	return &RedisETACache{client: client, ttl: ttl}
}

func (c *RedisETACache) Get(ctx context.Context, key string) (_ ports.ETARecord, _ bool, err error) {
	defer obs.Time(ctx, "eta.cache.Get")(&err)

	if c.client == nil {
		return ports.ETARecord{}, false, errors.New("eta cache: client is nil")
	}
	if key == "" {
		return ports.ETARecord{}, false, errors.New("eta cache: key must not be empty")
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ETARecord{}, false, nil
	}
	if err != nil {
		return ports.ETARecord{}, false, fmt.Errorf("eta cache: get %q: %w", key, err)
	}

	var rec ports.ETARecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return ports.ETARecord{}, false, nil
	}
	return rec, true, nil
}

func (c *RedisETACache) Put(ctx context.Context, key string, rec ports.ETARecord) (err error) {
	defer obs.Time(ctx, "eta.cache.Put")(&err)

	if c.client == nil {
		return errors.New("eta cache: client is nil")
	}
	if key == "" {
		return errors.New("eta cache: key must not be empty")
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("eta cache: marshal record: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("eta cache: set %q: %w", key, err)
	}
	return nil
}
