// README: Redis-backed search cache for multi-process deployments.
package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tailwind/internal/logger"
	"tailwind/internal/modules/offer"
)

// RedisCache stores JSON-encoded offer sets with a per-key TTL. Cache misses
// on redis errors: a flaky cache must degrade to extra provider calls, never
// to a failed search.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]offer.Offer, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("redis cache read failed", "key", key, "error", err)
		return nil, false
	}
	var offers []offer.Offer
	if err := json.Unmarshal(raw, &offers); err != nil {
		c.log.Warn("redis cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return offers, true
}

func (c *RedisCache) Set(ctx context.Context, key string, offers []offer.Offer) {
	raw, err := json.Marshal(offers)
	if err != nil {
		c.log.Warn("redis cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("redis cache write failed", "key", key, "error", err)
	}
}
