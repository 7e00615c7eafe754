package redis

import (
	"context"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ResponseCache implements opendota.ResponseCache on Redis. Unlike the
// in-process cache, it is shared between the bot and the worker: both
// processes poll the same profiles and benefit from each other's fetches.
type ResponseCache struct {
	cache *Cache
}

// NewResponseCache creates a new ResponseCache.
func NewResponseCache(cache *Cache) *ResponseCache {
	return &ResponseCache{
		cache: cache,
	}
}

// Get implements opendota.ResponseCache. Redis errors degrade to a miss:
// a broken cache must never block the poll cycle.
func (c *ResponseCache) Get(ctx context.Context, key string) (opendota.CachedResponse, bool) {
	var resp opendota.CachedResponse
	if err := c.cache.Get(ctx, ResponseKey(key), &resp); err != nil {
		return opendota.CachedResponse{}, false
	}
	return resp, true
}

// Set implements opendota.ResponseCache.
func (c *ResponseCache) Set(ctx context.Context, key string, resp opendota.CachedResponse, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_ = c.cache.Set(ctx, ResponseKey(key), resp, ttl)
}
