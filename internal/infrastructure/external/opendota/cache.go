package opendota

import (
	"context"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// CachedResponse is a stored upstream response. NotFound records a 404 so
// repeated lookups of a missing profile do not hammer the API.
type CachedResponse struct {
	Body     []byte `json:"body"`
	NotFound bool   `json:"not_found"`
}

// ResponseCache is a read-through cache for raw API responses, keyed by the
// request signature (path plus encoded query). Implementations: MemoryCache
// below and the Redis-backed cache in infrastructure/persistence/redis.
type ResponseCache interface {
	// Get returns the cached response and whether it was present and fresh.
	Get(ctx context.Context, key string) (CachedResponse, bool)

	// Set stores a response with the given time to live.
	Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration)
}

type memoryCacheEntry struct {
	resp      CachedResponse
	expiresAt time.Time
}

// MemoryCache is an in-process ResponseCache. Entries expire lazily: a stale
// entry is deleted on the read that discovers it.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewMemoryCache creates an empty in-process response cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

// Get implements ResponseCache.
func (c *MemoryCache) Get(_ context.Context, key string) (CachedResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return CachedResponse{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return CachedResponse{}, false
	}
	return entry.resp, true
}

// Set implements ResponseCache.
func (c *MemoryCache) Set(_ context.Context, key string, resp CachedResponse, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		resp:      resp,
		expiresAt: c.now().Add(ttl),
	}
}

// Len returns the number of stored entries, counting stale ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
