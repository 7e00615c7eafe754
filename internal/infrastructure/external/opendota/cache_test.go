package opendota

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheStoresAndReturnsFreshEntries(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "/players/123", CachedResponse{Body: []byte(`{"ok":true}`)}, time.Minute)

	resp, ok := cache.Get(ctx, "/players/123")
	assert.True(t, ok)
	assert.False(t, resp.NotFound)
	assert.Equal(t, []byte(`{"ok":true}`), resp.Body)
}

func TestMemoryCacheEvictsExpiredEntryOnRead(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Set(ctx, "key", CachedResponse{Body: []byte("v")}, 90*time.Second)

	// Still fresh just before the deadline.
	now = now.Add(89 * time.Second)
	_, ok := cache.Get(ctx, "key")
	assert.True(t, ok)

	// Past the deadline the read misses and evicts.
	now = now.Add(2 * time.Second)
	_, ok = cache.Get(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCacheCachesNotFound(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "/players/404", CachedResponse{NotFound: true}, time.Minute)

	resp, ok := cache.Get(ctx, "/players/404")
	assert.True(t, ok)
	assert.True(t, resp.NotFound)
	assert.Nil(t, resp.Body)
}

func TestMemoryCacheIgnoresNonPositiveTTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "key", CachedResponse{Body: []byte("v")}, 0)

	_, ok := cache.Get(ctx, "key")
	assert.False(t, ok)
}

func TestCacheKeyIncludesSortedQuery(t *testing.T) {
	assert.Equal(t, "/heroes", cacheKey("/heroes", nil))

	params := url.Values{
		"lobby_type": {"7"},
		"limit":      {"10"},
	}
	assert.Equal(t, "/players/1/matches?limit=10&lobby_type=7",
		cacheKey("/players/1/matches", params))
}
