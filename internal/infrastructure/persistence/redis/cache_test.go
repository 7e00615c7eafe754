package redis

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	cache, err := NewCache(cfg)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return cache, mr
}

func testAccount(t *testing.T) *account.Account {
	t.Helper()

	acc, err := account.NewAccount(account.NewAccountParams{
		TelegramID:  account.TelegramID(123456789),
		SteamID:     account.SteamID(86745912),
		PersonaName: "Dendi",
	})
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	return acc
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERIC CACHE
// ══════════════════════════════════════════════════════════════════════════════

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	err := cache.Set(ctx, "test:key", payload{Name: "pudge", Count: 3}, time.Minute)
	assert.NoError(t, err)

	var got payload
	err = cache.Get(ctx, "test:key", &got)
	assert.NoError(t, err)
	assert.Equal(t, "pudge", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCacheGetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got string
	err := cache.Get(context.Background(), "test:absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	err := cache.SetString(ctx, "test:ttl", "value", time.Minute)
	assert.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.GetString(ctx, "test:ttl")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT CACHE
// ══════════════════════════════════════════════════════════════════════════════

func TestAccountCacheRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t)
	accounts := NewAccountCache(cache)
	ctx := context.Background()

	acc := testAccount(t)
	err := accounts.Set(ctx, acc, TTLAccountCache)
	assert.NoError(t, err)

	got, err := accounts.Get(ctx, acc.TelegramID)
	assert.NoError(t, err)
	assert.Equal(t, acc.TelegramID, got.TelegramID)
	assert.Equal(t, acc.SteamID, got.SteamID)
	assert.Equal(t, "Dendi", got.PersonaName)
}

func TestAccountCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	accounts := NewAccountCache(cache)

	_, err := accounts.Get(context.Background(), account.TelegramID(42))
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestAccountCacheDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	accounts := NewAccountCache(cache)
	ctx := context.Background()

	acc := testAccount(t)
	assert.NoError(t, accounts.Set(ctx, acc, TTLAccountCache))
	assert.NoError(t, accounts.Delete(ctx, acc.TelegramID))

	_, err := accounts.Get(ctx, acc.TelegramID)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestAccountCacheInvalidateAll(t *testing.T) {
	cache, _ := newTestCache(t)
	accounts := NewAccountCache(cache)
	ctx := context.Background()

	acc := testAccount(t)
	assert.NoError(t, accounts.Set(ctx, acc, TTLAccountCache))
	assert.NoError(t, accounts.InvalidateAll(ctx))

	_, err := accounts.Get(ctx, acc.TelegramID)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE CACHE
// ══════════════════════════════════════════════════════════════════════════════

func TestResponseCacheRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t)
	responses := NewResponseCache(cache)
	ctx := context.Background()

	responses.Set(ctx, "players/123", opendota.CachedResponse{Body: []byte(`{"ok":true}`)}, TTLResponseCache)

	got, ok := responses.Get(ctx, "players/123")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"ok":true}`), got.Body)
	assert.False(t, got.NotFound)
}

func TestResponseCacheStoresNotFound(t *testing.T) {
	cache, _ := newTestCache(t)
	responses := NewResponseCache(cache)
	ctx := context.Background()

	responses.Set(ctx, "players/404", opendota.CachedResponse{NotFound: true}, TTLResponseCache)

	got, ok := responses.Get(ctx, "players/404")
	assert.True(t, ok)
	assert.True(t, got.NotFound)
}

func TestResponseCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	responses := NewResponseCache(cache)

	_, ok := responses.Get(context.Background(), "players/absent")
	assert.False(t, ok)
}

func TestResponseCacheIgnoresNonPositiveTTL(t *testing.T) {
	cache, _ := newTestCache(t)
	responses := NewResponseCache(cache)
	ctx := context.Background()

	responses.Set(ctx, "players/123", opendota.CachedResponse{Body: []byte(`{}`)}, 0)

	_, ok := responses.Get(ctx, "players/123")
	assert.False(t, ok)
}

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARY CACHE
// ══════════════════════════════════════════════════════════════════════════════

func TestDictionaryCacheRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t)
	dicts := NewDictionaryCache(cache)
	ctx := context.Background()

	err := dicts.Put(ctx, DictionaryHeroes, map[int]string{
		1:  "Anti-Mage",
		14: "Pudge",
	})
	assert.NoError(t, err)

	all, err := dicts.GetAll(ctx, DictionaryHeroes)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Pudge", all[14])

	name, err := dicts.Lookup(ctx, DictionaryHeroes, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Anti-Mage", name)
}

func TestDictionaryCacheLookupMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	dicts := NewDictionaryCache(cache)

	_, err := dicts.Lookup(context.Background(), DictionaryHeroes, 999)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDictionaryCachePutReplaces(t *testing.T) {
	cache, _ := newTestCache(t)
	dicts := NewDictionaryCache(cache)
	ctx := context.Background()

	assert.NoError(t, dicts.Put(ctx, DictionaryGameModes, map[int]string{22: "All Pick"}))
	assert.NoError(t, dicts.Put(ctx, DictionaryGameModes, map[int]string{23: "Turbo"}))

	all, err := dicts.GetAll(ctx, DictionaryGameModes)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Turbo", all[23])
}
