package redis

import (
	"context"
	"errors"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// AccountCache implements account.Cache using the generic Redis Cache.
// The poll cycle and the command handlers read bindings far more often
// than they change, so a short TTL keeps Postgres off the hot path.
type AccountCache struct {
	cache *Cache
}

// NewAccountCache creates a new AccountCache.
func NewAccountCache(cache *Cache) *AccountCache {
	return &AccountCache{
		cache: cache,
	}
}

// Get returns the cached account or account.ErrAccountNotFound on a miss.
func (c *AccountCache) Get(ctx context.Context, telegramID account.TelegramID) (*account.Account, error) {
	var acc account.Account
	key := AccountKey(telegramID.Int64())

	err := c.cache.Get(ctx, key, &acc)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Set stores the account for the given TTL.
func (c *AccountCache) Set(ctx context.Context, acc *account.Account, ttl time.Duration) error {
	if acc == nil {
		return nil
	}
	key := AccountKey(acc.TelegramID.Int64())
	return c.cache.Set(ctx, key, acc, ttl)
}

// Delete drops the cached account. Called after every state change so
// readers never see a stale binding.
func (c *AccountCache) Delete(ctx context.Context, telegramID account.TelegramID) error {
	return c.cache.Delete(ctx, AccountKey(telegramID.Int64()))
}

// InvalidateAll clears the whole account cache.
func (c *AccountCache) InvalidateAll(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, PrefixAccount+"*")
}
