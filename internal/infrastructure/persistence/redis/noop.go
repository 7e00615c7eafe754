package redis

import (
	"context"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// NO-OP FALLBACKS
// Used when Redis is disabled: reads always miss, writes vanish. The
// repositories stay the source of truth, so the bot works without Redis,
// just without the cache layer.
// ══════════════════════════════════════════════════════════════════════════════

// NoopAccountCache is an account.Cache that never holds anything.
type NoopAccountCache struct{}

// Get always misses.
func (NoopAccountCache) Get(_ context.Context, _ account.TelegramID) (*account.Account, error) {
	return nil, account.ErrAccountNotFound
}

// Set drops the value.
func (NoopAccountCache) Set(_ context.Context, _ *account.Account, _ time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NoopAccountCache) Delete(_ context.Context, _ account.TelegramID) error { return nil }

// InvalidateAll is a no-op.
func (NoopAccountCache) InvalidateAll(_ context.Context) error { return nil }

// NoopDictionary resolves nothing; consumers fall back to numeric ids.
type NoopDictionary struct{}

// Lookup always returns an empty name.
func (NoopDictionary) Lookup(_ context.Context, _ string, _ int) (string, error) {
	return "", nil
}

// GetAll always returns an empty table.
func (NoopDictionary) GetAll(_ context.Context, _ string) (map[int]string, error) {
	return map[int]string{}, nil
}
