// Package middleware contains Telegram bot middlewares for request processing.
// These middlewares form a chain that processes every incoming update before
// it reaches the handler, and can modify the response after the handler completes.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT KEYS
// Used to pass data through the request context.
// ══════════════════════════════════════════════════════════════════════════════

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// AccountContextKey is the context key for the resolved account.
	AccountContextKey contextKey = "account"

	// TelegramIDContextKey is the context key for the Telegram user ID.
	TelegramIDContextKey contextKey = "telegram_id"

	// RequestIDContextKey is the context key for request tracing.
	RequestIDContextKey contextKey = "request_id"

	// StartTimeContextKey is the context key for request start time.
	StartTimeContextKey contextKey = "start_time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT MIDDLEWARE
// Resolves the Steam binding for the incoming user and injects it into the
// context. Binding is never a hard gate: unbound users still reach /start
// and can link an account by sending a Steam ID as plain text, so screens
// handle the unbound case themselves.
// ══════════════════════════════════════════════════════════════════════════════

// AccountConfig holds configuration for the account middleware.
type AccountConfig struct {
	// CacheTTL is how long to cache account data to reduce DB queries.
	CacheTTL time.Duration
}

// DefaultAccountConfig returns sensible defaults for the account middleware.
func DefaultAccountConfig() AccountConfig {
	return AccountConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// AccountMiddleware resolves the account bound to a Telegram user and
// caches the lookup between updates.
type AccountMiddleware struct {
	accountRepo account.Repository
	config      AccountConfig
	cache       *accountCache
}

// NewAccountMiddleware creates a new account middleware.
func NewAccountMiddleware(repo account.Repository, config AccountConfig) *AccountMiddleware {
	return &AccountMiddleware{
		accountRepo: repo,
		config:      config,
		cache:       newAccountCache(config.CacheTTL),
	}
}

// AccountResult represents the result of an account lookup.
type AccountResult struct {
	// IsBound indicates if the user has a linked Steam account.
	IsBound bool

	// Account is the resolved account (nil if not bound).
	Account *account.Account
}

// Resolve looks up the account bound to the Telegram user.
// A missing binding is a normal state, not an error.
func (m *AccountMiddleware) Resolve(ctx context.Context, telegramID int64) (*AccountResult, error) {
	if cached := m.cache.get(telegramID); cached != nil {
		return &AccountResult{IsBound: true, Account: cached}, nil
	}

	acc, err := m.accountRepo.GetByTelegramID(ctx, account.TelegramID(telegramID))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return &AccountResult{IsBound: false}, nil
		}
		return nil, fmt.Errorf("middleware: resolve account: %w", err)
	}

	m.cache.set(telegramID, acc)

	return &AccountResult{IsBound: true, Account: acc}, nil
}

// InvalidateCache removes an account from the middleware cache.
// Call this after binding, unbinding or preference changes.
func (m *AccountMiddleware) InvalidateCache(telegramID int64) {
	m.cache.delete(telegramID)
}

// InvalidateAllCache clears the entire middleware cache.
func (m *AccountMiddleware) InvalidateAllCache() {
	m.cache.clear()
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT HELPERS
// Functions to work with resolved data in context.
// ══════════════════════════════════════════════════════════════════════════════

// ContextWithAccount adds the resolved account to the context.
func ContextWithAccount(ctx context.Context, acc *account.Account) context.Context {
	return context.WithValue(ctx, AccountContextKey, acc)
}

// AccountFromContext retrieves the resolved account from context.
// Returns nil if no account is in the context.
func AccountFromContext(ctx context.Context) *account.Account {
	acc, ok := ctx.Value(AccountContextKey).(*account.Account)
	if !ok {
		return nil
	}
	return acc
}

// ContextWithTelegramID adds the Telegram ID to the context.
func ContextWithTelegramID(ctx context.Context, telegramID int64) context.Context {
	return context.WithValue(ctx, TelegramIDContextKey, telegramID)
}

// TelegramIDFromContext retrieves the Telegram ID from context.
// Returns 0 if not found.
func TelegramIDFromContext(ctx context.Context) int64 {
	id, ok := ctx.Value(TelegramIDContextKey).(int64)
	if !ok {
		return 0
	}
	return id
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT CACHE
// Simple in-memory cache for resolved accounts.
// For production with multiple instances, use Redis instead.
// ══════════════════════════════════════════════════════════════════════════════

// accountCache is a thread-safe cache for account data.
type accountCache struct {
	mu      sync.RWMutex
	entries map[int64]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	account   *account.Account
	expiresAt time.Time
}

func newAccountCache(ttl time.Duration) *accountCache {
	c := &accountCache{
		entries: make(map[int64]*cacheEntry),
		ttl:     ttl,
	}

	// Start background cleanup goroutine
	go c.cleanupLoop()

	return c
}

func (c *accountCache) get(telegramID int64) *account.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[telegramID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	return entry.account
}

func (c *accountCache) set(telegramID int64, acc *account.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[telegramID] = &cacheEntry{
		account:   acc,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *accountCache) delete(telegramID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, telegramID)
}

func (c *accountCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]*cacheEntry)
}

func (c *accountCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *accountCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}
