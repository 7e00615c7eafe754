package opendota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig configures the OpenDota client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.opendota.com/api".
	BaseURL string

	// APIKey is the optional paid-tier key, sent as a query parameter.
	APIKey string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// CacheTTL is how long cached responses stay fresh. Match details are
	// never cached: they are fetched once per new match.
	CacheTTL time.Duration

	// RateLimiter configures the client-side token bucket.
	RateLimiter RateLimiterConfig

	// CircuitBreaker configures outage protection.
	CircuitBreaker CircuitBreakerConfig

	// Logger for request diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Debug enables per-request logging.
	Debug bool
}

// DefaultClientConfig returns settings for the public free tier.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "https://api.opendota.com/api",
		Timeout:        25 * time.Second,
		CacheTTL:       90 * time.Second,
		RateLimiter:    DefaultRateLimiterConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// errNotFound marks a 404 inside the transport layer. Accessors translate
// it into a domain error where the distinction matters.
var errNotFound = errors.New("opendota: not found")

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the OpenDota API client.
//
// The error contract is deliberately soft: aggregate accessors return
// (nil, nil) when the upstream is down or answers garbage, because a missed
// poll cycle heals itself on the next tick and the menus degrade to a
// "no data" reply. Only Player distinguishes a 404, which bind verification
// needs to tell "no such profile" from "service unavailable".
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *RateLimiter
	breaker    *CircuitBreaker
	cache      ResponseCache
	logger     *slog.Logger
}

// NewClient creates an OpenDota client. A nil cache disables caching.
func NewClient(config ClientConfig, cache ResponseCache) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultClientConfig().BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClientConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    NewRateLimiter(config.RateLimiter),
		breaker:    NewCircuitBreaker(config.CircuitBreaker),
		cache:      cache,
		logger:     config.Logger.With("component", "opendota_client"),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// Player fetches /players/{account_id}.
//
// Returns shared.ErrProfileNotFound when the statistics service does not
// know the account (404 or an empty profile object). Returns (nil, nil)
// when the service is unavailable.
func (c *Client) Player(ctx context.Context, accountID int64) (*PlayerDTO, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d", accountID), nil, true)
	if errors.Is(err, errNotFound) {
		return nil, shared.ErrProfileNotFound
	}
	if err != nil {
		return nil, c.degrade("players", err)
	}

	var dto PlayerDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, c.degrade("players", err)
	}
	if !dto.HasProfile() {
		return nil, shared.ErrProfileNotFound
	}
	return &dto, nil
}

// Matches fetches /players/{id}/matches with the given limit.
func (c *Client) Matches(ctx context.Context, accountID int64, limit int) ([]PlayerMatchDTO, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d/matches", accountID), params, true)
	if err != nil {
		return nil, c.degrade("matches", err)
	}

	var dtos []PlayerMatchDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, c.degrade("matches", err)
	}
	return dtos, nil
}

// RankedMatches fetches the ranked slice of the player's match history.
func (c *Client) RankedMatches(ctx context.Context, accountID int64, limit int) ([]PlayerMatchDTO, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("lobby_type", "7")

	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d/matches", accountID), params, true)
	if err != nil {
		return nil, c.degrade("ranked_matches", err)
	}

	var dtos []PlayerMatchDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, c.degrade("ranked_matches", err)
	}
	return dtos, nil
}

// RecentMatches fetches /players/{id}/recentMatches (the last 20 games).
func (c *Client) RecentMatches(ctx context.Context, accountID int64) ([]PlayerMatchDTO, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d/recentMatches", accountID), nil, true)
	if err != nil {
		return nil, c.degrade("recent_matches", err)
	}

	var dtos []PlayerMatchDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, c.degrade("recent_matches", err)
	}
	return dtos, nil
}

// PlayerHeroes fetches /players/{id}/heroes: per-hero lifetime aggregates.
func (c *Client) PlayerHeroes(ctx context.Context, accountID int64) ([]PlayerHeroDTO, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d/heroes", accountID), nil, true)
	if err != nil {
		return nil, c.degrade("player_heroes", err)
	}

	var dtos []PlayerHeroDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, c.degrade("player_heroes", err)
	}
	return dtos, nil
}

// WinLoss fetches /players/{id}/wl.
func (c *Client) WinLoss(ctx context.Context, accountID int64) (*WinLossDTO, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/players/%d/wl", accountID), nil, true)
	if err != nil {
		return nil, c.degrade("win_loss", err)
	}

	var dto WinLossDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, c.degrade("win_loss", err)
	}
	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// MatchDetail fetches /matches/{match_id}. The response bypasses the cache:
// a detail is requested once per newly detected match and never again.
func (c *Client) MatchDetail(ctx context.Context, matchID int64) (*MatchDetailDTO, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/matches/%d", matchID), nil, false)
	if err != nil {
		return nil, c.degrade("match_detail", err)
	}

	var dto MatchDetailDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, c.degrade("match_detail", err)
	}
	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARY ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// Heroes fetches /heroes: the hero id to name dictionary.
func (c *Client) Heroes(ctx context.Context) ([]HeroDTO, error) {
	body, err := c.fetch(ctx, "/heroes", nil, true)
	if err != nil {
		return nil, c.degrade("heroes", err)
	}

	var dtos []HeroDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, c.degrade("heroes", err)
	}
	return dtos, nil
}

// GameModes fetches /constants/game_mode.
func (c *Client) GameModes(ctx context.Context) (GameModeTable, error) {
	body, err := c.fetch(ctx, "/constants/game_mode", nil, true)
	if err != nil {
		return nil, c.degrade("game_modes", err)
	}

	table, err := UnmarshalGameModes(body)
	if err != nil {
		return nil, c.degrade("game_modes", err)
	}
	return table, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DIAGNOSTICS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy reports whether the circuit is not open.
func (c *Client) IsHealthy() bool {
	return c.breaker.State() != CircuitOpen
}

// Status returns a diagnostics snapshot of the transport internals.
func (c *Client) Status() map[string]any {
	return map[string]any{
		"base_url":        c.config.BaseURL,
		"rate_limiter":    c.limiter.Status(),
		"circuit_breaker": c.breaker.Status(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT
// ══════════════════════════════════════════════════════════════════════════════

// cacheKey builds the request signature: path plus the encoded query.
// url.Values.Encode sorts keys, so equivalent requests share a key.
func cacheKey(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// fetch performs one GET against the API. No retry: a failed call is
// reported to the circuit breaker and the caller's next cycle tries again.
func (c *Client) fetch(ctx context.Context, path string, params url.Values, useCache bool) ([]byte, error) {
	key := cacheKey(path, params)

	if useCache && c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			if c.config.Debug {
				c.logger.Debug("cache hit", "key", key)
			}
			if cached.NotFound {
				return nil, errNotFound
			}
			return cached.Body, nil
		}
	}

	if err := c.breaker.Allow(); err != nil {
		return nil, err
	}
	if err := c.limiter.Allow(ctx); err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}

	body, err := c.doRequest(ctx, path, params)
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		if useCache && c.cache != nil {
			c.cache.Set(ctx, key, CachedResponse{Body: body}, c.config.CacheTTL)
		}
		return body, nil

	case errors.Is(err, errNotFound):
		// A 404 is a valid answer, not an outage.
		c.breaker.RecordSuccess()
		if useCache && c.cache != nil {
			c.cache.Set(ctx, key, CachedResponse{NotFound: true}, c.config.CacheTTL)
		}
		return nil, errNotFound

	default:
		c.breaker.RecordFailure()
		return nil, err
	}
}

// doRequest executes a single HTTP GET.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	if c.config.APIKey != "" {
		query.Set("api_key", c.config.APIKey)
	}

	fullURL := c.config.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dota-pulse-bot/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if c.config.Debug {
		c.logger.Debug("api request",
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		c.limiter.RecordRateLimitHit()
		return nil, fmt.Errorf("opendota: rate limited (429)")

	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("opendota: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// degrade logs a transport failure and swallows it. Callers get (nil, nil)
// and treat the data as temporarily missing.
func (c *Client) degrade(endpoint string, err error) error {
	c.logger.Warn("opendota request degraded",
		"endpoint", endpoint,
		"error", err,
	)
	return nil
}
