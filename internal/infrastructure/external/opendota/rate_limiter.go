package opendota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

// RateLimiterConfig configures the client-side token bucket. The free
// OpenDota tier allows 60 calls per minute, so the defaults stay safely
// under that even when a sync pass fans out over many accounts.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// BurstSize is the number of requests allowed to fire back to back.
	BurstSize int

	// WaitTimeout bounds how long Allow blocks waiting for a token.
	WaitTimeout time.Duration
}

// DefaultRateLimiterConfig returns limits tuned for the free API tier.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 0.8,
		BurstSize:         5,
		WaitTimeout:       20 * time.Second,
	}
}

// RateLimiter is a token bucket with adaptive backoff: every 429 from the
// upstream halves the effective rate until responses go clean again.
type RateLimiter struct {
	mu sync.Mutex

	config RateLimiterConfig

	tokens     float64
	lastRefill time.Time

	// penalty grows on upstream rate-limit hits and decays on success.
	penalty        float64
	lastLimitHit   time.Time
	totalAcquired  int64
	totalThrottled int64
}

// ErrWaitTimeout is returned when a token does not free up in time.
var ErrWaitTimeout = errors.New("opendota: rate limiter wait timeout")

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = DefaultRateLimiterConfig().RequestsPerSecond
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	return &RateLimiter{
		config:     config,
		tokens:     float64(config.BurstSize),
		lastRefill: time.Now(),
	}
}

// Allow blocks until a token is available, the context is cancelled, or the
// wait timeout elapses.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	deadline := time.Now().Add(rl.config.WaitTimeout)

	for {
		if rl.tryAcquire() {
			return nil
		}

		if time.Now().After(deadline) {
			rl.mu.Lock()
			rl.totalThrottled++
			rl.mu.Unlock()
			return ErrWaitTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1 {
		rl.tokens--
		rl.totalAcquired++
		return true
	}
	return false
}

// refill adds tokens for the time passed since the last refill.
// Caller must hold the mutex.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rate := rl.effectiveRate()
	rl.tokens += elapsed * rate
	if max := float64(rl.config.BurstSize); rl.tokens > max {
		rl.tokens = max
	}

	// Penalty decays after a minute without upstream complaints.
	if rl.penalty > 0 && now.Sub(rl.lastLimitHit) > time.Minute {
		rl.penalty = 0
	}
}

func (rl *RateLimiter) effectiveRate() float64 {
	rate := rl.config.RequestsPerSecond
	for i := 0.0; i < rl.penalty; i++ {
		rate /= 2
	}
	return rate
}

// RecordRateLimitHit reacts to an upstream 429 by halving the rate.
func (rl *RateLimiter) RecordRateLimitHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.penalty < 4 {
		rl.penalty++
	}
	rl.lastLimitHit = time.Now()
	// Drain the bucket so the next call waits a full refill interval.
	rl.tokens = 0
}

// Status returns a snapshot for diagnostics.
func (rl *RateLimiter) Status() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"tokens":          fmt.Sprintf("%.2f", rl.tokens),
		"effective_rate":  rl.effectiveRate(),
		"penalty_level":   rl.penalty,
		"total_acquired":  rl.totalAcquired,
		"total_throttled": rl.totalThrottled,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CIRCUIT BREAKER
// ══════════════════════════════════════════════════════════════════════════════

// CircuitState is the state of the circuit breaker.
type CircuitState int

const (
	// CircuitClosed: requests flow normally.
	CircuitClosed CircuitState = iota
	// CircuitOpen: requests are rejected without touching the upstream.
	CircuitOpen
	// CircuitHalfOpen: a limited number of probe requests are let through.
	CircuitHalfOpen
)

// String returns a human readable state name.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("opendota: circuit breaker is open")

// CircuitBreakerConfig configures failure thresholds and recovery timing.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before probing.
	RecoveryTimeout time.Duration

	// HalfOpenMaxProbes is how many probe requests half-open allows.
	HalfOpenMaxProbes int
}

// DefaultCircuitBreakerConfig returns conservative defaults: a short recovery
// window keeps a flaky upstream from silencing notifications for long.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:  5,
		RecoveryTimeout:   45 * time.Second,
		HalfOpenMaxProbes: 2,
	}
}

// CircuitBreaker protects the upstream from request storms during outages.
type CircuitBreaker struct {
	mu sync.Mutex

	config CircuitBreakerConfig

	state           CircuitState
	failures        int
	probesInFlight  int
	lastStateChange time.Time
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultCircuitBreakerConfig().FailureThreshold
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = DefaultCircuitBreakerConfig().RecoveryTimeout
	}
	if config.HalfOpenMaxProbes <= 0 {
		config.HalfOpenMaxProbes = 1
	}
	return &CircuitBreaker{
		config:          config,
		state:           CircuitClosed,
		lastStateChange: time.Now(),
	}
}

// Allow reports whether a request may proceed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil

	case CircuitOpen:
		if time.Since(cb.lastStateChange) >= cb.config.RecoveryTimeout {
			cb.transition(CircuitHalfOpen)
			cb.probesInFlight = 1
			return nil
		}
		return ErrCircuitOpen

	case CircuitHalfOpen:
		if cb.probesInFlight < cb.config.HalfOpenMaxProbes {
			cb.probesInFlight++
			return nil
		}
		return ErrCircuitOpen
	}
	return nil
}

// RecordSuccess resets failure tracking and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state != CircuitClosed {
		cb.transition(CircuitClosed)
	}
	cb.probesInFlight = 0
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed probe reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++

	if cb.state == CircuitHalfOpen {
		cb.transition(CircuitOpen)
		cb.probesInFlight = 0
		return
	}
	if cb.state == CircuitClosed && cb.failures >= cb.config.FailureThreshold {
		cb.transition(CircuitOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Status returns a snapshot for diagnostics.
func (cb *CircuitBreaker) Status() map[string]any {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]any{
		"state":        cb.state.String(),
		"failures":     cb.failures,
		"since_change": time.Since(cb.lastStateChange).Round(time.Second).String(),
	}
}

// transition changes state. Caller must hold the mutex.
func (cb *CircuitBreaker) transition(next CircuitState) {
	cb.state = next
	cb.lastStateChange = time.Now()
}
