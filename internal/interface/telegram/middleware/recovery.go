// Package middleware contains Telegram bot middlewares for request processing.
package middleware

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers and converts them to user-friendly error messages.
// Users never see stack traces; everything goes to the structured log. The bot
// must stay responsive even when a single screen crashes.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces (can be memory intensive).
	EnableStackTrace bool

	// OnPanic is called when a panic is recovered.
	// This is where you would send alerts to monitoring systems.
	OnPanic func(ctx context.Context, panicInfo *PanicInfo)

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// Logger receives recovered panics.
	Logger *slog.Logger

	// MaxPanicsPerMinute limits how many panics to process per minute
	// to prevent cascading failures.
	MaxPanicsPerMinute int
}

// DefaultRecoveryConfig returns sensible defaults for recovery middleware.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace:   true,
		OnPanic:            nil,
		UserErrorMessage:   "😔 Произошла ошибка. Попробуй позже.",
		Logger:             slog.Default(),
		MaxPanicsPerMinute: 100,
	}
}

// PanicInfo contains information about a recovered panic.
type PanicInfo struct {
	// Error is the panic value converted to error.
	Error error

	// PanicValue is the raw panic value.
	PanicValue interface{}

	// StackTrace is the formatted stack trace.
	StackTrace string

	// RequestID is the request ID from context (if available).
	RequestID string

	// TelegramID is the Telegram user ID (if available).
	TelegramID int64

	// Command is the command that was being processed (if available).
	Command string

	// Timestamp is when the panic occurred.
	Timestamp time.Time

	// Goroutine is the ID of the goroutine that panicked.
	Goroutine int
}

// String returns a formatted string representation of the panic info.
func (p *PanicInfo) String() string {
	var buf bytes.Buffer
	buf.WriteString("=== PANIC RECOVERED ===\n")
	buf.WriteString(fmt.Sprintf("Time:       %s\n", p.Timestamp.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Goroutine:  %d\n", p.Goroutine))
	if p.RequestID != "" {
		buf.WriteString(fmt.Sprintf("RequestID:  %s\n", p.RequestID))
	}
	if p.TelegramID != 0 {
		buf.WriteString(fmt.Sprintf("TelegramID: %d\n", p.TelegramID))
	}
	if p.Command != "" {
		buf.WriteString(fmt.Sprintf("Command:    %s\n", p.Command))
	}
	buf.WriteString(fmt.Sprintf("Error:      %v\n", p.PanicValue))
	if p.StackTrace != "" {
		buf.WriteString("\nStack Trace:\n")
		buf.WriteString(p.StackTrace)
	}
	buf.WriteString("========================\n")
	return buf.String()
}

// RecoveryMiddleware recovers from panics and provides error handling.
type RecoveryMiddleware struct {
	config       RecoveryConfig
	logger       *slog.Logger
	panicCounter *panicRateLimiter
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RecoveryMiddleware{
		config:       config,
		logger:       logger,
		panicCounter: newPanicRateLimiter(config.MaxPanicsPerMinute),
	}
}

// RecoveryResult represents the result of handling a panic.
type RecoveryResult struct {
	// Recovered indicates if a panic was recovered.
	Recovered bool

	// PanicInfo contains panic details (if recovered).
	PanicInfo *PanicInfo

	// UserMessage is the message to show to the user.
	UserMessage string

	// ShouldNotify indicates if external systems should be notified.
	ShouldNotify bool
}

// RecoverWithHandler executes a handler and recovers from any panics.
// This is the main entry point for the middleware.
func (m *RecoveryMiddleware) RecoverWithHandler(
	ctx context.Context,
	telegramID int64,
	command string,
	handler func() error,
) *RecoveryResult {
	ctx = context.WithValue(ctx, TelegramIDContextKey, telegramID)

	var result *RecoveryResult
	var handlerErr error

	func() {
		defer func() {
			if r := recover(); r != nil {
				result = m.handlePanic(ctx, r, telegramID, command)
			}
		}()
		handlerErr = handler()
	}()

	if result != nil {
		return result
	}

	// No panic - handler errors are the caller's to deal with
	_ = handlerErr
	return &RecoveryResult{
		Recovered: false,
	}
}

// handlePanic processes a recovered panic.
func (m *RecoveryMiddleware) handlePanic(
	ctx context.Context,
	panicValue interface{},
	telegramID int64,
	command string,
) *RecoveryResult {
	// Rate limit panic processing
	if !m.panicCounter.allow() {
		return &RecoveryResult{
			Recovered:    true,
			UserMessage:  m.config.UserErrorMessage,
			ShouldNotify: false, // Too many panics, skip notification
		}
	}

	panicInfo := &PanicInfo{
		Error:      toError(panicValue),
		PanicValue: panicValue,
		Timestamp:  time.Now(),
		Goroutine:  getGoroutineID(),
		TelegramID: telegramID,
		Command:    command,
	}

	if requestID, ok := ctx.Value(RequestIDContextKey).(string); ok {
		panicInfo.RequestID = requestID
	}

	if m.config.EnableStackTrace {
		panicInfo.StackTrace = string(debug.Stack())
	}

	m.logger.Error("panic recovered",
		"error", panicInfo.Error,
		"telegram_id", telegramID,
		"command", command,
		"goroutine", panicInfo.Goroutine,
		"stack", panicInfo.StackTrace,
	)

	if m.config.OnPanic != nil {
		m.config.OnPanic(ctx, panicInfo)
	}

	return &RecoveryResult{
		Recovered:    true,
		PanicInfo:    panicInfo,
		UserMessage:  m.config.UserErrorMessage,
		ShouldNotify: true,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// toError converts a panic value to an error.
func toError(panicValue interface{}) error {
	switch v := panicValue.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("panic: %v", v)
	}
}

// getGoroutineID returns the current goroutine ID (for debugging only).
// Note: This is not officially supported by Go and should only be used for debugging.
func getGoroutineID() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id int
	fmt.Sscanf(string(buf[:n]), "goroutine %d ", &id)
	return id
}

// ══════════════════════════════════════════════════════════════════════════════
// PANIC RATE LIMITER
// Prevents cascading failures by limiting how many panics we process.
// ══════════════════════════════════════════════════════════════════════════════

type panicRateLimiter struct {
	mu        sync.Mutex
	count     int
	maxPerMin int
	window    time.Time
}

func newPanicRateLimiter(maxPerMin int) *panicRateLimiter {
	return &panicRateLimiter{
		maxPerMin: maxPerMin,
		window:    time.Now(),
	}
}

func (p *panicRateLimiter) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	// Reset counter if minute has passed
	if now.Sub(p.window) > time.Minute {
		p.count = 0
		p.window = now
	}

	// Check limit
	if p.count >= p.maxPerMin {
		return false
	}

	p.count++
	return true
}
