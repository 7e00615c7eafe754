// Package telegram implements the Telegram bot interface of the tracker.
// This package is the entry point for all Telegram interactions, handling
// updates, routing them to appropriate handlers, and managing the bot lifecycle.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/application/command"
	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/telegram"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/handler"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/middleware"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// PollingTimeout is the timeout for long polling (in seconds).
	PollingTimeout int

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		PollingTimeout:          30,
		Debug:                   false,
		Logger:                  slog.Default(),
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT DEPENDENCIES
// Aggregates all dependencies needed by handlers.
// ══════════════════════════════════════════════════════════════════════════════

// BotDependencies contains all dependencies for the bot handlers.
type BotDependencies struct {
	// Repositories
	AccountRepo account.Repository

	// Commands
	LinkAccountCmd *command.LinkAccountHandler
	SetRatingCmd   *command.SetRatingHandler
	UnlinkCmd      *command.UnlinkAccountHandler
	SyncCmd        *command.SyncAccountHandler
	UpdatePrefsCmd *command.UpdatePreferencesHandler
	PresetPrefsCmd *command.PresetPreferencesHandler

	// Queries
	StatusQuery        *query.GetStatusHandler
	RecentMatchesQuery *query.GetRecentMatchesHandler
	HeroStatsQuery     *query.GetHeroStatsHandler
	HeroAnalyticsQuery *query.GetHeroAnalyticsHandler
	RoleStatsQuery     *query.GetRoleStatsHandler
	ActivityQuery      *query.GetActivityHandler
	RatingTrendQuery   *query.GetRatingTrendHandler

	// Dictionaries is the cached hero dictionary source.
	Dictionaries handler.DictionarySource
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Main bot structure that orchestrates Telegram interactions.
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	// Middleware chain
	accountMiddleware  *middleware.AccountMiddleware
	rateLimiter        *middleware.RateLimiter
	recoveryMiddleware *middleware.RecoveryMiddleware
	metricsMiddleware  *middleware.MetricsMiddleware

	// Lifecycle management
	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{} // Semaphore for concurrent update limiting
	wg        sync.WaitGroup

	// Statistics
	stats *BotStats
}

// BotStats holds runtime statistics.
type BotStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	ErrorsCount     int64
	CommandsCount   map[string]int64
}

// NewBot creates a new Telegram bot with all dependencies.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	// Create Telegram client
	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	client := telegram.NewClient(clientConfig)

	// Create presenters and shared helpers
	keyboards := presenter.NewKeyboardBuilder()
	dictionaries := handler.NewDictionaries(deps.Dictionaries, config.Logger)

	// Create handlers
	startHandler := handler.NewStartHandler(deps.AccountRepo, keyboards)
	bindHandler := handler.NewBindHandler(deps.LinkAccountCmd, deps.SetRatingCmd, keyboards)
	statusHandler := handler.NewStatusHandler(deps.StatusQuery, dictionaries, keyboards)
	matchesHandler := handler.NewMatchesHandler(deps.RecentMatchesQuery, dictionaries, keyboards)
	heroesHandler := handler.NewHeroesHandler(deps.HeroStatsQuery, deps.HeroAnalyticsQuery, dictionaries, keyboards)
	chartsHandler := handler.NewChartsHandler(deps.ActivityQuery, deps.RatingTrendQuery, keyboards)
	rolesHandler := handler.NewRoleStatsHandler(deps.RoleStatsQuery, keyboards)
	settingsHandler := handler.NewSettingsHandler(
		deps.AccountRepo,
		deps.UpdatePrefsCmd,
		deps.PresetPrefsCmd,
		deps.UnlinkCmd,
		deps.SyncCmd,
		keyboards,
	)

	// Create middleware
	accountMiddleware := middleware.NewAccountMiddleware(
		deps.AccountRepo,
		middleware.DefaultAccountConfig(),
	)

	rateLimiter := middleware.NewRateLimiter(
		middleware.DefaultRateLimitConfig(),
	)

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = config.Logger
	recoveryMiddleware := middleware.NewRecoveryMiddleware(recoveryConfig)

	metricsMiddleware := middleware.NewMetricsMiddleware(
		middleware.DefaultMetricsConfig(),
	)

	// Create router with all handlers
	routerConfig := RouterConfig{
		Logger: config.Logger,
		Debug:  config.Debug,
	}

	router := NewRouter(routerConfig)

	// Register command handlers
	router.RegisterCommand("start", startHandler.Handle)
	router.RegisterCommand("help", startHandler.HandleHelp)
	router.RegisterCommand("status", statusHandler.Handle)

	// Plain text carries Steam IDs and "mmr NNNN" messages
	router.RegisterTextInputHandler(bindHandler.HandleText)

	// Register callback handlers for menu buttons
	router.RegisterCallbackPrefix(presenter.CallbackStatus, statusHandler.Handle)
	router.RegisterCallbackPrefix(presenter.CallbackLastGames, matchesHandler.HandleAll)
	router.RegisterCallbackPrefix(presenter.CallbackLastRanked, matchesHandler.HandleRanked)
	router.RegisterCallbackPrefix(presenter.CallbackHeroesMenu, heroesHandler.HandleMenu)
	router.RegisterCallbackPrefix(presenter.CallbackHeroesGames, heroesHandler.HandleByGames)
	router.RegisterCallbackPrefix(presenter.CallbackHeroesWinRate, heroesHandler.HandleByWinRate)
	router.RegisterCallbackPrefix(presenter.CallbackHeroesKDA, heroesHandler.HandleByKDA)
	router.RegisterCallbackPrefix(presenter.CallbackHeroAnalytics, heroesHandler.HandleAnalytics)
	router.RegisterCallbackPrefix(presenter.CallbackActivity, chartsHandler.HandleActivity)
	router.RegisterCallbackPrefix(presenter.CallbackRatingTrend, chartsHandler.HandleTrend)
	router.RegisterCallbackPrefix(presenter.CallbackRoleWinRate, rolesHandler.Handle)
	router.RegisterCallbackPrefix(presenter.CallbackBind, bindHandler.HandleBindPrompt)
	router.RegisterCallbackPrefix(presenter.CallbackSetRating, bindHandler.HandleSetRatingPrompt)
	router.RegisterCallbackPrefix(presenter.CallbackBackMain, startHandler.HandleBackToMain)
	router.RegisterCallbackPrefix(presenter.CallbackSettings, settingsHandler.Handle)
	router.RegisterCallbackPrefix(presenter.CallbackSettingsToggle, settingsHandler.HandleToggle)
	router.RegisterCallbackPrefix(presenter.CallbackEnableAll, settingsHandler.HandleEnableAll)
	router.RegisterCallbackPrefix(presenter.CallbackDisableAll, settingsHandler.HandleDisableAll)
	router.RegisterCallbackPrefix(presenter.CallbackSyncNow, settingsHandler.HandleSync)
	router.RegisterCallbackPrefix(presenter.CallbackUnlink, settingsHandler.HandleUnlink)

	// Create bot
	bot := &Bot{
		config:             config,
		client:             client,
		router:             router,
		logger:             config.Logger,
		accountMiddleware:  accountMiddleware,
		rateLimiter:        rateLimiter,
		recoveryMiddleware: recoveryMiddleware,
		metricsMiddleware:  metricsMiddleware,
		updateSem:          make(chan struct{}, config.MaxConcurrentUpdates),
		stats: &BotStats{
			CommandsCount: make(map[string]int64),
		},
	}

	return bot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the bot and begins receiving updates via long polling.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.stats.StartedAt = time.Now()
	b.runningMu.Unlock()

	b.logger.Info("starting telegram bot",
		"debug", b.config.Debug,
	)

	// Verify bot token with getMe
	if err := b.verifyToken(ctx); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	// A leftover webhook blocks getUpdates
	if err := b.client.DeleteWebhook(ctx, false); err != nil {
		b.logger.Warn("failed to delete webhook", "error", err)
	}

	b.logger.Info("starting long polling")

	return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
		return b.handleUpdate(ctx, update)
	})
}

// Stop gracefully stops the bot.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")

	// Wait for all handlers to complete with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		b.logger.Warn("context cancelled during shutdown")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the bot is currently running.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// verifyToken verifies the bot token by calling getMe.
func (b *Bot) verifyToken(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("bot verified",
		"id", me.ID,
		"username", me.Username,
		"first_name", me.FirstName,
	)

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	// Acquire semaphore slot
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	// Update statistics
	b.stats.mu.Lock()
	b.stats.UpdatesReceived++
	b.stats.mu.Unlock()

	startTime := time.Now()

	// Add context values
	ctx = middleware.ContextWithTelegramID(ctx, b.extractTelegramID(update))
	ctx = context.WithValue(ctx, middleware.StartTimeContextKey, startTime)

	// Determine update type and handle
	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		// Unknown update type - ignore
		return nil
	}

	duration := time.Since(startTime)

	if err != nil {
		b.stats.mu.Lock()
		b.stats.ErrorsCount++
		b.stats.mu.Unlock()
		b.logger.Error("failed to handle update",
			"update_id", update.UpdateID,
			"error", err,
			"duration", duration,
		)
	} else {
		b.stats.mu.Lock()
		b.stats.UpdatesHandled++
		b.stats.mu.Unlock()
	}

	return err
}

// handleMessage processes a Telegram message.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil {
		return nil
	}

	telegramID := msg.From.ID
	chatID := msg.Chat.ID

	// Extract command
	command := telegram.ExtractCommand(msg)
	args := telegram.ExtractCommandArgs(msg)

	if command != "" {
		return b.handleCommand(ctx, telegramID, chatID, int(msg.MessageID), command, args, msg)
	}

	// Plain text: Steam ID or exact MMR input. Unrecognized text is
	// ignored inside the handler, so group chatter is safe to forward.
	if msg.Text != "" {
		return b.handleTextMessage(ctx, telegramID, chatID, msg)
	}

	return nil
}

// handleCommand processes a bot command.
func (b *Bot) handleCommand(
	ctx context.Context,
	telegramID, chatID int64,
	messageID int,
	command, args string,
	msg *telegram.Message,
) error {
	// Record command statistics
	b.stats.mu.Lock()
	b.stats.CommandsCount[command]++
	b.stats.mu.Unlock()

	reqMetrics := b.metricsMiddleware.Start(command, telegramID)

	// Rate limiting
	rateLimitResult := b.rateLimiter.Check(ctx, telegramID)
	if !rateLimitResult.Allowed {
		reqMetrics.EndSuccess()
		_, err := b.client.SendHTML(ctx, chatID, rateLimitResult.ResponseMessage)
		return err
	}

	// Resolve the Steam binding for downstream handlers
	accountResult, err := b.accountMiddleware.Resolve(ctx, telegramID)
	if err != nil {
		b.logger.Error("account resolve error", "error", err)
		reqMetrics.EndWithError(err)
		return b.sendErrorMessage(ctx, chatID)
	}
	if accountResult.Account != nil {
		ctx = middleware.ContextWithAccount(ctx, accountResult.Account)
	}

	// Recovery wrapper
	var handlerErr error
	recoveryResult := b.recoveryMiddleware.RecoverWithHandler(ctx, telegramID, command, func() error {
		handlerErr = b.router.HandleCommand(ctx, command, CommandContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			MessageID:  messageID,
			Args:       args,
			Message:    msg,
			Client:     b.client,
		})
		return handlerErr
	})

	if recoveryResult.Recovered {
		reqMetrics.EndWithError(errors.New("panic recovered"))
		_, err := b.client.SendHTML(ctx, chatID, recoveryResult.UserMessage)
		return err
	}

	if handlerErr != nil {
		reqMetrics.EndWithError(handlerErr)
		b.logger.Error("command handler error",
			"command", command,
			"telegram_id", telegramID,
			"error", handlerErr,
		)
		return b.sendErrorMessage(ctx, chatID)
	}

	reqMetrics.EndSuccess()
	return nil
}

// handleTextMessage processes a non-command text message.
func (b *Bot) handleTextMessage(ctx context.Context, telegramID, chatID int64, msg *telegram.Message) error {
	var handlerErr error
	recoveryResult := b.recoveryMiddleware.RecoverWithHandler(ctx, telegramID, "text", func() error {
		handlerErr = b.router.HandleTextInput(ctx, TextInputContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			MessageID:  int(msg.MessageID),
			Text:       msg.Text,
			Message:    msg,
			Client:     b.client,
		})
		return handlerErr
	})

	if recoveryResult.Recovered {
		_, err := b.client.SendHTML(ctx, chatID, recoveryResult.UserMessage)
		return err
	}

	if handlerErr != nil {
		b.logger.Error("text input handler error",
			"telegram_id", telegramID,
			"error", handlerErr,
		)
		return b.sendErrorMessage(ctx, chatID)
	}

	// Binding or rating may have changed
	b.accountMiddleware.InvalidateCache(telegramID)
	return nil
}

// handleCallbackQuery processes a callback query from inline keyboard.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq == nil || cq.From == nil {
		return nil
	}

	telegramID := cq.From.ID
	chatID := int64(0)
	messageID := int64(0)

	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	// Answer callback query first (removes loading state)
	defer func() {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "", false)
	}()

	// Rate limiting for callbacks
	rateLimitResult := b.rateLimiter.Check(ctx, telegramID)
	if !rateLimitResult.Allowed {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "⏳ Слишком быстро! Подожди немного.", true)
		return nil
	}

	reqMetrics := b.metricsMiddleware.Start("callback:"+callbackGroup(cq.Data), telegramID)

	// Resolve the Steam binding for downstream handlers
	accountResult, err := b.accountMiddleware.Resolve(ctx, telegramID)
	if err != nil {
		b.logger.Error("account resolve error", "error", err)
		reqMetrics.EndWithError(err)
		return nil
	}
	if accountResult.Account != nil {
		ctx = middleware.ContextWithAccount(ctx, accountResult.Account)
	}

	// Recovery wrapper
	var handlerErr error
	recoveryResult := b.recoveryMiddleware.RecoverWithHandler(ctx, telegramID, "callback:"+cq.Data, func() error {
		handlerErr = b.router.HandleCallback(ctx, cq.Data, CallbackContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			MessageID:  int(messageID),
			QueryID:    cq.ID,
			Data:       cq.Data,
			Query:      cq,
			Client:     b.client,
		})
		return handlerErr
	})

	if recoveryResult.Recovered {
		reqMetrics.EndWithError(errors.New("panic recovered"))
		b.logger.Error("panic recovered in callback handler",
			"data", cq.Data,
			"telegram_id", telegramID,
		)
		if chatID > 0 {
			_, _ = b.client.SendHTML(ctx, chatID, recoveryResult.UserMessage)
		}
		return nil
	}

	if handlerErr != nil {
		reqMetrics.EndWithError(handlerErr)
		b.logger.Error("callback handler error",
			"data", cq.Data,
			"telegram_id", telegramID,
			"error", handlerErr,
		)
		if chatID > 0 {
			_ = b.sendErrorMessage(ctx, chatID)
		}
		return nil
	}

	// Settings callbacks mutate the account
	if strings.HasPrefix(cq.Data, presenter.CallbackSettings) {
		b.accountMiddleware.InvalidateCache(telegramID)
	}

	reqMetrics.EndSuccess()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// extractTelegramID extracts the Telegram user ID from an update.
func (b *Bot) extractTelegramID(update *telegram.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// callbackGroup reduces callback data to its prefix for metrics, so
// parametrized callbacks share one counter.
func callbackGroup(data string) string {
	if idx := strings.IndexByte(data, ':'); idx > 0 {
		return data[:idx]
	}
	return data
}

// sendErrorMessage sends a generic error message.
func (b *Bot) sendErrorMessage(ctx context.Context, chatID int64) error {
	text := "😔 Произошла ошибка. Попробуй позже."
	_, err := b.client.SendHTML(ctx, chatID, text)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// GetStats returns current bot statistics.
func (b *Bot) GetStats() map[string]interface{} {
	b.stats.mu.RLock()
	defer b.stats.mu.RUnlock()

	uptime := time.Since(b.stats.StartedAt)

	commandsCopy := make(map[string]int64)
	for k, v := range b.stats.CommandsCount {
		commandsCopy[k] = v
	}

	return map[string]interface{}{
		"started_at":       b.stats.StartedAt,
		"uptime":           uptime.String(),
		"updates_received": b.stats.UpdatesReceived,
		"updates_handled":  b.stats.UpdatesHandled,
		"errors_count":     b.stats.ErrorsCount,
		"commands_count":   commandsCopy,
		"running":          b.IsRunning(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT ACCESS
// ══════════════════════════════════════════════════════════════════════════════

// Client returns the Telegram client for direct API access.
// Use sparingly - prefer going through handlers.
func (b *Bot) Client() *telegram.Client {
	return b.client
}

// Router returns the router for handler registration.
func (b *Bot) Router() *Router {
	return b.router
}

// Metrics returns the metrics middleware for the ops endpoint.
func (b *Bot) Metrics() *middleware.MetricsMiddleware {
	return b.metricsMiddleware
}

// InvalidateAccountCache invalidates the middleware cache for a specific user.
func (b *Bot) InvalidateAccountCache(telegramID int64) {
	b.accountMiddleware.InvalidateCache(telegramID)
}
