// Package main - точка входа Telegram-бота Dota Pulse.
//
// Бот следит за матчами привязанных аккаунтов через OpenDota, ведёт
// условный MMR (±30 за рейтинговый матч) и присылает карточки матчей,
// предупреждения о сериях и вечерние итоги дня.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: команды и запросы (CQRS)
// - Infrastructure: PostgreSQL, Redis, OpenDota, Telegram API
// - Interface: обработчики меню бота, ops HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dotapulse/dota-pulse-bot/config"
	"github.com/dotapulse/dota-pulse-bot/internal/application/command"
	"github.com/dotapulse/dota-pulse-bot/internal/application/eventhandler"
	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/messaging"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/persistence/postgres"
	rediscache "github.com/dotapulse/dota-pulse-bot/internal/infrastructure/persistence/redis"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/scheduler"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/scheduler/jobs"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/service"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/supervisor"
	opshttp "github.com/dotapulse/dota-pulse-bot/internal/interface/http"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/handler"
	"github.com/dotapulse/dota-pulse-bot/pkg/retry"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; in production the environment
	// comes from the orchestrator.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Observability)
	slog.SetDefault(logger)

	logger.Info("starting dota-pulse-bot",
		"version", cfg.App.Version,
		"environment", string(cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────
	// Storage
	// ─────────────────────────────────────────────────────────────────────

	bootstrap := retry.BootstrapRetrier()

	var conn *postgres.Connection
	err = bootstrap.Do(ctx, func(ctx context.Context) error {
		var connErr error
		conn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return retry.Retryable(connErr)
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	accountRepo := postgres.NewAccountRepository(conn)
	matchRepo := postgres.NewMatchRepository(conn)
	notificationLog := postgres.NewNotificationLogRepository(conn)

	// ─────────────────────────────────────────────────────────────────────
	// Redis (optional: without it caches degrade to no-ops)
	// ─────────────────────────────────────────────────────────────────────

	var (
		cache           *rediscache.Cache
		accountCache    account.Cache          = rediscache.NoopAccountCache{}
		responseCache   opendota.ResponseCache = opendota.NewMemoryCache()
		dictionaryCache *rediscache.DictionaryCache
		redisPinger     opshttp.Pinger
	)

	if !cfg.Redis.Disabled {
		cache, err = rediscache.NewCache(redisConfig(cfg.Redis))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()

		if err := bootstrap.Do(ctx, func(ctx context.Context) error {
			return retry.Retryable(cache.Ping(ctx))
		}); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}

		accountCache = rediscache.NewAccountCache(cache)
		responseCache = rediscache.NewResponseCache(cache)
		dictionaryCache = rediscache.NewDictionaryCache(cache)
		redisPinger = cache
	}

	// ─────────────────────────────────────────────────────────────────────
	// OpenDota
	// ─────────────────────────────────────────────────────────────────────

	odClient := opendota.NewClient(opendotaConfig(cfg.OpenDota, logger), responseCache)
	odMapper := opendota.NewMapper()

	// ─────────────────────────────────────────────────────────────────────
	// Events
	// ─────────────────────────────────────────────────────────────────────

	eventBus, dispatcher, err := buildEventPipeline(cfg, cache, logger)
	if err != nil {
		return fmt.Errorf("build event pipeline: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────
	// Notifications
	// ─────────────────────────────────────────────────────────────────────

	notificationSvc := service.NewNotificationService(accountRepo, cfg.Features, notificationLog, logger)

	auditHandler := eventhandler.NewEventAuditHandler(logger)
	rankHandler := eventhandler.NewOnRankTierChangedHandler(notificationSvc, logger)

	if err := registerEventHandlers(dispatcher, auditHandler, rankHandler); err != nil {
		return fmt.Errorf("register event handlers: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────
	// Background jobs
	// ─────────────────────────────────────────────────────────────────────

	var dictLookup jobs.DictionaryLookup = rediscache.NoopDictionary{}
	if dictionaryCache != nil {
		dictLookup = dictionaryCache
	}

	syncJob := jobs.NewMatchSyncJob(
		accountRepo, accountCache, matchRepo,
		odClient, odMapper, dictLookup,
		notificationSvc, eventBus, logger,
		matchSyncConfig(cfg.Tracker),
	)

	reportJob := jobs.NewDailyReportJob(
		accountRepo, matchRepo, notificationSvc, eventBus, logger,
		jobs.DefaultDailyReportConfig(),
	)

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   logger,
		Timezone: timeutil.MoscowTZ,
	})

	if cfg.Scheduler.Enabled {
		if err := registerJobs(sched, cfg, syncJob, reportJob, odClient, odMapper, dictionaryCache, logger); err != nil {
			return fmt.Errorf("register jobs: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// Application layer
	// ─────────────────────────────────────────────────────────────────────

	linkCmd := command.NewLinkAccountHandler(
		accountRepo, accountCache, matchRepo, odClient, odMapper,
		eventBus, logger,
		command.LinkAccountConfig{
			BackfillLimit: cfg.Tracker.BackfillLimit,
			Timeout:       command.DefaultLinkAccountConfig().Timeout,
		},
	)
	setRatingCmd := command.NewSetRatingHandler(
		accountRepo, accountCache, eventBus, logger,
		command.DefaultSetRatingConfig(),
	)
	unlinkCmd := command.NewUnlinkAccountHandler(accountRepo, accountCache, eventBus, logger)
	syncCmd := command.NewSyncAccountHandler(
		accountRepo, syncJob, logger, command.DefaultSyncAccountConfig(),
	)
	prefsCmd := command.NewUpdatePreferencesHandler(accountRepo, accountCache)
	presetCmd := command.NewPresetPreferencesHandler(prefsCmd)

	// ─────────────────────────────────────────────────────────────────────
	// Bot
	// ─────────────────────────────────────────────────────────────────────

	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	if cfg.Telegram.PollingTimeout > 0 {
		botConfig.PollingTimeout = int(cfg.Telegram.PollingTimeout.Seconds())
	}
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = logger
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout

	var dictSource handler.DictionarySource
	if dictionaryCache != nil {
		dictSource = dictionaryCache
	}

	bot, err := telegram.NewBot(botConfig, telegram.BotDependencies{
		AccountRepo: accountRepo,

		LinkAccountCmd: linkCmd,
		SetRatingCmd:   setRatingCmd,
		UnlinkCmd:      unlinkCmd,
		SyncCmd:        syncCmd,
		UpdatePrefsCmd: prefsCmd,
		PresetPrefsCmd: presetCmd,

		StatusQuery:        query.NewGetStatusHandler(accountRepo, matchRepo),
		RecentMatchesQuery: query.NewGetRecentMatchesHandler(accountRepo, matchRepo),
		HeroStatsQuery:     query.NewGetHeroStatsHandler(accountRepo, odClient),
		HeroAnalyticsQuery: query.NewGetHeroAnalyticsHandler(accountRepo, matchRepo),
		RoleStatsQuery:     query.NewGetRoleStatsHandler(accountRepo, matchRepo),
		ActivityQuery:      query.NewGetActivityHandler(accountRepo, matchRepo),
		RatingTrendQuery:   query.NewGetRatingTrendHandler(accountRepo, matchRepo),

		Dictionaries: dictSource,
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	// Match cards and alerts go out through the same client the menus use.
	notificationSvc.RegisterChannel(bot.Client())

	// ─────────────────────────────────────────────────────────────────────
	// Ops HTTP
	// ─────────────────────────────────────────────────────────────────────

	opsConfig := opshttp.DefaultConfig()
	opsConfig.Port = cfg.HTTP.Port
	opsConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	opsConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	opsConfig.AdminTokenHash = cfg.HTTP.AdminTokenHash
	opsConfig.Version = cfg.App.Version
	opsConfig.Logger = logger

	opsServer := opshttp.NewServer(opsConfig, opshttp.Dependencies{
		Postgres: conn,
		Redis:    redisPinger,
		Metrics:  bot.Metrics(),
		BotStats: bot,
		Jobs:     sched,
		Events:   auditHandler,
	})

	// ─────────────────────────────────────────────────────────────────────
	// Supervision tree
	// ─────────────────────────────────────────────────────────────────────

	tree := supervisor.NewTree("dota-pulse-bot", logger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.App.ShutdownTimeout,
	})
	tree.AddInterfaceService(supervisor.NewPollerService("telegram-bot", bot, cfg.App.ShutdownTimeout))
	tree.AddInterfaceService(supervisor.NewListenerService("ops-http", opsServer, cfg.App.ShutdownTimeout))
	if cfg.Scheduler.Enabled {
		tree.AddBackgroundService(supervisor.NewRunnerService("scheduler", sched))
	}

	err = tree.Serve(ctx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// newLogger builds the process logger from observability settings.
func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// redisConfig maps application settings to the cache client config.
func redisConfig(cfg config.RedisConfig) rediscache.Config {
	return rediscache.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// opendotaConfig maps application settings to the OpenDota client config.
func opendotaConfig(cfg config.OpenDotaConfig, logger *slog.Logger) opendota.ClientConfig {
	clientCfg := opendota.DefaultClientConfig()
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.APIKey = cfg.APIKey
	if cfg.RequestTimeout > 0 {
		clientCfg.Timeout = cfg.RequestTimeout
	}
	if cfg.CacheTTL > 0 {
		clientCfg.CacheTTL = cfg.CacheTTL
	}
	if cfg.RateLimit > 0 {
		clientCfg.RateLimiter.RequestsPerSecond = float64(cfg.RateLimit) / 60.0
	}
	if cfg.RateLimitBurst > 0 {
		clientCfg.RateLimiter.BurstSize = cfg.RateLimitBurst
	}
	if cfg.CircuitBreakerThreshold > 0 {
		clientCfg.CircuitBreaker.FailureThreshold = cfg.CircuitBreakerThreshold
	}
	if cfg.CircuitBreakerTimeout > 0 {
		clientCfg.CircuitBreaker.RecoveryTimeout = cfg.CircuitBreakerTimeout
	}
	if cfg.CircuitBreakerHalfOpenMax > 0 {
		clientCfg.CircuitBreaker.HalfOpenMaxProbes = cfg.CircuitBreakerHalfOpenMax
	}
	clientCfg.Logger = logger
	return clientCfg
}

// matchSyncConfig maps tracker settings to the sync job config.
func matchSyncConfig(cfg config.TrackerConfig) jobs.MatchSyncConfig {
	jobCfg := jobs.DefaultMatchSyncConfig()
	if cfg.RatingStep > 0 {
		jobCfg.RatingStep = cfg.RatingStep
	}
	if cfg.StreakWinThreshold > 0 {
		jobCfg.StreakWinThreshold = cfg.StreakWinThreshold
	}
	if cfg.StreakLoseThreshold > 0 {
		jobCfg.StreakLoseThreshold = cfg.StreakLoseThreshold
	}
	return jobCfg
}

// buildEventPipeline creates the event bus and dispatcher. With Redis
// available events also fan out to other instances via Pub/Sub.
func buildEventPipeline(cfg *config.Config, cache *rediscache.Cache, logger *slog.Logger) (shared.EventBus, *messaging.Dispatcher, error) {
	localConfig := messaging.InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		Logger:         logger,
		EnableMetrics:  true,
	}

	var bus shared.EventBus
	if cache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewCachePubSub(cache),
			ChannelName:    "dota_pulse:events",
			InstanceID:     cfg.App.Name,
			LocalBusConfig: localConfig,
			Logger:         logger,
		})
		if err != nil {
			return nil, nil, err
		}
		bus = redisBus
	} else {
		bus = messaging.NewInMemoryEventBus(localConfig)
	}

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(bus))
	dispatcher.Use(messaging.RecoveryMiddleware(logger))
	dispatcher.Use(messaging.LoggingMiddleware(logger))

	return bus, dispatcher, nil
}

// registerEventHandlers wires domain event handlers into the dispatcher.
// The audit handler counts every event type for the ops endpoint.
func registerEventHandlers(
	dispatcher *messaging.Dispatcher,
	audit *eventhandler.EventAuditHandler,
	rank *eventhandler.OnRankTierChangedHandler,
) error {
	auditTypes := []shared.EventType{
		shared.EventAccountBound,
		shared.EventAccountUnbound,
		shared.EventRatingManualSet,
		shared.EventMatchRecorded,
		shared.EventRatingChanged,
		shared.EventRankTierChanged,
		shared.EventStreakThresholdHit,
		shared.EventNotificationSent,
		shared.EventNotificationFailed,
		shared.EventSyncCompleted,
		shared.EventDailyReportSent,
	}
	for _, eventType := range auditTypes {
		if err := dispatcher.RegisterSync(eventType, "event_audit", audit.Handle); err != nil {
			return err
		}
	}

	return dispatcher.Register(shared.EventRankTierChanged, "rank_tier_notifier", rank.Handle)
}

// registerJobs wires background jobs into the scheduler.
func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	syncJob *jobs.MatchSyncJob,
	reportJob *jobs.DailyReportJob,
	odClient *opendota.Client,
	odMapper *opendota.Mapper,
	dictionaryCache *rediscache.DictionaryCache,
	logger *slog.Logger,
) error {
	if err := sched.Register(syncJob, scheduler.NewIntervalSchedule(cfg.Tracker.PollInterval)); err != nil {
		return err
	}

	reportSchedule, err := scheduler.DailySchedule(cfg.Scheduler.DailyReportHour, cfg.Scheduler.DailyReportMinute)
	if err != nil {
		return err
	}
	if err := sched.Register(reportJob, reportSchedule); err != nil {
		return err
	}

	// Dictionary refresh only makes sense with a store to refresh.
	if dictionaryCache != nil {
		refreshJob := jobs.NewDictionaryRefreshJob(
			odClient, odMapper, dictionaryCache, logger,
			jobs.DefaultDictionaryRefreshConfig(),
		)
		if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.DictionaryRefreshInterval)); err != nil {
			return err
		}
	}

	return nil
}
