// Package jobs contains implementations of scheduled jobs for Dota Pulse.
// The match sync job is the heart of the tracker: it reconciles every bound
// account against OpenDota and turns new matches into cards, rating moves
// and streak alerts.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
	rediscache "github.com/dotapulse/dota-pulse-bot/internal/infrastructure/persistence/redis"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH SYNC JOB
// ══════════════════════════════════════════════════════════════════════════════

// MatchSyncJob reconciles all bound accounts against OpenDota. For every
// match above the account's watermark it stores the record, simulates the
// rating step for ranked games, refreshes the profile medal and sends the
// notifications the player subscribed to.
type MatchSyncJob struct {
	// Dependencies
	accountRepo     account.Repository
	accountCache    account.Cache
	matchRepo       match.Repository
	source          MatchSource
	mapper          *opendota.Mapper
	dictionaries    DictionaryLookup
	notificationSvc NotificationService
	eventPublisher  shared.EventPublisher
	logger          *slog.Logger

	// Configuration
	config MatchSyncConfig

	// State (for metrics)
	lastSyncStats atomic.Value // *SyncStats
}

// MatchSyncConfig contains configuration for the sync job.
type MatchSyncConfig struct {
	// Concurrency is the number of accounts to sync in parallel.
	Concurrency int

	// FetchLimit is the number of recent match summaries requested per
	// account per pass. Anything above the watermark within this window
	// is treated as new.
	FetchLimit int

	// RatingStep is the fixed simulated MMR step per ranked win or loss.
	RatingStep int

	// StreakWinThreshold and StreakLoseThreshold are the streak lengths
	// at which alerts start firing.
	StreakWinThreshold  int
	StreakLoseThreshold int

	// Timeout is the maximum duration for the entire sync pass.
	Timeout time.Duration
}

// DefaultMatchSyncConfig returns sensible defaults.
func DefaultMatchSyncConfig() MatchSyncConfig {
	return MatchSyncConfig{
		Concurrency:         5,
		FetchLimit:          20,
		RatingStep:          30,
		StreakWinThreshold:  5,
		StreakLoseThreshold: 5,
		Timeout:             5 * time.Minute,
	}
}

// SyncStats contains statistics from a sync pass.
type SyncStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	TotalAccounts int
	SyncedCount   int
	NewMatches    int
	FailedCount   int
	Errors        []SyncError
}

// SyncError represents an error during sync.
type SyncError struct {
	TelegramID int64
	SteamID    int64
	Error      error
	OccurredAt time.Time
}

// MatchSource is the slice of the OpenDota client the sync job needs.
// The client's accessors degrade to (nil, nil) on upstream trouble, so a
// nil result without an error means "skip this account for now".
type MatchSource interface {
	// Matches fetches recent match summaries for a steam32 account.
	Matches(ctx context.Context, accountID int64, limit int) ([]opendota.PlayerMatchDTO, error)

	// MatchDetail fetches the full match with all ten participants.
	MatchDetail(ctx context.Context, matchID int64) (*opendota.MatchDetailDTO, error)

	// Player fetches the profile, including the current rank tier.
	Player(ctx context.Context, accountID int64) (*opendota.PlayerDTO, error)
}

// DictionaryLookup resolves hero and game mode names for match cards.
type DictionaryLookup interface {
	Lookup(ctx context.Context, name string, id int) (string, error)
}

// NotificationService is the sending side the jobs depend on. The
// implementation checks recipient preferences and feature flags before
// delivery.
type NotificationService interface {
	Send(ctx context.Context, n *notification.Notification) notification.DeliveryResult
}

// NewMatchSyncJob creates a new sync job.
func NewMatchSyncJob(
	accountRepo account.Repository,
	accountCache account.Cache,
	matchRepo match.Repository,
	source MatchSource,
	mapper *opendota.Mapper,
	dictionaries DictionaryLookup,
	notificationSvc NotificationService,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config MatchSyncConfig,
) *MatchSyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}
	if config.FetchLimit <= 0 {
		config.FetchLimit = 20
	}

	return &MatchSyncJob{
		accountRepo:     accountRepo,
		accountCache:    accountCache,
		matchRepo:       matchRepo,
		source:          source,
		mapper:          mapper,
		dictionaries:    dictionaries,
		notificationSvc: notificationSvc,
		eventPublisher:  eventPublisher,
		logger:          logger,
		config:          config,
	}
}

// Name returns the job name.
func (j *MatchSyncJob) Name() string {
	return "match_sync"
}

// Description returns a human-readable description.
func (j *MatchSyncJob) Description() string {
	return "Reconciles all bound accounts against OpenDota and sends match notifications"
}

// Run executes one sync pass over all bound accounts.
func (j *MatchSyncJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &SyncStats{
		StartedAt: startedAt,
		Errors:    make([]SyncError, 0),
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	accounts, err := j.accountRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	stats.TotalAccounts = len(accounts)
	if stats.TotalAccounts == 0 {
		stats.CompletedAt = time.Now()
		stats.Duration = stats.CompletedAt.Sub(startedAt)
		j.lastSyncStats.Store(stats)
		return nil
	}

	j.syncAccountsConcurrently(ctx, accounts, stats)

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastSyncStats.Store(stats)

	j.emitSyncCompletedEvent(stats)

	j.logger.Info("match_sync pass completed",
		"duration", stats.Duration.String(),
		"accounts", stats.TotalAccounts,
		"synced", stats.SyncedCount,
		"new_matches", stats.NewMatches,
		"failed", stats.FailedCount,
	)

	failureRate := float64(stats.FailedCount) / float64(stats.TotalAccounts)
	if failureRate > 0.5 {
		return fmt.Errorf("sync failed for more than 50%% of accounts (%d/%d)",
			stats.FailedCount, stats.TotalAccounts)
	}

	return nil
}

// syncAccountsConcurrently processes accounts using a bounded worker group.
func (j *MatchSyncJob) syncAccountsConcurrently(ctx context.Context, accounts []*account.Account, stats *SyncStats) {
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(j.config.Concurrency)

	for _, acc := range accounts {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			newMatches, err := j.SyncAccount(ctx, acc)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.FailedCount++
				stats.Errors = append(stats.Errors, SyncError{
					TelegramID: acc.TelegramID.Int64(),
					SteamID:    acc.SteamID.Int64(),
					Error:      err,
					OccurredAt: time.Now(),
				})
				j.logger.Error("failed to sync account",
					"telegram_id", acc.TelegramID.Int64(),
					"steam_id", acc.SteamID.Int64(),
					"error", err,
				)
				// Per-account failures are counted, not propagated, so
				// one bad account does not cancel the whole pass.
				return nil
			}

			stats.SyncedCount++
			stats.NewMatches += newMatches
			return nil
		})
	}

	_ = group.Wait()
}

// SyncAccount reconciles a single account and returns the number of newly
// recorded matches. It is also called on demand when a player asks for an
// immediate refresh.
func (j *MatchSyncJob) SyncAccount(ctx context.Context, acc *account.Account) (int, error) {
	summaries, err := j.source.Matches(ctx, acc.SteamID.Int64(), j.config.FetchLimit)
	if err != nil {
		return 0, fmt.Errorf("fetch matches: %w", err)
	}
	if len(summaries) == 0 {
		return 0, nil
	}

	fresh := make([]opendota.PlayerMatchDTO, 0, len(summaries))
	for _, dto := range summaries {
		if acc.IsNewMatch(dto.MatchID) {
			fresh = append(fresh, dto)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	// Oldest first, so watermarks and streaks advance in game order.
	sort.Slice(fresh, func(a, b int) bool {
		return fresh[a].MatchID < fresh[b].MatchID
	})

	// A zero watermark means the account was never synced: everything but
	// the latest game goes in silently, only the latest one notifies.
	if acc.LastMatchID == 0 && len(fresh) > 1 {
		for _, dto := range fresh[:len(fresh)-1] {
			if err := j.recordSilently(ctx, acc, dto); err != nil {
				j.logger.Warn("failed to backfill match",
					"steam_id", acc.SteamID.Int64(),
					"match_id", dto.MatchID,
					"error", err,
				)
			}
		}
		fresh = fresh[len(fresh)-1:]
	}

	processed := 0
	for _, dto := range fresh {
		if err := j.processMatch(ctx, acc, dto); err != nil {
			return processed, fmt.Errorf("match %d: %w", dto.MatchID, err)
		}
		processed++

		// The card for this match is already out. Persist the advanced
		// watermark before touching the next one, so a failure later in
		// the batch cannot replay this notification next pass.
		if err := j.persistAccount(ctx, acc); err != nil {
			return processed, fmt.Errorf("save account: %w", err)
		}
	}

	j.refreshRankTier(ctx, acc)

	if err := j.persistAccount(ctx, acc); err != nil {
		return processed, fmt.Errorf("save account: %w", err)
	}

	return processed, nil
}

// persistAccount saves the account and drops its cached copy. The write is
// detached from the pass context: once a notification went out, the
// watermark covering it must land even if the pass deadline expires.
func (j *MatchSyncJob) persistAccount(ctx context.Context, acc *account.Account) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := j.accountRepo.Update(ctx, acc); err != nil {
		return err
	}
	if err := j.accountCache.Delete(ctx, acc.TelegramID); err != nil {
		j.logger.Warn("failed to invalidate account cache",
			"telegram_id", acc.TelegramID.Int64(),
			"error", err,
		)
	}
	return nil
}

// recordSilently stores a backfilled match without details, rating moves
// or notifications.
func (j *MatchSyncJob) recordSilently(ctx context.Context, acc *account.Account, dto opendota.PlayerMatchDTO) error {
	m, err := j.mapper.MatchFromSummary(acc.SteamID.Int64(), dto)
	if err != nil {
		return err
	}
	if err := j.matchRepo.Upsert(ctx, m); err != nil {
		return err
	}
	acc.AdvanceMatchWatermark(m.MatchID.Int64())
	if m.IsRanked() {
		acc.AdvanceRankedWatermark(m.MatchID.Int64())
	}
	return nil
}

// processMatch records one new match: detail enrichment, ranked rating
// simulation, the card and the streak alert.
func (j *MatchSyncJob) processMatch(ctx context.Context, acc *account.Account, dto opendota.PlayerMatchDTO) error {
	m, err := j.mapper.MatchFromSummary(acc.SteamID.Int64(), dto)
	if err != nil {
		return fmt.Errorf("map summary: %w", err)
	}

	j.enrichFromDetail(ctx, acc, m)

	if m.IsRanked() && acc.IsNewRankedMatch(m.MatchID.Int64()) {
		j.applyRatingStep(acc, m)
		acc.AdvanceRankedWatermark(m.MatchID.Int64())
	}

	if err := j.matchRepo.Upsert(ctx, m); err != nil {
		return fmt.Errorf("store match: %w", err)
	}
	acc.AdvanceMatchWatermark(m.MatchID.Int64())

	delta := 0
	if m.RatingDelta != nil {
		delta = *m.RatingDelta
	}
	event := shared.NewMatchRecordedEvent(
		acc.TelegramID.Int64(),
		acc.SteamID.Int64(),
		m.MatchID.Int64(),
		m.HeroID,
		m.PlayerWon(),
		m.IsRanked(),
		delta,
	)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish MatchRecorded event",
			"match_id", m.MatchID.Int64(),
			"error", err,
		)
	}

	j.sendMatchCard(ctx, acc, m)
	j.checkStreak(ctx, acc)

	return nil
}

// enrichFromDetail pulls net worth, GPM and the inferred role from the
// full match. Details are best effort: the card goes out without them.
func (j *MatchSyncJob) enrichFromDetail(ctx context.Context, acc *account.Account, m *match.Match) {
	detail, err := j.source.MatchDetail(ctx, m.MatchID.Int64())
	if err != nil || detail == nil {
		if err != nil {
			j.logger.Warn("failed to fetch match detail",
				"match_id", m.MatchID.Int64(),
				"error", err,
			)
		}
		return
	}

	netWorth, gpm, signals, ok := j.mapper.RoleSignalsFromDetail(detail, acc.SteamID.Int64())
	if !ok {
		return
	}
	m.ApplyDetail(netWorth, gpm, match.InferRole(signals))
}

// applyRatingStep simulates the MMR move for a ranked match. Does nothing
// while the player's rating is still unknown.
func (j *MatchSyncJob) applyRatingStep(acc *account.Account, m *match.Match) {
	before, ok := acc.EffectiveRating()
	if !ok {
		return
	}

	delta := j.config.RatingStep
	if !m.PlayerWon() {
		delta = -delta
	}

	rating, err := acc.ApplyRatingDelta(delta)
	if err != nil {
		return
	}
	m.ApplyRating(delta, rating.Value)

	event := shared.NewRatingChangedEvent(acc.TelegramID.Int64(), m.MatchID.Int64(), before, rating.Value)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish RatingChanged event",
			"telegram_id", acc.TelegramID.Int64(),
			"error", err,
		)
	}
}

// refreshRankTier re-reads the profile medal after new matches were seen.
func (j *MatchSyncJob) refreshRankTier(ctx context.Context, acc *account.Account) {
	player, err := j.source.Player(ctx, acc.SteamID.Int64())
	if err != nil || player == nil {
		return
	}

	if player.Profile != nil {
		acc.SetPersonaName(player.Profile.Personaname)
	}

	oldTier := acc.RankTier
	tier := j.mapper.RankTierFromPlayer(player)
	if !acc.UpdateRankTier(tier) {
		return
	}

	// The alert itself is sent by the rank-change event handler.
	event := shared.NewRankTierChangedEvent(
		acc.TelegramID.Int64(),
		acc.SteamID.Int64(),
		oldTier.Int(),
		tier.Int(),
	)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish RankTierChanged event",
			"telegram_id", acc.TelegramID.Int64(),
			"error", err,
		)
	}
}

// checkStreak sends an alert while the current streak sits at or beyond a
// threshold. Alerts repeat on every new match of the streak, matching how
// a hot streak actually feels.
func (j *MatchSyncJob) checkStreak(ctx context.Context, acc *account.Account) {
	recent, err := j.matchRepo.ListRecent(ctx, match.SteamID(acc.SteamID.Int64()), match.StreakScanLimit)
	if err != nil {
		j.logger.Warn("failed to load recent matches for streak check",
			"steam_id", acc.SteamID.Int64(),
			"error", err,
		)
		return
	}

	streak := match.StreakOf(recent)
	switch {
	case streak >= j.config.StreakWinThreshold:
		j.sendStreakAlert(ctx, acc, shared.StreakWin, streak)
	case -streak >= j.config.StreakLoseThreshold:
		j.sendStreakAlert(ctx, acc, shared.StreakLose, -streak)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Notifications
// ──────────────────────────────────────────────────────────────────────────────

func (j *MatchSyncJob) sendMatchCard(ctx context.Context, acc *account.Account, m *match.Match) {
	text := formatMatchCard(m, j.heroName(ctx, m.HeroID), j.modeName(ctx, m))

	n, err := notification.New(notification.TypeMatchCard, shared.TelegramID(acc.TelegramID.Int64()), text)
	if err != nil {
		j.logger.Error("failed to build match card", "error", err)
		return
	}

	result := j.notificationSvc.Send(ctx, n)
	if !result.Success && result.Error != nil {
		j.logger.Warn("failed to deliver match card",
			"telegram_id", acc.TelegramID.Int64(),
			"match_id", m.MatchID.Int64(),
			"error", result.Error,
		)
	}
}

func (j *MatchSyncJob) sendStreakAlert(ctx context.Context, acc *account.Account, kind shared.StreakKind, length int) {
	event := shared.NewStreakThresholdHitEvent(acc.TelegramID.Int64(), kind, length)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish StreakThresholdHit event",
			"telegram_id", acc.TelegramID.Int64(),
			"error", err,
		)
	}

	text := formatStreakAlert(kind, length)
	n, err := notification.New(notification.TypeStreakAlert, shared.TelegramID(acc.TelegramID.Int64()), text)
	if err != nil {
		return
	}
	j.notificationSvc.Send(ctx, n)
}

// heroName resolves the hero name from the dictionary cache.
func (j *MatchSyncJob) heroName(ctx context.Context, heroID int) string {
	if j.dictionaries != nil {
		if name, err := j.dictionaries.Lookup(ctx, rediscache.DictionaryHeroes, heroID); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("Hero %d", heroID)
}

// modeName builds the "lobby | mode" line of the card.
func (j *MatchSyncJob) modeName(ctx context.Context, m *match.Match) string {
	mode := m.GameMode.Name()
	if j.dictionaries != nil {
		if name, err := j.dictionaries.Lookup(ctx, rediscache.DictionaryGameModes, int(m.GameMode)); err == nil && name != "" {
			mode = name
		}
	}
	return m.LobbyType.Name() + " | " + mode
}

// emitSyncCompletedEvent publishes a sync completed event.
func (j *MatchSyncJob) emitSyncCompletedEvent(stats *SyncStats) {
	event := shared.NewSyncCompletedEvent(stats.TotalAccounts, stats.NewMatches, stats.FailedCount, stats.Duration)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish SyncCompleted event", "error", err)
	}
}

// LastSyncStats returns statistics from the last sync pass.
func (j *MatchSyncJob) LastSyncStats() *SyncStats {
	stats := j.lastSyncStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*SyncStats)
}

// ──────────────────────────────────────────────────────────────────────────────
// Message formatting
// ──────────────────────────────────────────────────────────────────────────────

const openDotaMatchURL = "https://www.opendota.com/matches/%d"

// persistTimeout bounds the detached watermark write in persistAccount.
const persistTimeout = 5 * time.Second

// formatMatchCard renders the HTML card for a freshly recorded match.
func formatMatchCard(m *match.Match, heroName, modeName string) string {
	result := "❌ Поражение"
	if m.PlayerWon() {
		result = "✅ Победа"
	}

	ratingLine := ""
	if m.RatingDelta != nil && m.RatingAfter != nil {
		arrow := "•"
		switch {
		case *m.RatingDelta > 0:
			arrow = "▲"
		case *m.RatingDelta < 0:
			arrow = "▼"
		}
		ratingLine = fmt.Sprintf("\n📈 ΔMMR: %s %+d\n📊 Текущий: <b>%d</b>", arrow, *m.RatingDelta, *m.RatingAfter)
	}

	return fmt.Sprintf(
		"🎮 <b>Новая игра</b>\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"📅 %s\n"+
			"🧩 %s\n"+
			"🧙 Герой: <b>%s</b>\n"+
			"⚔️ %d/%d/%d (KDA %.2f) • ⏱ %s\n"+
			"🏆 Итог: %s%s\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"🔗 <a href=\""+openDotaMatchURL+"\">Открыть на OpenDota</a>",
		timeutil.FormatRussian(m.StartTime),
		modeName,
		heroName,
		m.Kills, m.Deaths, m.Assists, m.KDA(),
		timeutil.FormatMatchDuration(m.Duration),
		result,
		ratingLine,
		m.MatchID.Int64(),
	)
}

// formatStreakAlert renders the win or lose streak message.
func formatStreakAlert(kind shared.StreakKind, length int) string {
	if kind == shared.StreakWin {
		return fmt.Sprintf("🔥 Винстрик: %d побед подряд!", length)
	}
	return fmt.Sprintf("💀 Лузстрик: %d поражений подряд.", length)
}
