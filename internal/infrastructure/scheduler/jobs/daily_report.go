package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY REPORT JOB
// ══════════════════════════════════════════════════════════════════════════════

// DailyReportJob sends the end-of-day summary to every bound account at
// 23:59 Moscow time. The report goes out even on a day without games, so
// the player gets a predictable nightly checkpoint.
type DailyReportJob struct {
	// Dependencies
	accountRepo     account.Repository
	matchRepo       match.Repository
	notificationSvc NotificationService
	eventPublisher  shared.EventPublisher
	logger          *slog.Logger

	// Configuration
	config DailyReportConfig

	// State (for metrics)
	lastReportStats atomic.Value // *ReportStats
}

// DailyReportConfig contains configuration for the daily report job.
type DailyReportConfig struct {
	// Concurrency is the number of accounts to report on in parallel.
	Concurrency int

	// Timeout is the maximum duration for the entire report pass.
	Timeout time.Duration
}

// DefaultDailyReportConfig returns sensible defaults.
func DefaultDailyReportConfig() DailyReportConfig {
	return DailyReportConfig{
		Concurrency: 5,
		Timeout:     5 * time.Minute,
	}
}

// ReportStats contains statistics from a report pass.
type ReportStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	TotalAccounts int
	SentCount     int
	FailedCount   int
}

// NewDailyReportJob creates a new daily report job.
func NewDailyReportJob(
	accountRepo account.Repository,
	matchRepo match.Repository,
	notificationSvc NotificationService,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config DailyReportConfig,
) *DailyReportJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}

	return &DailyReportJob{
		accountRepo:     accountRepo,
		matchRepo:       matchRepo,
		notificationSvc: notificationSvc,
		eventPublisher:  eventPublisher,
		logger:          logger,
		config:          config,
	}
}

// Name returns the job name.
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Description returns a human-readable description.
func (j *DailyReportJob) Description() string {
	return "Sends the end-of-day summary to every bound account"
}

// Run executes one report pass.
func (j *DailyReportJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &ReportStats{StartedAt: startedAt}

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
		j.lastReportStats.Store(stats)
		return nil
	}

	// The reporting window is the current Moscow day; the job fires at
	// 23:59 local, so the day is effectively complete.
	now := timeutil.ToMoscow(timeutil.Now())
	from := timeutil.StartOfDay(now)
	to := timeutil.EndOfDay(now)

	j.sendReportsConcurrently(ctx, accounts, from, to, stats)

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastReportStats.Store(stats)

	j.logger.Info("daily_report pass completed",
		"duration", stats.Duration.String(),
		"accounts", stats.TotalAccounts,
		"sent", stats.SentCount,
		"failed", stats.FailedCount,
	)

	failureRate := float64(stats.FailedCount) / float64(stats.TotalAccounts)
	if failureRate > 0.5 {
		return fmt.Errorf("report failed for more than 50%% of accounts (%d/%d)",
			stats.FailedCount, stats.TotalAccounts)
	}

	return nil
}

// sendReportsConcurrently builds and sends reports using a worker pool.
func (j *DailyReportJob) sendReportsConcurrently(
	ctx context.Context,
	accounts []*account.Account,
	from, to time.Time,
	stats *ReportStats,
) {
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(j.config.Concurrency)

	for _, acc := range accounts {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			err := j.sendReport(ctx, acc, from, to)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.FailedCount++
				j.logger.Error("failed to send daily report",
					"telegram_id", acc.TelegramID.Int64(),
					"error", err,
				)
				// Counted per account; a single failed delivery must not
				// cancel the remaining reports.
				return nil
			}
			stats.SentCount++
			return nil
		})
	}

	_ = group.Wait()
}

// sendReport builds and sends the summary for one account.
func (j *DailyReportJob) sendReport(ctx context.Context, acc *account.Account, from, to time.Time) error {
	steamID := match.SteamID(acc.SteamID.Int64())

	todays, err := j.matchRepo.ListInRange(ctx, steamID, from, to)
	if err != nil {
		return fmt.Errorf("load today's matches: %w", err)
	}

	ratingDelta, err := j.matchRepo.SumRankedDeltas(ctx, steamID, from, to)
	if err != nil {
		return fmt.Errorf("sum rating deltas: %w", err)
	}

	text := formatDailyReport(acc, todays, ratingDelta)

	n, err := notification.New(notification.TypeDailyReport, shared.TelegramID(acc.TelegramID.Int64()), text)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	result := j.notificationSvc.Send(ctx, n)
	if !result.Success && result.Error != nil {
		return fmt.Errorf("deliver report: %w", result.Error)
	}

	event := shared.NewDailyReportSentEvent(acc.TelegramID.Int64(), len(todays))
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish DailyReportSent event",
			"telegram_id", acc.TelegramID.Int64(),
			"error", err,
		)
	}

	return nil
}

// LastReportStats returns statistics from the last report pass.
func (j *DailyReportJob) LastReportStats() *ReportStats {
	stats := j.lastReportStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*ReportStats)
}

// formatDailyReport renders the HTML end-of-day summary.
func formatDailyReport(acc *account.Account, todays []*match.Match, ratingDelta int) string {
	games := len(todays)
	wins := 0
	for _, m := range todays {
		if m.PlayerWon() {
			wins++
		}
	}
	losses := games - wins

	winRate := 0
	if games > 0 {
		winRate = int(math.Round(float64(wins) / float64(games) * 100))
	}

	rating := "—"
	if value, ok := acc.EffectiveRating(); ok {
		rating = fmt.Sprintf("%d", value)
	}

	text := fmt.Sprintf(
		"📊 <b>Итоги дня</b>\n"+
			"• Игр: <b>%d</b>\n"+
			"• Победы/Поражения: <b>%d</b>/<b>%d</b> (WR <b>%d%%</b>)\n"+
			"• Δ MMR (ranked): <b>%+d</b>\n"+
			"• Текущий рейтинг: <b>%s</b>\n",
		games, wins, losses, winRate, ratingDelta, rating,
	)

	if games == 0 {
		text += "\n• Сегодня ты не играл — удачи завтра! ✨"
	}

	return text
}
