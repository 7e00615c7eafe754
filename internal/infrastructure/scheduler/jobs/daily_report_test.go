package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

func reportMatch(t *testing.T, matchID int64, startTime time.Time, won bool, ratingDelta int) *match.Match {
	t.Helper()

	radiantWin := won // player always sits in slot 1 (Radiant) here
	m, err := match.NewMatch(match.NewMatchParams{
		SteamID:    86745912,
		MatchID:    match.MatchID(matchID),
		StartTime:  startTime,
		Duration:   2100,
		HeroID:     14,
		Kills:      5,
		Deaths:     4,
		Assists:    9,
		LobbyType:  match.LobbyRanked,
		GameMode:   22,
		RadiantWin: radiantWin,
		PlayerSlot: 1,
	})
	assert.NoError(t, err)
	if ratingDelta != 0 {
		after := 3000 + ratingDelta
		m.ApplyRating(ratingDelta, after)
	}
	return m
}

func TestDailyReportSummarizesTheDay(t *testing.T) {
	startOfDay := timeutil.StartOfDay(timeutil.ToMoscow(timeutil.Now()))
	acc := boundAccount(t, 3030, 100)

	matches := newFakeMatchRepo(
		reportMatch(t, 101, startOfDay.Add(2*time.Hour), true, 30),
		reportMatch(t, 102, startOfDay.Add(5*time.Hour), false, -30),
		reportMatch(t, 103, startOfDay.Add(8*time.Hour), true, 30),
	)

	notifier := &fakeNotifier{}
	bus := &fakeEventBus{}
	job := NewDailyReportJob(newFakeAccountRepo(acc), matches, notifier, bus, nil, DefaultDailyReportConfig())

	err := job.Run(context.Background())

	assert.NoError(t, err)

	reports := notifier.byType(notification.TypeDailyReport)
	if assert.Len(t, reports, 1) {
		assert.Contains(t, reports[0].Message, "Итоги дня")
		assert.Contains(t, reports[0].Message, "Игр: <b>3</b>")
		assert.Contains(t, reports[0].Message, "<b>2</b>/<b>1</b>")
		assert.Contains(t, reports[0].Message, "WR <b>67%</b>")
		assert.Contains(t, reports[0].Message, "Δ MMR (ranked): <b>+30</b>")
		assert.Contains(t, reports[0].Message, "Текущий рейтинг: <b>3030</b>")
		assert.NotContains(t, reports[0].Message, "не играл")
	}

	assert.Len(t, bus.ofType(shared.EventDailyReportSent), 1)

	stats := job.LastReportStats()
	if assert.NotNil(t, stats) {
		assert.Equal(t, 1, stats.SentCount)
		assert.Equal(t, 0, stats.FailedCount)
	}
}

func TestDailyReportDayWithoutGames(t *testing.T) {
	acc := boundAccount(t, 3000, 100)

	notifier := &fakeNotifier{}
	job := NewDailyReportJob(newFakeAccountRepo(acc), newFakeMatchRepo(), notifier, &fakeEventBus{}, nil, DefaultDailyReportConfig())

	assert.NoError(t, job.Run(context.Background()))

	reports := notifier.byType(notification.TypeDailyReport)
	if assert.Len(t, reports, 1) {
		assert.Contains(t, reports[0].Message, "Игр: <b>0</b>")
		assert.Contains(t, reports[0].Message, "Сегодня ты не играл")
	}
}

func TestDailyReportWindowIsTheMoscowDay(t *testing.T) {
	startOfDay := timeutil.StartOfDay(timeutil.ToMoscow(timeutil.Now()))
	acc := boundAccount(t, 3000, 100)

	matches := newFakeMatchRepo(
		// Ten minutes into today counts, ten minutes before midnight
		// belongs to yesterday's report.
		reportMatch(t, 102, startOfDay.Add(10*time.Minute), true, 0),
		reportMatch(t, 101, startOfDay.Add(-10*time.Minute), true, 0),
	)

	notifier := &fakeNotifier{}
	job := NewDailyReportJob(newFakeAccountRepo(acc), matches, notifier, &fakeEventBus{}, nil, DefaultDailyReportConfig())

	assert.NoError(t, job.Run(context.Background()))

	reports := notifier.byType(notification.TypeDailyReport)
	if assert.Len(t, reports, 1) {
		assert.Contains(t, reports[0].Message, "Игр: <b>1</b>")
	}
}

func TestDailyReportUnknownRatingShowsDash(t *testing.T) {
	acc := boundAccount(t, 0, 100)

	notifier := &fakeNotifier{}
	job := NewDailyReportJob(newFakeAccountRepo(acc), newFakeMatchRepo(), notifier, &fakeEventBus{}, nil, DefaultDailyReportConfig())

	assert.NoError(t, job.Run(context.Background()))

	reports := notifier.byType(notification.TypeDailyReport)
	if assert.Len(t, reports, 1) {
		assert.Contains(t, reports[0].Message, "Текущий рейтинг: <b>—</b>")
	}
}
