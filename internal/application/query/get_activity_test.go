package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

func TestActivityCountsGamesPerMoscowDay(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)

	today := timeutil.StartOfDay(timeutil.ToMoscow(timeutil.Now()))
	storedMatch(t, matches, 101, today.Add(2*time.Hour), true, false)
	storedMatch(t, matches, 102, today.Add(5*time.Hour), true, false)
	storedMatch(t, matches, 103, today.AddDate(0, 0, -2).Add(3*time.Hour), false, false)
	// Outside the 7-day window, must not count.
	storedMatch(t, matches, 90, today.AddDate(0, 0, -10), true, false)

	handler := NewGetActivityHandler(accounts, matches)

	activity, err := handler.Handle(context.Background(), GetActivityQuery{TelegramID: 555})

	require.NoError(t, err)
	require.Len(t, activity.Days, 7)
	assert.Equal(t, 3, activity.Total)
	assert.InDelta(t, 3.0/7.0, activity.AvgPerDay, 0.001)

	// Days run oldest to newest; today is the last bucket.
	assert.Equal(t, 2, activity.Days[6].Games)
	assert.Equal(t, 1, activity.Days[4].Games)
	assert.Equal(t, 0, activity.Days[0].Games)
}

func TestActivityEmptyWindow(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)

	handler := NewGetActivityHandler(accounts, newFakeMatchRepo())

	activity, err := handler.Handle(context.Background(), GetActivityQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Zero(t, activity.Total)
	require.Len(t, activity.Days, 7)
	for _, day := range activity.Days {
		assert.Zero(t, day.Games)
	}
}

func TestRoleStatsSplitsCoreAndSupport(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)
	matches.roleStats = []match.RoleStat{
		{Role: match.RoleCore, Games: 20, Wins: 12},
		{Role: match.RoleSupport, Games: 10, Wins: 4},
	}

	handler := NewGetRoleStatsHandler(accounts, matches)

	stats, err := handler.Handle(context.Background(), GetRoleStatsQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Equal(t, 20, stats.Core.Games)
	assert.Equal(t, 60.0, stats.Core.WinRate)
	assert.Equal(t, 10, stats.Support.Games)
	assert.Equal(t, 40.0, stats.Support.WinRate)
}

func TestRoleStatsWithoutHistory(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)

	handler := NewGetRoleStatsHandler(accounts, newFakeMatchRepo())

	stats, err := handler.Handle(context.Background(), GetRoleStatsQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Zero(t, stats.Core.Games)
	assert.Zero(t, stats.Support.Games)
	assert.Equal(t, match.RoleCore, stats.Core.Role)
}
