package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentMatchesNewestFirstWithDeltas(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)

	now := time.Now()
	storedMatch(t, matches, 101, now.Add(-3*time.Hour), true, false)
	ranked := storedMatch(t, matches, 102, now.Add(-2*time.Hour), true, true)
	ranked.ApplyRating(30, 4030)
	storedMatch(t, matches, 103, now.Add(-1*time.Hour), false, false)

	handler := NewGetRecentMatchesHandler(accounts, matches)

	result, err := handler.Handle(context.Background(), GetRecentMatchesQuery{TelegramID: 555})

	require.NoError(t, err)
	require.Len(t, result.Matches, 3)
	assert.Equal(t, int64(103), result.Matches[0].MatchID)
	assert.Equal(t, int64(101), result.Matches[2].MatchID)

	line := result.Matches[1]
	assert.True(t, line.Ranked)
	require.NotNil(t, line.RatingDelta)
	assert.Equal(t, 30, *line.RatingDelta)
	require.NotNil(t, line.RatingAfter)
	assert.Equal(t, 4030, *line.RatingAfter)

	assert.Nil(t, result.Matches[0].RatingDelta)
	assert.InDelta(t, 6.67, line.KDA, 0.01)
}

func TestRecentMatchesRankedOnly(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)

	now := time.Now()
	storedMatch(t, matches, 101, now.Add(-3*time.Hour), true, false)
	storedMatch(t, matches, 102, now.Add(-2*time.Hour), false, true)

	handler := NewGetRecentMatchesHandler(accounts, matches)

	result, err := handler.Handle(context.Background(), GetRecentMatchesQuery{
		TelegramID: 555,
		RankedOnly: true,
	})

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, int64(102), result.Matches[0].MatchID)
	assert.False(t, result.Matches[0].Won)
	assert.True(t, result.RankedOnly)
}

func TestRecentMatchesDefaultLimitIsTen(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)

	now := time.Now()
	for i := int64(1); i <= 15; i++ {
		storedMatch(t, matches, 100+i, now.Add(-time.Duration(i)*time.Hour), true, false)
	}

	handler := NewGetRecentMatchesHandler(accounts, matches)

	result, err := handler.Handle(context.Background(), GetRecentMatchesQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Len(t, result.Matches, 10)
	assert.Equal(t, int64(115), result.Matches[0].MatchID)
}
