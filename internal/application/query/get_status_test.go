package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

func TestStatusShowsRatingAndLastMatch(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	acc := storedAccount(t, accounts, 555)
	acc.SetPersonaName("Dendi")
	require.NoError(t, acc.SetManualRating(4340))
	storedMatch(t, matches, 101, time.Now().Add(-2*time.Hour), true, true)

	handler := NewGetStatusHandler(accounts, matches)

	status, err := handler.Handle(context.Background(), GetStatusQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Equal(t, "Dendi", status.PersonaName)
	assert.Equal(t, int64(86745912), status.SteamID)
	assert.Equal(t, 4340, status.Rating.Value)
	assert.True(t, status.Rating.IsExact())
	assert.Equal(t, 4340, status.MaxRating)
	assert.Equal(t, 1, status.TotalMatches)
	require.NotNil(t, status.LastMatch)
	assert.Equal(t, int64(101), status.LastMatch.MatchID)
	assert.True(t, status.LastMatch.Won)
}

func TestStatusProgressToNextStar(t *testing.T) {
	accounts := newFakeAccountRepo()
	acc := storedAccount(t, accounts, 555)
	acc.UpdateRankTier(54) // Legend 4, estimate 3200, next border 3400
	require.NoError(t, acc.SetManualRating(3300))

	handler := NewGetStatusHandler(accounts, newFakeMatchRepo())

	status, err := handler.Handle(context.Background(), GetStatusQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Equal(t, "Legend 4", status.RankName)
	require.NotNil(t, status.MMRToNextStar)
	assert.Equal(t, 100, *status.MMRToNextStar)
}

func TestStatusProgressHiddenWithoutExactRating(t *testing.T) {
	accounts := newFakeAccountRepo()
	acc := storedAccount(t, accounts, 555)
	acc.UpdateRankTier(54) // rating becomes an estimate, not exact

	handler := NewGetStatusHandler(accounts, newFakeMatchRepo())

	status, err := handler.Handle(context.Background(), GetStatusQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Nil(t, status.MMRToNextStar)
	assert.True(t, status.Rating.IsSet())
}

func TestStatusWithoutHistory(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)

	handler := NewGetStatusHandler(accounts, newFakeMatchRepo())

	status, err := handler.Handle(context.Background(), GetStatusQuery{TelegramID: 555})

	require.NoError(t, err)
	assert.Nil(t, status.LastMatch)
	assert.Zero(t, status.TotalMatches)
	assert.Equal(t, "Unranked", status.RankName)
}

func TestStatusUnknownAccount(t *testing.T) {
	handler := NewGetStatusHandler(newFakeAccountRepo(), newFakeMatchRepo())

	_, err := handler.Handle(context.Background(), GetStatusQuery{TelegramID: 555})

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
