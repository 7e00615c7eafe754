package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

func boundAccount(t *testing.T, telegramID int64) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.NewAccountParams{
		TelegramID: account.TelegramID(telegramID),
		SteamID:    86745912,
	})
	require.NoError(t, err)
	return acc
}

func TestSetRatingPinsExactValue(t *testing.T) {
	repo := newFakeAccountRepo()
	bus := &fakeEventBus{}
	acc := boundAccount(t, 555)
	require.NoError(t, repo.Upsert(context.Background(), acc))

	handler := NewSetRatingHandler(repo, &fakeAccountCache{}, bus, nil, DefaultSetRatingConfig())

	result, err := handler.Handle(context.Background(), SetRatingCommand{
		TelegramID: 555,
		Rating:     4340,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.OldRating)
	assert.Equal(t, 4340, result.NewRating)
	assert.Equal(t, 4340, result.MaxRating)

	saved, _ := repo.GetByTelegramID(context.Background(), 555)
	rating, ok := saved.EffectiveRating()
	assert.True(t, ok)
	assert.Equal(t, 4340, rating)

	events := bus.ofType(shared.EventRatingManualSet)
	require.Len(t, events, 1)
	set := events[0].(shared.RatingManualSetEvent)
	assert.Equal(t, 4340, set.NewRating)
}

func TestSetRatingKeepsMaxHighWaterMark(t *testing.T) {
	repo := newFakeAccountRepo()
	acc := boundAccount(t, 555)
	require.NoError(t, acc.SetManualRating(5000))
	require.NoError(t, repo.Upsert(context.Background(), acc))

	handler := NewSetRatingHandler(repo, &fakeAccountCache{}, &fakeEventBus{}, nil, DefaultSetRatingConfig())

	result, err := handler.Handle(context.Background(), SetRatingCommand{
		TelegramID: 555,
		Rating:     4000,
	})

	require.NoError(t, err)
	assert.Equal(t, 4000, result.NewRating)
	assert.Equal(t, 5000, result.MaxRating)
}

func TestSetRatingRejectsOutOfRange(t *testing.T) {
	repo := newFakeAccountRepo()
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))

	handler := NewSetRatingHandler(repo, &fakeAccountCache{}, &fakeEventBus{}, nil, DefaultSetRatingConfig())

	_, err := handler.Handle(context.Background(), SetRatingCommand{
		TelegramID: 555,
		Rating:     -5,
	})

	assert.ErrorIs(t, err, account.ErrInvalidRating)
}

func TestSetRatingUnknownAccount(t *testing.T) {
	handler := NewSetRatingHandler(newFakeAccountRepo(), &fakeAccountCache{}, &fakeEventBus{}, nil, DefaultSetRatingConfig())

	_, err := handler.Handle(context.Background(), SetRatingCommand{
		TelegramID: 555,
		Rating:     4000,
	})

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
