package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

type linkFixture struct {
	accounts *fakeAccountRepo
	cache    *fakeAccountCache
	matches  *fakeMatchRepo
	profiles *fakeProfiles
	bus      *fakeEventBus
	handler  *LinkAccountHandler
}

func newLinkFixture() *linkFixture {
	f := &linkFixture{
		accounts: newFakeAccountRepo(),
		cache:    &fakeAccountCache{},
		matches:  newFakeMatchRepo(),
		profiles: &fakeProfiles{},
		bus:      &fakeEventBus{},
	}
	f.handler = NewLinkAccountHandler(
		f.accounts, f.cache, f.matches, f.profiles,
		opendota.NewMapper(), f.bus, nil, DefaultLinkAccountConfig(),
	)
	return f
}

func knownPlayer(name string, rankTier int) *opendota.PlayerDTO {
	return &opendota.PlayerDTO{
		Profile:  &opendota.ProfileDTO{AccountID: 86745912, Personaname: name},
		RankTier: rankTier,
	}
}

func recentMatch(matchID int64, lobbyType int) opendota.PlayerMatchDTO {
	return opendota.PlayerMatchDTO{
		MatchID:    matchID,
		PlayerSlot: 1,
		RadiantWin: true,
		StartTime:  1700000000,
		Duration:   2400,
		GameMode:   22,
		LobbyType:  lobbyType,
		HeroID:     14,
		Kills:      8,
		Deaths:     3,
		Assists:    12,
	}
}

func TestLinkAccountBindsAndBackfillsHistory(t *testing.T) {
	f := newLinkFixture()
	f.profiles.player = knownPlayer("Dendi", 54)
	f.profiles.summaries = []opendota.PlayerMatchDTO{
		recentMatch(103, 7),
		recentMatch(102, 0),
		recentMatch(101, 7),
	}

	result, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "86745912",
	})

	require.NoError(t, err)
	assert.Equal(t, account.SteamID(86745912), result.SteamID)
	assert.Equal(t, "Dendi", result.PersonaName)
	assert.Equal(t, account.RankTier(54), result.RankTier)
	assert.False(t, result.Rebound)
	assert.Equal(t, 3, result.Backfilled)

	acc, err := f.accounts.GetByTelegramID(context.Background(), 555)
	require.NoError(t, err)
	// Watermarks point past the backfilled games so the next sync pass
	// does not replay them as notifications.
	assert.Equal(t, int64(103), acc.LastMatchID)
	assert.Equal(t, int64(103), acc.LastRankedMatchID)
	assert.Equal(t, 3, f.matches.upserts)

	// Medal known at bind time, so the rating starts as an estimate.
	rating, ok := acc.EffectiveRating()
	assert.True(t, ok)
	assert.Positive(t, rating)

	assert.Len(t, f.bus.ofType(shared.EventAccountBound), 1)
}

func TestLinkAccountAcceptsProfileURL(t *testing.T) {
	f := newLinkFixture()
	f.profiles.player = knownPlayer("Dendi", 0)

	result, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "https://www.opendota.com/players/86745912",
	})

	require.NoError(t, err)
	assert.Equal(t, account.SteamID(86745912), result.SteamID)
}

func TestLinkAccountRebindResetsState(t *testing.T) {
	f := newLinkFixture()
	f.profiles.player = knownPlayer("Dendi", 54)
	f.profiles.summaries = []opendota.PlayerMatchDTO{recentMatch(101, 7)}

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "86745912",
	})
	require.NoError(t, err)

	acc, _ := f.accounts.GetByTelegramID(context.Background(), 555)
	require.NoError(t, acc.SetManualRating(4000))

	// Same user binds a different game account.
	f.profiles.player = knownPlayer("Smurf", 0)
	f.profiles.summaries = nil

	result, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "123456",
	})

	require.NoError(t, err)
	assert.True(t, result.Rebound)

	acc, _ = f.accounts.GetByTelegramID(context.Background(), 555)
	assert.Equal(t, account.SteamID(123456), acc.SteamID)
	assert.Equal(t, int64(0), acc.LastMatchID)

	// The old account's history is not the new one's.
	_, ok := acc.EffectiveRating()
	assert.False(t, ok)
}

func TestLinkAccountRejectsUnknownProfile(t *testing.T) {
	f := newLinkFixture()
	f.profiles.playerErr = shared.ErrProfileNotFound

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "86745912",
	})

	assert.ErrorIs(t, err, ErrProfileNotVerified)
	count, _ := f.accounts.Count(context.Background())
	assert.Zero(t, count)
}

func TestLinkAccountRejectsWhenUpstreamDegraded(t *testing.T) {
	f := newLinkFixture()
	// The client reports degradation as (nil, nil).
	f.profiles.player = nil

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "86745912",
	})

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestLinkAccountRejectsGarbageInput(t *testing.T) {
	f := newLinkFixture()
	f.profiles.player = knownPlayer("Dendi", 54)

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "not-a-steam-id",
	})

	assert.ErrorIs(t, err, account.ErrInvalidSteamID)
}

func TestLinkAccountSurvivesBackfillFailure(t *testing.T) {
	f := newLinkFixture()
	f.profiles.player = knownPlayer("Dendi", 54)
	f.profiles.fetchErr = errors.New("opendota down")

	result, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		TelegramID: 555,
		Input:      "86745912",
	})

	require.NoError(t, err)
	assert.Zero(t, result.Backfilled)

	acc, err := f.accounts.GetByTelegramID(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.LastMatchID)
}
