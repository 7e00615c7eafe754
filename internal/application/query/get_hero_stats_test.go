package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

func heroCareer(heroID string, games, wins, kills, deaths, assists int) opendota.PlayerHeroDTO {
	return opendota.PlayerHeroDTO{
		HeroID:  heroID,
		Games:   games,
		Win:     wins,
		Kills:   kills,
		Deaths:  deaths,
		Assists: assists,
	}
}

func TestHeroBoardByGames(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)
	source := &fakeHeroSource{heroes: []opendota.PlayerHeroDTO{
		heroCareer("1", 5, 3, 40, 20, 50),
		heroCareer("14", 50, 30, 400, 150, 500),
		heroCareer("99", 0, 0, 0, 0, 0), // never played, dropped
	}}

	handler := NewGetHeroStatsHandler(accounts, source)

	board, err := handler.Handle(context.Background(), GetHeroStatsQuery{
		TelegramID: 555,
		Board:      HeroBoardGames,
	})

	require.NoError(t, err)
	require.Len(t, board.Lines, 2)
	assert.Equal(t, 14, board.Lines[0].HeroID)
	assert.Equal(t, 50, board.Lines[0].Games)
	assert.Equal(t, 60.0, board.Lines[0].WinRate)
	assert.Equal(t, 6.0, board.Lines[0].KDA)
}

func TestHeroBoardByWinRateRequiresTenGames(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)
	source := &fakeHeroSource{heroes: []opendota.PlayerHeroDTO{
		heroCareer("1", 9, 9, 90, 30, 90),    // 100% WR but below the floor
		heroCareer("14", 20, 14, 160, 60, 200),
		heroCareer("25", 30, 15, 240, 90, 300),
	}}

	handler := NewGetHeroStatsHandler(accounts, source)

	board, err := handler.Handle(context.Background(), GetHeroStatsQuery{
		TelegramID: 555,
		Board:      HeroBoardWinRate,
	})

	require.NoError(t, err)
	require.Len(t, board.Lines, 2)
	assert.Equal(t, 14, board.Lines[0].HeroID) // 70% beats 50%
	assert.Equal(t, 25, board.Lines[1].HeroID)
}

func TestHeroBoardByKDA(t *testing.T) {
	accounts := newFakeAccountRepo()
	storedAccount(t, accounts, 555)
	source := &fakeHeroSource{heroes: []opendota.PlayerHeroDTO{
		heroCareer("14", 20, 10, 100, 100, 100), // KDA 2.0
		heroCareer("25", 20, 10, 300, 100, 300), // KDA 6.0
	}}

	handler := NewGetHeroStatsHandler(accounts, source)

	board, err := handler.Handle(context.Background(), GetHeroStatsQuery{
		TelegramID: 555,
		Board:      HeroBoardKDA,
	})

	require.NoError(t, err)
	require.Len(t, board.Lines, 2)
	assert.Equal(t, 25, board.Lines[0].HeroID)
	assert.Equal(t, 6.0, board.Lines[0].KDA)
}

func TestHeroBoardRejectsUnknownKind(t *testing.T) {
	handler := NewGetHeroStatsHandler(newFakeAccountRepo(), &fakeHeroSource{})

	_, err := handler.Handle(context.Background(), GetHeroStatsQuery{
		TelegramID: 555,
		Board:      HeroBoard("best"),
	})

	assert.Error(t, err)
}

func TestHeroAnalyticsAppliesFloorsSeparately(t *testing.T) {
	accounts := newFakeAccountRepo()
	matches := newFakeMatchRepo()
	storedAccount(t, accounts, 555)
	matches.aggregates = []match.HeroAggregate{
		{HeroID: 14, Games: 12, Wins: 9, AvgNetWorth: 18000},
		{HeroID: 25, Games: 7, Wins: 5, AvgNetWorth: 25000},
		{HeroID: 1, Games: 3, Wins: 3, AvgNetWorth: 30000},
	}

	handler := NewGetHeroAnalyticsHandler(accounts, matches)

	analytics, err := handler.Handle(context.Background(), GetHeroAnalyticsQuery{TelegramID: 555})

	require.NoError(t, err)

	// WR board needs 10 games, so only hero 14 passes.
	require.Len(t, analytics.ByWinRate, 1)
	assert.Equal(t, 14, analytics.ByWinRate[0].HeroID)
	assert.Equal(t, 75.0, analytics.ByWinRate[0].WinRate)

	// Net-worth board needs 5 games: heroes 25 and 14, richest first.
	require.Len(t, analytics.ByNetWorth, 2)
	assert.Equal(t, 25, analytics.ByNetWorth[0].HeroID)
	assert.Equal(t, 14, analytics.ByNetWorth[1].HeroID)
}
