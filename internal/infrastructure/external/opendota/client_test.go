package opendota

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	config.RateLimiter = RateLimiterConfig{
		RequestsPerSecond: 1000,
		BurstSize:         100,
		WaitTimeout:       time.Second,
	}
	return NewClient(config, NewMemoryCache()), server
}

func TestPlayerDTOParsing(t *testing.T) {
	payload := `{
		"profile": {
			"account_id": 111620041,
			"personaname": "Dendi",
			"avatarfull": "https://example.com/a.jpg"
		},
		"rank_tier": 54,
		"leaderboard_rank": 0
	}`

	var dto PlayerDTO
	err := json.Unmarshal([]byte(payload), &dto)

	assert.NoError(t, err)
	assert.True(t, dto.HasProfile())
	assert.Equal(t, int64(111620041), dto.Profile.AccountID)
	assert.Equal(t, "Dendi", dto.Profile.Personaname)
	assert.Equal(t, 54, dto.RankTier)
}

func TestPlayerMatchDTOParsing(t *testing.T) {
	payload := `[{
		"match_id": 7891234567,
		"player_slot": 130,
		"radiant_win": true,
		"start_time": 1756400000,
		"duration": 2345,
		"game_mode": 22,
		"lobby_type": 7,
		"hero_id": 14,
		"kills": 9,
		"deaths": 4,
		"assists": 17
	}]`

	var dtos []PlayerMatchDTO
	err := json.Unmarshal([]byte(payload), &dtos)

	assert.NoError(t, err)
	assert.Len(t, dtos, 1)
	assert.Equal(t, int64(7891234567), dtos[0].MatchID)
	assert.Equal(t, 130, dtos[0].PlayerSlot)
	assert.Equal(t, 7, dtos[0].LobbyType)
}

func TestPlayerHeroDTOParsesStringHeroID(t *testing.T) {
	payload := `[{"hero_id": "14", "games": 40, "win": 25, "last_played": 1756300000}]`

	var dtos []PlayerHeroDTO
	err := json.Unmarshal([]byte(payload), &dtos)

	assert.NoError(t, err)
	assert.Equal(t, 14, dtos[0].HeroIDInt())
	assert.InDelta(t, 62.5, dtos[0].WinRate(), 0.001)
}

func TestGameModeTableParsing(t *testing.T) {
	payload := `{
		"22": {"id": 22, "name": "game_mode_all_draft"},
		"23": {"id": 23, "name": "game_mode_turbo"}
	}`

	table, err := UnmarshalGameModes([]byte(payload))

	assert.NoError(t, err)
	assert.Equal(t, "game_mode_turbo", table["23"].Name)
}

func TestClientCachesPlayerResponses(t *testing.T) {
	var calls atomic.Int64
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"profile": {"account_id": 1, "personaname": "x"}, "rank_tier": 31}`))
	}))

	ctx := context.Background()
	first, err := client.Player(ctx, 1)
	assert.NoError(t, err)
	second, err := client.Player(ctx, 1)
	assert.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load(), "second read must come from cache")
	assert.Equal(t, first.RankTier, second.RankTier)
}

func TestClientMatchDetailBypassesCache(t *testing.T) {
	var calls atomic.Int64
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"match_id": 42, "radiant_win": true, "players": []}`))
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		detail, err := client.MatchDetail(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), detail.MatchID)
	}

	assert.Equal(t, int64(2), calls.Load())
}

func TestClientPlayerNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	dto, err := client.Player(context.Background(), 999)

	assert.Nil(t, dto)
	assert.True(t, errors.Is(err, shared.ErrProfileNotFound))
}

func TestClientPlayerWithoutProfileTreatedAsNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rank_tier": 0}`))
	}))

	dto, err := client.Player(context.Background(), 999)

	assert.Nil(t, dto)
	assert.True(t, errors.Is(err, shared.ErrProfileNotFound))
}

func TestClientDegradesOnServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	dtos, err := client.Matches(context.Background(), 1, 10)

	assert.NoError(t, err, "upstream failures degrade to no data")
	assert.Nil(t, dtos)
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold:  3,
		RecoveryTimeout:   time.Hour,
		HalfOpenMaxProbes: 1,
	})

	for i := 0; i < 3; i++ {
		assert.NoError(t, cb.Allow())
		cb.RecordFailure()
	}

	assert.Equal(t, CircuitOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
}

func TestCircuitBreakerClosesAfterSuccessfulProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold:  1,
		RecoveryTimeout:   time.Millisecond,
		HalfOpenMaxProbes: 1,
	})

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, cb.Allow(), "probe allowed after recovery timeout")
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestMapperMatchFromSummary(t *testing.T) {
	mapper := NewMapper()

	m, err := mapper.MatchFromSummary(111620041, PlayerMatchDTO{
		MatchID:    7891234567,
		PlayerSlot: 2,
		RadiantWin: true,
		StartTime:  1756400000,
		Duration:   2345,
		GameMode:   22,
		LobbyType:  7,
		HeroID:     14,
		Kills:      9,
		Deaths:     0,
		Assists:    17,
	})

	assert.NoError(t, err)
	assert.True(t, m.PlayerWon())
	assert.True(t, m.IsRanked())
	assert.Equal(t, 26.0, m.KDA())
	assert.Equal(t, int64(1756400000), m.StartTime.Unix())
}

func TestMapperRoleSignalsFromDetail(t *testing.T) {
	mapper := NewMapper()
	gpm := 510
	nw := 24800

	detail := &MatchDetailDTO{
		MatchID: 42,
		Players: []MatchPlayerDTO{
			{AccountID: 1, GoldPerMin: &gpm, NetWorth: &nw, PurchaseLog: []PurchaseLogDTO{
				{Key: "bkb"}, {Key: "ward_observer"},
			}},
			{AccountID: 0},
		},
	}

	netWorth, gotGPM, signals, ok := mapper.RoleSignalsFromDetail(detail, 1)
	assert.True(t, ok)
	assert.Equal(t, 24800, *netWorth)
	assert.Equal(t, 510, *gotGPM)
	assert.Equal(t, 510, signals.GPM)
	assert.Equal(t, []string{"bkb", "ward_observer"}, signals.Purchases)

	_, _, _, ok = mapper.RoleSignalsFromDetail(detail, 777)
	assert.False(t, ok, "anonymous player yields no signals")
}

func TestMapperRankTierFromPlayer(t *testing.T) {
	mapper := NewMapper()

	assert.Equal(t, account.RankUnknown, mapper.RankTierFromPlayer(nil))
	assert.Equal(t, account.RankTier(54), mapper.RankTierFromPlayer(&PlayerDTO{RankTier: 54}))
}

func TestMapperDictionaries(t *testing.T) {
	mapper := NewMapper()

	heroes := mapper.HeroNames([]HeroDTO{{ID: 14, LocalizedName: "Pudge"}})
	assert.Equal(t, "Pudge", heroes[14])

	modes := mapper.GameModeNames(GameModeTable{
		"23": {ID: 23, Name: "game_mode_turbo"},
	})
	assert.Equal(t, "game_mode_turbo", modes[23])
}
