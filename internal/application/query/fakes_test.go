package query

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ─────────────────────────────────────────────────────────────────────────────
// Account repository fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeAccountRepo struct {
	accounts map[account.TelegramID]*account.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[account.TelegramID]*account.Account)}
}

func (r *fakeAccountRepo) Upsert(_ context.Context, acc *account.Account) error {
	r.accounts[acc.TelegramID] = acc
	return nil
}

func (r *fakeAccountRepo) GetByTelegramID(_ context.Context, id account.TelegramID) (*account.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return acc, nil
}

func (r *fakeAccountRepo) GetBySteamID(_ context.Context, steamID account.SteamID) (*account.Account, error) {
	for _, acc := range r.accounts {
		if acc.SteamID == steamID {
			return acc, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, acc *account.Account) error {
	if _, ok := r.accounts[acc.TelegramID]; !ok {
		return account.ErrAccountNotFound
	}
	r.accounts[acc.TelegramID] = acc
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id account.TelegramID) error {
	if _, ok := r.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) GetAll(_ context.Context) ([]*account.Account, error) {
	all := make([]*account.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		all = append(all, acc)
	}
	return all, nil
}

func (r *fakeAccountRepo) Count(_ context.Context) (int, error) {
	return len(r.accounts), nil
}

func (r *fakeAccountRepo) ExistsByTelegramID(_ context.Context, id account.TelegramID) (bool, error) {
	_, ok := r.accounts[id]
	return ok, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Match repository fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeMatchRepo struct {
	matches    map[int64]*match.Match
	roleStats  []match.RoleStat
	aggregates []match.HeroAggregate
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int64]*match.Match)}
}

func (r *fakeMatchRepo) Upsert(_ context.Context, m *match.Match) error {
	r.matches[m.MatchID.Int64()] = m
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ match.SteamID, matchID match.MatchID) (*match.Match, error) {
	m, ok := r.matches[matchID.Int64()]
	if !ok {
		return nil, match.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) ListRecent(_ context.Context, _ match.SteamID, limit int) ([]*match.Match, error) {
	all := r.newestFirst()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeMatchRepo) ListRecentRanked(_ context.Context, _ match.SteamID, limit int) ([]*match.Match, error) {
	ranked := make([]*match.Match, 0)
	for _, m := range r.newestFirst() {
		if m.IsRanked() {
			ranked = append(ranked, m)
		}
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *fakeMatchRepo) ListInRange(_ context.Context, _ match.SteamID, from, to time.Time) ([]*match.Match, error) {
	out := make([]*match.Match, 0)
	for _, m := range r.newestFirst() {
		if !m.StartTime.Before(from) && !m.StartTime.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) SumRankedDeltas(_ context.Context, _ match.SteamID, from, to time.Time) (int, error) {
	sum := 0
	for _, m := range r.matches {
		if m.IsRanked() && m.RatingDelta != nil && !m.StartTime.Before(from) && !m.StartTime.After(to) {
			sum += *m.RatingDelta
		}
	}
	return sum, nil
}

func (r *fakeMatchRepo) RoleStats(_ context.Context, _ match.SteamID) ([]match.RoleStat, error) {
	return r.roleStats, nil
}

func (r *fakeMatchRepo) HeroAggregates(_ context.Context, _ match.SteamID) ([]match.HeroAggregate, error) {
	return r.aggregates, nil
}

func (r *fakeMatchRepo) Count(_ context.Context, _ match.SteamID) (int, error) {
	return len(r.matches), nil
}

func (r *fakeMatchRepo) newestFirst() []*match.Match {
	all := make([]*match.Match, 0, len(r.matches))
	for _, m := range r.matches {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].MatchID > all[j].MatchID })
	return all
}

// ─────────────────────────────────────────────────────────────────────────────
// Hero source fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeHeroSource struct {
	heroes []opendota.PlayerHeroDTO
	err    error
}

func (s *fakeHeroSource) PlayerHeroes(_ context.Context, _ int64) ([]opendota.PlayerHeroDTO, error) {
	return s.heroes, s.err
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func storedAccount(t *testing.T, repo *fakeAccountRepo, telegramID int64) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.NewAccountParams{
		TelegramID: account.TelegramID(telegramID),
		SteamID:    86745912,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), acc))
	return acc
}

func storedMatch(t *testing.T, repo *fakeMatchRepo, matchID int64, startTime time.Time, won, ranked bool) *match.Match {
	t.Helper()
	lobby := match.LobbyUnranked
	if ranked {
		lobby = match.LobbyRanked
	}
	slot := 1
	if !won {
		slot = 130 // dire slot, radiant wins below
	}
	m, err := match.NewMatch(match.NewMatchParams{
		SteamID:    86745912,
		MatchID:    match.MatchID(matchID),
		StartTime:  startTime,
		Duration:   2400,
		HeroID:     14,
		Kills:      8,
		Deaths:     3,
		Assists:    12,
		LobbyType:  lobby,
		GameMode:   22,
		RadiantWin: true,
		PlayerSlot: slot,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), m))
	return m
}
