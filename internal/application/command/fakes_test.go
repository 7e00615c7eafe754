package command

import (
	"context"
	"sort"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ─────────────────────────────────────────────────────────────────────────────
// Account repository fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeAccountRepo struct {
	accounts map[account.TelegramID]*account.Account
	updates  int
	deletes  int
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
	r.updates++
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id account.TelegramID) error {
	if _, ok := r.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.accounts, id)
	r.deletes++
	return nil
}

func (r *fakeAccountRepo) GetAll(_ context.Context) ([]*account.Account, error) {
	all := make([]*account.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TelegramID < all[j].TelegramID })
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
// Account cache fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeAccountCache struct {
	deletes int
}

func (c *fakeAccountCache) Get(_ context.Context, _ account.TelegramID) (*account.Account, error) {
	return nil, account.ErrAccountNotFound
}

func (c *fakeAccountCache) Set(_ context.Context, _ *account.Account, _ time.Duration) error {
	return nil
}

func (c *fakeAccountCache) Delete(_ context.Context, _ account.TelegramID) error {
	c.deletes++
	return nil
}

func (c *fakeAccountCache) InvalidateAll(_ context.Context) error {
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Match repository fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeMatchRepo struct {
	matches map[int64]*match.Match
	upserts int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int64]*match.Match)}
}

func (r *fakeMatchRepo) Upsert(_ context.Context, m *match.Match) error {
	r.matches[m.MatchID.Int64()] = m
	r.upserts++
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
	return nil, nil
}

func (r *fakeMatchRepo) HeroAggregates(_ context.Context, _ match.SteamID) ([]match.HeroAggregate, error) {
	return nil, nil
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
// Profile source fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeProfiles struct {
	player    *opendota.PlayerDTO
	playerErr error
	summaries []opendota.PlayerMatchDTO
	fetchErr  error
}

func (s *fakeProfiles) Player(_ context.Context, _ int64) (*opendota.PlayerDTO, error) {
	return s.player, s.playerErr
}

func (s *fakeProfiles) Matches(_ context.Context, _ int64, limit int) ([]opendota.PlayerMatchDTO, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.summaries) > limit {
		return s.summaries[:limit], nil
	}
	return s.summaries, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Event bus fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeEventBus struct {
	published []shared.Event
}

func (b *fakeEventBus) Publish(event shared.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeEventBus) ofType(t shared.EventType) []shared.Event {
	out := make([]shared.Event, 0)
	for _, e := range b.published {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
