package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the job tests
// ──────────────────────────────────────────────────────────────────────────────

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[account.TelegramID]*account.Account
	updates  int
}

// cloneAccount detaches the stored state from the caller's pointer, the way
// a real row scan would. Without it a job mutating the entity in memory
// looks persisted even when it never called Update.
func cloneAccount(acc *account.Account) *account.Account {
	c := *acc
	return &c
}

func newFakeAccountRepo(accs ...*account.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[account.TelegramID]*account.Account)}
	for _, acc := range accs {
		repo.accounts[acc.TelegramID] = cloneAccount(acc)
	}
	return repo
}

func (r *fakeAccountRepo) Upsert(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[acc.TelegramID] = cloneAccount(acc)
	return nil
}

func (r *fakeAccountRepo) GetByTelegramID(_ context.Context, id account.TelegramID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return cloneAccount(acc), nil
}

func (r *fakeAccountRepo) GetBySteamID(_ context.Context, steamID account.SteamID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.SteamID == steamID {
			return cloneAccount(acc), nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acc.TelegramID]; !ok {
		return account.ErrAccountNotFound
	}
	r.accounts[acc.TelegramID] = cloneAccount(acc)
	r.updates++
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id account.TelegramID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) GetAll(_ context.Context) ([]*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*account.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		all = append(all, cloneAccount(acc))
	}
	sort.Slice(all, func(a, b int) bool { return all[a].TelegramID < all[b].TelegramID })
	return all, nil
}

func (r *fakeAccountRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts), nil
}

func (r *fakeAccountRepo) ExistsByTelegramID(_ context.Context, id account.TelegramID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[id]
	return ok, nil
}

type fakeAccountCache struct {
	mu      sync.Mutex
	deletes int
}

func (c *fakeAccountCache) Get(context.Context, account.TelegramID) (*account.Account, error) {
	return nil, account.ErrAccountNotFound
}

func (c *fakeAccountCache) Set(context.Context, *account.Account, time.Duration) error {
	return nil
}

func (c *fakeAccountCache) Delete(context.Context, account.TelegramID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	return nil
}

func (c *fakeAccountCache) InvalidateAll(context.Context) error { return nil }

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[int64]*match.Match
	upserts   int
	upsertErr map[int64]error // fail storing these match ids
}

func newFakeMatchRepo(ms ...*match.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[int64]*match.Match)}
	for _, m := range ms {
		repo.matches[m.MatchID.Int64()] = m
	}
	return repo
}

func (r *fakeMatchRepo) failUpsert(matchID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr == nil {
		r.upsertErr = make(map[int64]error)
	}
	r.upsertErr[matchID] = err
}

func (r *fakeMatchRepo) clearUpsertErr() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertErr = nil
}

func (r *fakeMatchRepo) Upsert(_ context.Context, m *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.upsertErr[m.MatchID.Int64()]; err != nil {
		return err
	}
	r.matches[m.MatchID.Int64()] = m
	r.upserts++
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ match.SteamID, matchID match.MatchID) (*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID.Int64()]
	if !ok {
		return nil, match.ErrMatchNotFound
	}
	return m, nil
}

// newestFirst returns all stored matches from newest to oldest. Match IDs
// grow over time, so they double as a chronological order in tests.
func (r *fakeMatchRepo) newestFirst() []*match.Match {
	all := make([]*match.Match, 0, len(r.matches))
	for _, m := range r.matches {
		all = append(all, m)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].MatchID > all[b].MatchID })
	return all
}

func (r *fakeMatchRepo) ListRecent(_ context.Context, _ match.SteamID, limit int) ([]*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeMatchRepo) ListRecentRanked(_ context.Context, _ match.SteamID, limit int) ([]*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ranked := make([]*match.Match, 0)
	for _, m := range r.newestFirst() {
		if m.IsRanked() {
			ranked = append(ranked, m)
		}
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *fakeMatchRepo) ListInRange(_ context.Context, _ match.SteamID, from, to time.Time) ([]*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inRange := make([]*match.Match, 0)
	for _, m := range r.newestFirst() {
		if !m.StartTime.Before(from) && !m.StartTime.After(to) {
			inRange = append(inRange, m)
		}
	}
	return inRange, nil
}

func (r *fakeMatchRepo) SumRankedDeltas(_ context.Context, _ match.SteamID, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, m := range r.matches {
		if !m.IsRanked() || m.RatingDelta == nil {
			continue
		}
		if !m.StartTime.Before(from) && !m.StartTime.After(to) {
			sum += *m.RatingDelta
		}
	}
	return sum, nil
}

func (r *fakeMatchRepo) RoleStats(context.Context, match.SteamID) ([]match.RoleStat, error) {
	return nil, nil
}

func (r *fakeMatchRepo) HeroAggregates(context.Context, match.SteamID) ([]match.HeroAggregate, error) {
	return nil, nil
}

func (r *fakeMatchRepo) Count(context.Context, match.SteamID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches), nil
}

type fakeSource struct {
	mu        sync.Mutex
	summaries []opendota.PlayerMatchDTO
	detail    *opendota.MatchDetailDTO
	player    *opendota.PlayerDTO
	heroes    []opendota.HeroDTO
	modes     opendota.GameModeTable
	err       error
}

func (s *fakeSource) Matches(_ context.Context, _ int64, limit int) ([]opendota.PlayerMatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.summaries) > limit {
		return s.summaries[:limit], nil
	}
	return s.summaries, nil
}

func (s *fakeSource) MatchDetail(context.Context, int64) (*opendota.MatchDetailDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail, nil
}

func (s *fakeSource) Player(context.Context, int64) (*opendota.PlayerDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player, nil
}

func (s *fakeSource) Heroes(context.Context) ([]opendota.HeroDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.heroes, nil
}

func (s *fakeSource) GameModes(context.Context) (opendota.GameModeTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.modes, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (n *fakeNotifier) Send(_ context.Context, msg *notification.Notification) notification.DeliveryResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	msg.MarkSent()
	return notification.NewSuccessResult(notification.ChannelTypeTelegram, "1")
}

// byType returns the sent notifications of one type, in send order.
func (n *fakeNotifier) byType(typ notification.Type) []*notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*notification.Notification, 0)
	for _, msg := range n.sent {
		if msg.Type == typ {
			out = append(out, msg)
		}
	}
	return out
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (b *fakeEventBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

// ofType returns the published events of one type, in publish order.
func (b *fakeEventBus) ofType(typ shared.EventType) []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shared.Event, 0)
	for _, e := range b.events {
		if e.EventType() == typ {
			out = append(out, e)
		}
	}
	return out
}

type fakeDictionary struct {
	tables map[string]map[int]string
}

func (d *fakeDictionary) Lookup(_ context.Context, name string, id int) (string, error) {
	if table, ok := d.tables[name]; ok {
		if value, ok := table[id]; ok {
			return value, nil
		}
	}
	return "", nil
}

type fakeDictionaryStore struct {
	mu     sync.Mutex
	tables map[string]map[int]string
}

func (d *fakeDictionaryStore) Put(_ context.Context, name string, entries map[int]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables == nil {
		d.tables = make(map[string]map[int]string)
	}
	d.tables[name] = entries
	return nil
}
