package handler

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
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
// Dictionary source fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeDictionarySource struct {
	dicts map[string]map[int]string
	err   error
}

func (s *fakeDictionarySource) GetAll(_ context.Context, name string) (map[int]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.dicts[name], nil
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
