package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

func TestUpdatePreferencesTogglesOnlyRequestedFields(t *testing.T) {
	repo := newFakeAccountRepo()
	cache := &fakeAccountCache{}
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))

	handler := NewUpdatePreferencesHandler(repo, cache)

	off := false
	result, err := handler.Handle(context.Background(), UpdatePreferencesCommand{
		TelegramID:  555,
		Preferences: PreferenceUpdates{MatchCards: &off, StreakAlerts: &off},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"match_cards", "streak_alerts"}, result.ChangedFields)
	assert.False(t, result.UpdatedPreferences.MatchCards)
	assert.False(t, result.UpdatedPreferences.StreakAlerts)
	assert.True(t, result.UpdatedPreferences.DailyReport)
	assert.True(t, result.UpdatedPreferences.RankAlerts)

	saved, _ := repo.GetByTelegramID(context.Background(), 555)
	assert.False(t, saved.CanReceiveNotification(account.NotificationMatchCard))
	assert.True(t, saved.CanReceiveNotification(account.NotificationDailyReport))
	assert.Equal(t, 1, cache.deletes)
}

func TestUpdatePreferencesNoopSkipsSave(t *testing.T) {
	repo := newFakeAccountRepo()
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))

	handler := NewUpdatePreferencesHandler(repo, &fakeAccountCache{})

	on := true // already the default
	result, err := handler.Handle(context.Background(), UpdatePreferencesCommand{
		TelegramID:  555,
		Preferences: PreferenceUpdates{MatchCards: &on},
	})

	require.NoError(t, err)
	assert.Empty(t, result.ChangedFields)
	assert.Zero(t, repo.updates)
}

func TestPresetDisableAllMutesEverything(t *testing.T) {
	repo := newFakeAccountRepo()
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))

	presets := NewPresetPreferencesHandler(NewUpdatePreferencesHandler(repo, &fakeAccountCache{}))

	result, err := presets.HandleDisableAll(context.Background(), DisableAllNotificationsCommand{TelegramID: 555})

	require.NoError(t, err)
	assert.Len(t, result.ChangedFields, 4)

	saved, _ := repo.GetByTelegramID(context.Background(), 555)
	assert.False(t, saved.Preferences.MatchCards)
	assert.False(t, saved.Preferences.StreakAlerts)
	assert.False(t, saved.Preferences.DailyReport)
	assert.False(t, saved.Preferences.RankAlerts)
}

func TestUnlinkAccountRemovesBind(t *testing.T) {
	repo := newFakeAccountRepo()
	cache := &fakeAccountCache{}
	bus := &fakeEventBus{}
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))

	handler := NewUnlinkAccountHandler(repo, cache, bus, nil)

	result, err := handler.Handle(context.Background(), UnlinkAccountCommand{TelegramID: 555})

	require.NoError(t, err)
	assert.Equal(t, account.SteamID(86745912), result.SteamID)

	_, err = repo.GetByTelegramID(context.Background(), 555)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.Equal(t, 1, cache.deletes)
	assert.Len(t, bus.ofType(shared.EventAccountUnbound), 1)
}

func TestUnlinkAccountWithoutBind(t *testing.T) {
	handler := NewUnlinkAccountHandler(newFakeAccountRepo(), &fakeAccountCache{}, &fakeEventBus{}, nil)

	_, err := handler.Handle(context.Background(), UnlinkAccountCommand{TelegramID: 555})

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

type fakeSyncer struct {
	newMatches int
	err        error
	synced     []int64
}

func (s *fakeSyncer) SyncAccount(_ context.Context, acc *account.Account) (int, error) {
	s.synced = append(s.synced, acc.TelegramID.Int64())
	return s.newMatches, s.err
}

func TestSyncAccountDelegatesToSyncer(t *testing.T) {
	repo := newFakeAccountRepo()
	require.NoError(t, repo.Upsert(context.Background(), boundAccount(t, 555)))
	syncer := &fakeSyncer{newMatches: 2}

	handler := NewSyncAccountHandler(repo, syncer, nil, DefaultSyncAccountConfig())

	result, err := handler.Handle(context.Background(), SyncAccountCommand{TelegramID: 555})

	require.NoError(t, err)
	assert.Equal(t, 2, result.NewMatches)
	assert.Equal(t, []int64{555}, syncer.synced)
}

func TestSyncAccountUnknownAccount(t *testing.T) {
	handler := NewSyncAccountHandler(newFakeAccountRepo(), &fakeSyncer{}, nil, DefaultSyncAccountConfig())

	_, err := handler.Handle(context.Background(), SyncAccountCommand{TelegramID: 555})

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
