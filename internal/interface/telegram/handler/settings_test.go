package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

func TestSettingsHandler_Handle_ShowsToggleStates(t *testing.T) {
	repo := newFakeAccountRepo()
	acc := storedAccount(t, repo, 100)
	acc.Preferences.DailyReport = false
	require.NoError(t, repo.Update(context.Background(), acc))

	h := NewSettingsHandler(repo, nil, nil, nil, nil, presenter.NewKeyboardBuilder())

	resp, err := h.Handle(context.Background(), &Request{TelegramID: 100, MessageID: 7})

	require.NoError(t, err)
	assert.True(t, resp.EditInPlace)
	assert.Contains(t, resp.Text, "🔔 <b>Настройки уведомлений</b>")
	assert.Contains(t, resp.Text, "🃏 Карточки матчей: <b>вкл</b>")
	assert.Contains(t, resp.Text, "🌙 Ежедневный отчёт (23:59 МСК): <b>выкл</b>")
	require.NotNil(t, resp.Keyboard)
	assert.Len(t, resp.Keyboard.Rows, 7)
}

func TestSettingsHandler_Handle_NotBound(t *testing.T) {
	h := NewSettingsHandler(newFakeAccountRepo(), nil, nil, nil, nil, presenter.NewKeyboardBuilder())

	resp, err := h.Handle(context.Background(), &Request{TelegramID: 100})

	require.NoError(t, err)
	assert.Equal(t, notBoundText, resp.Text)
}

func TestToggleUpdates_FlipsSingleField(t *testing.T) {
	prefs := account.DefaultNotificationPreferences()
	prefs.StreakAlerts = false

	updates, err := toggleUpdates(prefs, presenter.ToggleStreakAlerts)

	require.NoError(t, err)
	require.NotNil(t, updates.StreakAlerts)
	assert.True(t, *updates.StreakAlerts)
	assert.Nil(t, updates.MatchCards)
	assert.Nil(t, updates.DailyReport)
	assert.Nil(t, updates.RankAlerts)
}

func TestToggleUpdates_AllKeys(t *testing.T) {
	prefs := account.DefaultNotificationPreferences()

	for _, key := range []string{
		presenter.ToggleMatchCards,
		presenter.ToggleStreakAlerts,
		presenter.ToggleDailyReport,
		presenter.ToggleRankAlerts,
	} {
		updates, err := toggleUpdates(prefs, key)
		require.NoError(t, err, "key %s", key)

		set := 0
		for _, field := range []*bool{
			updates.MatchCards, updates.StreakAlerts, updates.DailyReport, updates.RankAlerts,
		} {
			if field != nil {
				set++
				assert.False(t, *field, "key %s flips an enabled default off", key)
			}
		}
		assert.Equal(t, 1, set, "key %s touches exactly one field", key)
	}
}

func TestToggleUpdates_UnknownKey(t *testing.T) {
	_, err := toggleUpdates(account.DefaultNotificationPreferences(), "volume")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}
