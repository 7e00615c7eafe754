package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainMenuLayout(t *testing.T) {
	kb := NewKeyboardBuilder().MainMenuKeyboard(true)

	require.Len(t, kb.Rows, 6)
	assert.Equal(t, CallbackStatus, kb.Rows[0][0].CallbackData)
	assert.Equal(t, CallbackLastGames, kb.Rows[0][1].CallbackData)
	assert.Equal(t, CallbackHeroesMenu, kb.Rows[1][0].CallbackData)
	assert.Equal(t, CallbackActivity, kb.Rows[1][1].CallbackData)
	assert.Equal(t, CallbackRatingTrend, kb.Rows[2][0].CallbackData)
	assert.Equal(t, CallbackRoleWinRate, kb.Rows[2][1].CallbackData)
	assert.Equal(t, CallbackBind, kb.Rows[3][0].CallbackData)
	assert.Equal(t, CallbackSetRating, kb.Rows[4][0].CallbackData)
	assert.Equal(t, CallbackSettings, kb.Rows[5][0].CallbackData)
}

func TestMainMenuSetRatingIconDependsOnBinding(t *testing.T) {
	builder := NewKeyboardBuilder()

	bound := builder.MainMenuKeyboard(true)
	assert.Equal(t, "🔁 Указать точный MMR", bound.Rows[4][0].Text)

	unbound := builder.MainMenuKeyboard(false)
	assert.Equal(t, "🔗 Указать точный MMR", unbound.Rows[4][0].Text)
}

func TestMatchListKeyboardToggle(t *testing.T) {
	builder := NewKeyboardBuilder()

	all := builder.MatchListKeyboard(false)
	assert.Equal(t, "🏆 Только рейтинговые", all.Rows[0][0].Text)
	assert.Equal(t, CallbackLastRanked, all.Rows[0][0].CallbackData)

	ranked := builder.MatchListKeyboard(true)
	assert.Equal(t, "🎮 Все режимы", ranked.Rows[0][0].Text)
	assert.Equal(t, CallbackLastGames, ranked.Rows[0][0].CallbackData)

	assert.Equal(t, CallbackBackMain, all.Rows[1][0].CallbackData)
}

func TestHeroesMenuKeyboard(t *testing.T) {
	kb := NewKeyboardBuilder().HeroesMenuKeyboard()

	require.Len(t, kb.Rows, 3)
	assert.Equal(t, CallbackHeroesGames, kb.Rows[0][0].CallbackData)
	assert.Equal(t, CallbackHeroesWinRate, kb.Rows[0][1].CallbackData)
	assert.Equal(t, CallbackHeroesKDA, kb.Rows[1][0].CallbackData)
	assert.Equal(t, CallbackHeroAnalytics, kb.Rows[1][1].CallbackData)
	assert.Equal(t, CallbackBackMain, kb.Rows[2][0].CallbackData)
}

func TestSettingsKeyboardToggleStates(t *testing.T) {
	kb := NewKeyboardBuilder().SettingsKeyboard(true, false, true, false)

	require.Len(t, kb.Rows, 7)
	assert.Equal(t, "✅ Карточки матчей", kb.Rows[0][0].Text)
	assert.Equal(t, "❌ Серии побед и поражений", kb.Rows[1][0].Text)
	assert.Equal(t, "✅ Вечерние итоги дня", kb.Rows[2][0].Text)
	assert.Equal(t, "❌ Смена медали", kb.Rows[3][0].Text)

	assert.Equal(t, CallbackSettingsToggle+ToggleMatchCards, kb.Rows[0][0].CallbackData)
	assert.Equal(t, CallbackSettingsToggle+ToggleRankAlerts, kb.Rows[3][0].CallbackData)
	assert.Equal(t, CallbackEnableAll, kb.Rows[4][0].CallbackData)
	assert.Equal(t, CallbackDisableAll, kb.Rows[4][1].CallbackData)
	assert.Equal(t, CallbackSyncNow, kb.Rows[5][0].CallbackData)
	assert.Equal(t, CallbackUnlink, kb.Rows[6][0].CallbackData)
}
