// Package presenter formats data for Telegram display.
// Presenters handle the conversion from application DTOs to user-friendly
// Telegram messages, keyboards and chart captions.
package presenter

// ══════════════════════════════════════════════════════════════════════════════
// INLINE KEYBOARD TYPES
// These types represent Telegram inline keyboards in a library-agnostic way.
// The interface layer converts them to the wire format before sending.
// ══════════════════════════════════════════════════════════════════════════════

// InlineKeyboard represents an inline keyboard.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton represents a single inline button.
type InlineButton struct {
	// Text is the button text.
	Text string

	// CallbackData is the callback data (for callback buttons).
	CallbackData string

	// URL is the URL to open (for URL buttons).
	URL string
}

// NewInlineKeyboard creates a new empty inline keyboard.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: make([][]InlineButton, 0),
	}
}

// AddRow adds a row of buttons.
func (k *InlineKeyboard) AddRow(buttons ...InlineButton) *InlineKeyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// CallbackButton creates a callback button.
func CallbackButton(text, callbackData string) InlineButton {
	return InlineButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL button.
func URLButton(text, url string) InlineButton {
	return InlineButton{
		Text: text,
		URL:  url,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK DATA
// Callback identifiers used by the menu. Handlers and keyboards share these
// so a renamed button cannot silently detach from its handler.
// ══════════════════════════════════════════════════════════════════════════════

const (
	CallbackStatus         = "status"
	CallbackLastGames      = "last_games"
	CallbackLastRanked     = "last_ranked"
	CallbackHeroesMenu     = "heroes_menu"
	CallbackHeroesGames    = "heroes_games"
	CallbackHeroesWinRate  = "heroes_wr"
	CallbackHeroesKDA      = "heroes_kda"
	CallbackHeroAnalytics  = "heroes_analytics"
	CallbackActivity       = "activity"
	CallbackRatingTrend    = "mmr_trend"
	CallbackRoleWinRate    = "role_wr"
	CallbackBind           = "bind"
	CallbackSetRating      = "set_mmr"
	CallbackBackMain       = "back_main"
	CallbackSettings       = "settings"
	CallbackSettingsToggle = "settings:toggle:"
	CallbackEnableAll      = "settings:enable_all"
	CallbackDisableAll     = "settings:disable_all"
	CallbackUnlink         = "settings:unlink"
	CallbackSyncNow        = "settings:sync"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD BUILDER
// Builds keyboards for different menu screens.
// ══════════════════════════════════════════════════════════════════════════════

// KeyboardBuilder builds inline keyboards for the bot menus.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// ─────────────────────────────────────────────────────────────────────────────
// MAIN MENU
// ─────────────────────────────────────────────────────────────────────────────

// MainMenuKeyboard creates the main menu keyboard. The set-rating button
// changes its icon depending on whether a Steam account is already bound.
func (b *KeyboardBuilder) MainMenuKeyboard(bound bool) *InlineKeyboard {
	kb := NewInlineKeyboard().
		AddRow(
			CallbackButton("🏆 Статус", CallbackStatus),
			CallbackButton("🎮 Последние матчи", CallbackLastGames),
		).
		AddRow(
			CallbackButton("🧙 Герои", CallbackHeroesMenu),
			CallbackButton("📈 Активность", CallbackActivity),
		).
		AddRow(
			CallbackButton("📉 Тренд MMR", CallbackRatingTrend),
			CallbackButton("🎭 Винрейт по ролям", CallbackRoleWinRate),
		).
		AddRow(
			CallbackButton("⚙ Привязать / Сменить Steam", CallbackBind),
		)

	setRatingText := "🔗 Указать точный MMR"
	if bound {
		setRatingText = "🔁 Указать точный MMR"
	}
	kb.AddRow(CallbackButton(setRatingText, CallbackSetRating))
	kb.AddRow(CallbackButton("🔔 Настройки уведомлений", CallbackSettings))

	return kb
}

// ─────────────────────────────────────────────────────────────────────────────
// MATCH LIST
// ─────────────────────────────────────────────────────────────────────────────

// MatchListKeyboard creates the keyboard under a match list, allowing to
// switch between the all-modes and ranked-only slices.
func (b *KeyboardBuilder) MatchListKeyboard(rankedOnly bool) *InlineKeyboard {
	toggle := CallbackButton("🏆 Только рейтинговые", CallbackLastRanked)
	if rankedOnly {
		toggle = CallbackButton("🎮 Все режимы", CallbackLastGames)
	}

	return NewInlineKeyboard().
		AddRow(toggle).
		AddRow(CallbackButton("⬅ Назад", CallbackBackMain))
}

// ─────────────────────────────────────────────────────────────────────────────
// HEROES MENU
// ─────────────────────────────────────────────────────────────────────────────

// HeroesMenuKeyboard creates the hero boards sub-menu.
func (b *KeyboardBuilder) HeroesMenuKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("🔝 По играм", CallbackHeroesGames),
			CallbackButton("✅ По WR", CallbackHeroesWinRate),
		).
		AddRow(
			CallbackButton("⚔ По KDA", CallbackHeroesKDA),
			CallbackButton("🧠 Аналитика героев", CallbackHeroAnalytics),
		).
		AddRow(CallbackButton("⬅ Назад", CallbackBackMain))
}

// ─────────────────────────────────────────────────────────────────────────────
// SETTINGS
// ─────────────────────────────────────────────────────────────────────────────

// SettingsToggles maps toggle keys in callback data to preference fields.
const (
	ToggleMatchCards   = "match_cards"
	ToggleStreakAlerts = "streak_alerts"
	ToggleDailyReport  = "daily_report"
	ToggleRankAlerts   = "rank_alerts"
)

// SettingsKeyboard creates the notification settings keyboard.
func (b *KeyboardBuilder) SettingsKeyboard(matchCards, streakAlerts, dailyReport, rankAlerts bool) *InlineKeyboard {
	kb := NewInlineKeyboard()

	kb.AddRow(CallbackButton(toggleLabel("Карточки матчей", matchCards), CallbackSettingsToggle+ToggleMatchCards))
	kb.AddRow(CallbackButton(toggleLabel("Серии побед и поражений", streakAlerts), CallbackSettingsToggle+ToggleStreakAlerts))
	kb.AddRow(CallbackButton(toggleLabel("Вечерние итоги дня", dailyReport), CallbackSettingsToggle+ToggleDailyReport))
	kb.AddRow(CallbackButton(toggleLabel("Смена медали", rankAlerts), CallbackSettingsToggle+ToggleRankAlerts))

	kb.AddRow(
		CallbackButton("🔔 Вкл. все", CallbackEnableAll),
		CallbackButton("🔕 Выкл. все", CallbackDisableAll),
	)
	kb.AddRow(
		CallbackButton("🔄 Синхронизировать сейчас", CallbackSyncNow),
	)
	kb.AddRow(
		CallbackButton("🗑 Отвязать Steam", CallbackUnlink),
		CallbackButton("⬅ Назад", CallbackBackMain),
	)

	return kb
}

func toggleLabel(name string, enabled bool) string {
	if enabled {
		return "✅ " + name
	}
	return "❌ " + name
}
