package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotapulse/dota-pulse-bot/internal/application/command"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS SCREEN
// Переключатели уведомлений, пресеты, ручная синхронизация и отвязка.
// ══════════════════════════════════════════════════════════════════════════════

// SettingsHandler serves the notification settings screen.
type SettingsHandler struct {
	accountRepo account.Repository
	prefsCmd    *command.UpdatePreferencesHandler
	presetCmd   *command.PresetPreferencesHandler
	unlinkCmd   *command.UnlinkAccountHandler
	syncCmd     *command.SyncAccountHandler
	keyboards   *presenter.KeyboardBuilder
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(
	accountRepo account.Repository,
	prefsCmd *command.UpdatePreferencesHandler,
	presetCmd *command.PresetPreferencesHandler,
	unlinkCmd *command.UnlinkAccountHandler,
	syncCmd *command.SyncAccountHandler,
	keyboards *presenter.KeyboardBuilder,
) *SettingsHandler {
	return &SettingsHandler{
		accountRepo: accountRepo,
		prefsCmd:    prefsCmd,
		presetCmd:   presetCmd,
		unlinkCmd:   unlinkCmd,
		syncCmd:     syncCmd,
		keyboards:   keyboards,
	}
}

// Handle shows the settings screen with current toggle states.
func (h *SettingsHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(req.TelegramID))
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	resp := h.settingsView(acc.Preferences)
	resp.EditInPlace = true
	return resp, nil
}

// HandleToggle flips one notification toggle. The toggle key arrives in
// req.Args (the callback data suffix after "settings:toggle:").
func (h *SettingsHandler) HandleToggle(ctx context.Context, req *Request) (*Response, error) {
	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(req.TelegramID))
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	updates, err := toggleUpdates(acc.Preferences, strings.TrimSpace(req.Args))
	if err != nil {
		return nil, err
	}

	result, err := h.prefsCmd.Handle(ctx, command.UpdatePreferencesCommand{
		TelegramID:  req.TelegramID,
		Preferences: updates,
	})
	if err != nil {
		return nil, err
	}

	resp := h.settingsView(result.UpdatedPreferences)
	resp.EditInPlace = true
	return resp, nil
}

// HandleEnableAll turns every notification on.
func (h *SettingsHandler) HandleEnableAll(ctx context.Context, req *Request) (*Response, error) {
	result, err := h.presetCmd.HandleEnableAll(ctx, command.EnableAllNotificationsCommand{
		TelegramID: req.TelegramID,
	})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	resp := h.settingsView(result.UpdatedPreferences)
	resp.EditInPlace = true
	return resp, nil
}

// HandleDisableAll turns every notification off.
func (h *SettingsHandler) HandleDisableAll(ctx context.Context, req *Request) (*Response, error) {
	result, err := h.presetCmd.HandleDisableAll(ctx, command.DisableAllNotificationsCommand{
		TelegramID: req.TelegramID,
	})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	resp := h.settingsView(result.UpdatedPreferences)
	resp.EditInPlace = true
	return resp, nil
}

// HandleSync triggers an immediate sync pass for the user's account.
func (h *SettingsHandler) HandleSync(ctx context.Context, req *Request) (*Response, error) {
	result, err := h.syncCmd.Handle(ctx, command.SyncAccountCommand{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	text := "🔄 Синхронизация завершена. Новых матчей нет."
	if result.NewMatches > 0 {
		text = fmt.Sprintf("🔄 Синхронизация завершена. Новых матчей: %d.", result.NewMatches)
	}
	return HTML(text, h.keyboards.MainMenuKeyboard(true)), nil
}

// HandleUnlink deletes the Steam binding along with the saved history.
func (h *SettingsHandler) HandleUnlink(ctx context.Context, req *Request) (*Response, error) {
	result, err := h.unlinkCmd.Handle(ctx, command.UnlinkAccountCommand{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	text := fmt.Sprintf("🗑 Steam32 %d отвязан. Уведомления остановлены.", result.SteamID.Int64())
	return HTML(text, h.keyboards.MainMenuKeyboard(false)), nil
}

func (h *SettingsHandler) settingsView(prefs account.NotificationPreferences) *Response {
	var b strings.Builder
	b.WriteString("🔔 <b>Настройки уведомлений</b>\n\n")
	b.WriteString(settingLine("🃏 Карточки матчей", prefs.MatchCards))
	b.WriteString(settingLine("🔥 Оповещения о сериях", prefs.StreakAlerts))
	b.WriteString(settingLine("🌙 Ежедневный отчёт (23:59 МСК)", prefs.DailyReport))
	b.WriteString(settingLine("🏅 Смена ранга", prefs.RankAlerts))
	b.WriteString("\nНажми на переключатель, чтобы изменить настройку.")

	kb := h.keyboards.SettingsKeyboard(
		prefs.MatchCards, prefs.StreakAlerts, prefs.DailyReport, prefs.RankAlerts,
	)
	return HTML(b.String(), kb)
}

func settingLine(name string, enabled bool) string {
	state := "выкл"
	if enabled {
		state = "вкл"
	}
	return fmt.Sprintf("%s: <b>%s</b>\n", name, state)
}

// toggleUpdates maps a toggle key to a single-field preference update that
// flips its current value.
func toggleUpdates(prefs account.NotificationPreferences, key string) (command.PreferenceUpdates, error) {
	flip := func(v bool) *bool {
		next := !v
		return &next
	}

	switch key {
	case presenter.ToggleMatchCards:
		return command.PreferenceUpdates{MatchCards: flip(prefs.MatchCards)}, nil
	case presenter.ToggleStreakAlerts:
		return command.PreferenceUpdates{StreakAlerts: flip(prefs.StreakAlerts)}, nil
	case presenter.ToggleDailyReport:
		return command.PreferenceUpdates{DailyReport: flip(prefs.DailyReport)}, nil
	case presenter.ToggleRankAlerts:
		return command.PreferenceUpdates{RankAlerts: flip(prefs.RankAlerts)}, nil
	default:
		return command.PreferenceUpdates{}, fmt.Errorf("unknown settings toggle %q", key)
	}
}
