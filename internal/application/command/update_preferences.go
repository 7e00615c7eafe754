package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PREFERENCES COMMAND
// Updates the player's notification preferences. This gives players control
// over which of the tracker's messages reach them.
// ══════════════════════════════════════════════════════════════════════════════

// UpdatePreferencesCommand contains the data to update preferences.
type UpdatePreferencesCommand struct {
	// TelegramID is the chat user.
	TelegramID int64

	// Preferences contains the new preference values.
	// Only non-nil values will be updated.
	Preferences PreferenceUpdates

	// CorrelationID for tracing.
	CorrelationID string
}

// PreferenceUpdates contains optional preference updates.
// nil values mean "don't change".
type PreferenceUpdates struct {
	// MatchCards - send a card after every new game.
	MatchCards *bool

	// StreakAlerts - warn about long win and loss streaks.
	StreakAlerts *bool

	// DailyReport - send the end-of-day summary.
	DailyReport *bool

	// RankAlerts - announce profile medal changes.
	RankAlerts *bool
}

// Validate validates the command.
func (c UpdatePreferencesCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("update_preferences: telegram_id is required")
	}
	return nil
}

// UpdatePreferencesResult contains the result of updating preferences.
type UpdatePreferencesResult struct {
	// UpdatedPreferences contains the final preference values.
	UpdatedPreferences account.NotificationPreferences

	// ChangedFields lists which fields were changed.
	ChangedFields []string

	// UpdatedAt is when the preferences were updated.
	UpdatedAt time.Time
}

// UpdatePreferencesHandler handles the UpdatePreferencesCommand.
type UpdatePreferencesHandler struct {
	accountRepo  account.Repository
	accountCache account.Cache
}

// NewUpdatePreferencesHandler creates a new UpdatePreferencesHandler.
func NewUpdatePreferencesHandler(
	accountRepo account.Repository,
	accountCache account.Cache,
) *UpdatePreferencesHandler {
	return &UpdatePreferencesHandler{
		accountRepo:  accountRepo,
		accountCache: accountCache,
	}
}

// Handle executes the update preferences command.
func (h *UpdatePreferencesHandler) Handle(
	ctx context.Context,
	cmd UpdatePreferencesCommand,
) (*UpdatePreferencesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_preferences: validation failed: %w", err)
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(cmd.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("update_preferences: load account: %w", err)
	}

	changedFields := make([]string, 0)
	prefs := acc.Preferences

	if cmd.Preferences.MatchCards != nil && *cmd.Preferences.MatchCards != prefs.MatchCards {
		prefs.MatchCards = *cmd.Preferences.MatchCards
		changedFields = append(changedFields, "match_cards")
	}

	if cmd.Preferences.StreakAlerts != nil && *cmd.Preferences.StreakAlerts != prefs.StreakAlerts {
		prefs.StreakAlerts = *cmd.Preferences.StreakAlerts
		changedFields = append(changedFields, "streak_alerts")
	}

	if cmd.Preferences.DailyReport != nil && *cmd.Preferences.DailyReport != prefs.DailyReport {
		prefs.DailyReport = *cmd.Preferences.DailyReport
		changedFields = append(changedFields, "daily_report")
	}

	if cmd.Preferences.RankAlerts != nil && *cmd.Preferences.RankAlerts != prefs.RankAlerts {
		prefs.RankAlerts = *cmd.Preferences.RankAlerts
		changedFields = append(changedFields, "rank_alerts")
	}

	acc.UpdatePreferences(prefs)

	if len(changedFields) > 0 {
		if err := h.accountRepo.Update(ctx, acc); err != nil {
			return nil, fmt.Errorf("update_preferences: save: %w", err)
		}

		if h.accountCache != nil {
			_ = h.accountCache.Delete(ctx, acc.TelegramID)
		}
	}

	return &UpdatePreferencesResult{
		UpdatedPreferences: prefs,
		ChangedFields:      changedFields,
		UpdatedAt:          acc.UpdatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESET PREFERENCES
// Helper commands for the all-on / all-off menu buttons.
// ══════════════════════════════════════════════════════════════════════════════

// EnableAllNotificationsCommand enables all notifications for a player.
type EnableAllNotificationsCommand struct {
	TelegramID    int64
	CorrelationID string
}

// DisableAllNotificationsCommand disables all notifications for a player.
type DisableAllNotificationsCommand struct {
	TelegramID    int64
	CorrelationID string
}

// PresetPreferencesHandler handles preset preference commands.
type PresetPreferencesHandler struct {
	prefsHandler *UpdatePreferencesHandler
}

// NewPresetPreferencesHandler creates a new handler.
func NewPresetPreferencesHandler(prefsHandler *UpdatePreferencesHandler) *PresetPreferencesHandler {
	return &PresetPreferencesHandler{prefsHandler: prefsHandler}
}

// HandleEnableAll enables all notifications.
func (h *PresetPreferencesHandler) HandleEnableAll(
	ctx context.Context,
	cmd EnableAllNotificationsCommand,
) (*UpdatePreferencesResult, error) {
	t := true
	return h.prefsHandler.Handle(ctx, UpdatePreferencesCommand{
		TelegramID:    cmd.TelegramID,
		CorrelationID: cmd.CorrelationID,
		Preferences: PreferenceUpdates{
			MatchCards:   &t,
			StreakAlerts: &t,
			DailyReport:  &t,
			RankAlerts:   &t,
		},
	})
}

// HandleDisableAll disables all notifications.
func (h *PresetPreferencesHandler) HandleDisableAll(
	ctx context.Context,
	cmd DisableAllNotificationsCommand,
) (*UpdatePreferencesResult, error) {
	f := false
	return h.prefsHandler.Handle(ctx, UpdatePreferencesCommand{
		TelegramID:    cmd.TelegramID,
		CorrelationID: cmd.CorrelationID,
		Preferences: PreferenceUpdates{
			MatchCards:   &f,
			StreakAlerts: &f,
			DailyReport:  &f,
			RankAlerts:   &f,
		},
	})
}
