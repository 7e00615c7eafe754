// Package eventhandler содержит обработчики доменных событий.
// Обработчики - "реактивная" часть системы: цикл опроса публикует факты,
// а побочные эффекты (уведомления, журналирование) живут здесь.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// NotificationSender отправляет уведомления с учётом настроек получателя.
type NotificationSender interface {
	Send(ctx context.Context, n *notification.Notification) notification.DeliveryResult
}

// ═══════════════════════════════════════════════════════════════════════════
// ON RANK TIER CHANGED HANDLER
// Медаль профиля обновилась - сообщаем игроку о повышении или понижении.
// ═══════════════════════════════════════════════════════════════════════════

// OnRankTierChangedHandler обрабатывает смену медали профиля.
type OnRankTierChangedHandler struct {
	notificationSender NotificationSender
	logger             *slog.Logger
}

// NewOnRankTierChangedHandler создаёт обработчик смены медали.
func NewOnRankTierChangedHandler(
	notificationSender NotificationSender,
	logger *slog.Logger,
) *OnRankTierChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnRankTierChangedHandler{
		notificationSender: notificationSender,
		logger:             logger.With("handler", "on_rank_tier_changed"),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnRankTierChangedHandler) Handle(event shared.Event) error {
	tierEvent, ok := event.(shared.RankTierChangedEvent)
	if !ok {
		h.logger.Warn("received non-RankTierChangedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing rank tier change",
		"telegram_id", tierEvent.TelegramID,
		"old_tier", tierEvent.OldTier,
		"new_tier", tierEvent.NewTier,
		"promoted", tierEvent.Promoted(),
	)

	// Понижение до неизвестной медали (скрытый профиль) не повод для
	// уведомления.
	newTier := account.RankTier(tierEvent.NewTier)
	if !newTier.IsValid() {
		return nil
	}

	n, err := notification.New(
		notification.TypeRankAlert,
		shared.TelegramID(tierEvent.TelegramID),
		formatRankAlert(newTier.Name(), tierEvent.Promoted()),
	)
	if err != nil {
		return fmt.Errorf("build rank alert: %w", err)
	}

	result := h.notificationSender.Send(context.Background(), n)
	if !result.Success && result.Error != nil {
		// Доставка не критична: медаль видна и в статусе.
		h.logger.Warn("failed to deliver rank alert",
			"telegram_id", tierEvent.TelegramID,
			"error", result.Error,
		)
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnRankTierChangedHandler) EventType() shared.EventType {
	return shared.EventRankTierChanged
}

// formatRankAlert формирует сообщение о смене медали.
func formatRankAlert(tierName string, promoted bool) string {
	if promoted {
		return fmt.Sprintf("🏅 Повышение! Новая медаль: <b>%s</b>", tierName)
	}
	return fmt.Sprintf("🏅 Медаль обновлена: <b>%s</b>", tierName)
}
