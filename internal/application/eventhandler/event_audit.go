package eventhandler

import (
	"log/slog"
	"sync"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// EVENT AUDIT HANDLER
// Подписывается на все события: пишет структурированный журнал и считает
// события по типам. Счётчики отдаются наружу через HTTP-срез состояния.
// ═══════════════════════════════════════════════════════════════════════════

// EventAuditHandler журналирует каждое доменное событие.
type EventAuditHandler struct {
	logger *slog.Logger

	mu     sync.Mutex
	counts map[shared.EventType]int64
}

// NewEventAuditHandler создаёт аудит-обработчик.
func NewEventAuditHandler(logger *slog.Logger) *EventAuditHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventAuditHandler{
		logger: logger.With("handler", "event_audit"),
		counts: make(map[shared.EventType]int64),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *EventAuditHandler) Handle(event shared.Event) error {
	h.mu.Lock()
	h.counts[event.EventType()]++
	h.mu.Unlock()

	h.logger.Info("domain event",
		"event_type", event.EventType(),
		"aggregate_id", event.AggregateID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload(),
	)

	return nil
}

// Counts возвращает снимок счётчиков по типам событий.
func (h *EventAuditHandler) Counts() map[shared.EventType]int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make(map[shared.EventType]int64, len(h.counts))
	for t, n := range h.counts {
		snapshot[t] = n
	}
	return snapshot
}
