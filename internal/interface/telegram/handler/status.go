package handler

import (
	"context"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS SCREEN
// Карточка аккаунта: ник, ранг, MMR, прогресс до звезды и последний матч.
// ══════════════════════════════════════════════════════════════════════════════

// StatusHandler serves the account status card.
type StatusHandler struct {
	statusQuery  *query.GetStatusHandler
	card         *presenter.StatusCardPresenter
	dictionaries *Dictionaries
	keyboards    *presenter.KeyboardBuilder
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(
	statusQuery *query.GetStatusHandler,
	dictionaries *Dictionaries,
	keyboards *presenter.KeyboardBuilder,
) *StatusHandler {
	return &StatusHandler{
		statusQuery:  statusQuery,
		card:         presenter.NewStatusCardPresenter(),
		dictionaries: dictionaries,
		keyboards:    keyboards,
	}
}

// Handle renders the status card for the user.
func (h *StatusHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	dto, err := h.statusQuery.Handle(ctx, query.GetStatusQuery{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	heroes := h.dictionaries.HeroNames(ctx)
	return HTML(h.card.Format(dto, heroes), h.keyboards.MainMenuKeyboard(true)), nil
}
