package handler

import (
	"context"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// RoleStatsHandler serves the core/support win-rate screen.
type RoleStatsHandler struct {
	rolesQuery *query.GetRoleStatsHandler
	keyboards  *presenter.KeyboardBuilder
}

// NewRoleStatsHandler creates a new RoleStatsHandler.
func NewRoleStatsHandler(
	rolesQuery *query.GetRoleStatsHandler,
	keyboards *presenter.KeyboardBuilder,
) *RoleStatsHandler {
	return &RoleStatsHandler{
		rolesQuery: rolesQuery,
		keyboards:  keyboards,
	}
}

// Handle renders the win rate split by role.
func (h *RoleStatsHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	dto, err := h.rolesQuery.Handle(ctx, query.GetRoleStatsQuery{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	return HTML(presenter.FormatRoleStats(dto), h.keyboards.MainMenuKeyboard(true)), nil
}
