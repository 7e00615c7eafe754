package query

import (
	"context"
	"errors"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ROLE STATS QUERY
// Винрейт по ролям (core / support) из сохранённой истории. Роль выводится
// при разборе деталей матча; записи без роли не участвуют.
// ══════════════════════════════════════════════════════════════════════════════

// GetRoleStatsQuery содержит параметры запроса винрейта по ролям.
type GetRoleStatsQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64
}

// Validate проверяет корректность параметров запроса.
func (q *GetRoleStatsQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	return nil
}

// RoleLineDTO - агрегат по одной роли.
type RoleLineDTO struct {
	// Role - роль.
	Role match.Role `json:"role"`

	// Games и Wins - сколько игр и побед.
	Games int `json:"games"`
	Wins  int `json:"wins"`

	// WinRate - процент побед (0-100).
	WinRate float64 `json:"win_rate"`
}

// RoleStatsDTO - винрейт по ролям.
type RoleStatsDTO struct {
	// Core и Support - агрегаты по двум ролям. Нулевые, если игр не было.
	Core    RoleLineDTO `json:"core"`
	Support RoleLineDTO `json:"support"`
}

// GetRoleStatsHandler обрабатывает GetRoleStatsQuery.
type GetRoleStatsHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetRoleStatsHandler создаёт обработчик винрейта по ролям.
func NewGetRoleStatsHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetRoleStatsHandler {
	return &GetRoleStatsHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос винрейта по ролям.
func (h *GetRoleStatsHandler) Handle(
	ctx context.Context,
	q GetRoleStatsQuery,
) (*RoleStatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	stats, err := h.matchRepo.RoleStats(ctx, match.SteamID(acc.SteamID.Int64()))
	if err != nil {
		return nil, err
	}

	result := &RoleStatsDTO{
		Core:    RoleLineDTO{Role: match.RoleCore},
		Support: RoleLineDTO{Role: match.RoleSupport},
	}

	for _, s := range stats {
		line := RoleLineDTO{
			Role:    s.Role,
			Games:   s.Games,
			Wins:    s.Wins,
			WinRate: s.WinRate(),
		}
		switch s.Role {
		case match.RoleCore:
			result.Core = line
		case match.RoleSupport:
			result.Support = line
		}
	}

	return result, nil
}
