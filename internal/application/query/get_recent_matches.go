package query

import (
	"context"
	"errors"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECENT MATCHES QUERY
// Последние матчи из сохранённой истории: все режимы или только рейтинговые.
// Для рейтинговых строк отдаётся применённый шаг условного MMR.
// ══════════════════════════════════════════════════════════════════════════════

// GetRecentMatchesQuery содержит параметры запроса последних матчей.
type GetRecentMatchesQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64

	// RankedOnly - показывать только рейтинговые матчи.
	RankedOnly bool

	// Limit - сколько матчей вернуть (по умолчанию 10).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetRecentMatchesQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	return nil
}

// MatchLineDTO - одна строка списка матчей.
type MatchLineDTO struct {
	// MatchID - идентификатор матча.
	MatchID int64 `json:"match_id"`

	// StartTime - время начала.
	StartTime time.Time `json:"start_time"`

	// HeroID - герой игрока.
	HeroID int `json:"hero_id"`

	// GameMode и LobbyType - подписи режима и лобби.
	GameMode  string `json:"game_mode"`
	LobbyType string `json:"lobby_type"`

	// Won - исход для игрока.
	Won bool `json:"won"`

	// Ranked - рейтинговый ли матч.
	Ranked bool `json:"ranked"`

	// Kills, Deaths, Assists и KDA - счёт игрока.
	Kills   int     `json:"kills"`
	Deaths  int     `json:"deaths"`
	Assists int     `json:"assists"`
	KDA     float64 `json:"kda"`

	// RatingDelta и RatingAfter - применённый шаг условного MMR и значение
	// после матча. nil для нерейтинговых игр и когда рейтинг был неизвестен.
	RatingDelta *int `json:"rating_delta,omitempty"`
	RatingAfter *int `json:"rating_after,omitempty"`
}

// RecentMatchesDTO - список последних матчей.
type RecentMatchesDTO struct {
	// Matches - строки от свежих к старым.
	Matches []MatchLineDTO `json:"matches"`

	// RankedOnly - какой срез запрашивался.
	RankedOnly bool `json:"ranked_only"`
}

// GetRecentMatchesHandler обрабатывает GetRecentMatchesQuery.
type GetRecentMatchesHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetRecentMatchesHandler создаёт обработчик запроса последних матчей.
func NewGetRecentMatchesHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetRecentMatchesHandler {
	return &GetRecentMatchesHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос последних матчей.
func (h *GetRecentMatchesHandler) Handle(
	ctx context.Context,
	q GetRecentMatchesQuery,
) (*RecentMatchesDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	steamID := match.SteamID(acc.SteamID.Int64())

	var matches []*match.Match
	if q.RankedOnly {
		matches, err = h.matchRepo.ListRecentRanked(ctx, steamID, q.Limit)
	} else {
		matches, err = h.matchRepo.ListRecent(ctx, steamID, q.Limit)
	}
	if err != nil {
		return nil, err
	}

	lines := make([]MatchLineDTO, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, MatchLineDTO{
			MatchID:     m.MatchID.Int64(),
			StartTime:   m.StartTime,
			HeroID:      m.HeroID,
			GameMode:    m.GameMode.Name(),
			LobbyType:   m.LobbyType.Name(),
			Won:         m.PlayerWon(),
			Ranked:      m.IsRanked(),
			Kills:       m.Kills,
			Deaths:      m.Deaths,
			Assists:     m.Assists,
			KDA:         m.KDA(),
			RatingDelta: m.RatingDelta,
			RatingAfter: m.RatingAfter,
		})
	}

	return &RecentMatchesDTO{
		Matches:    lines,
		RankedOnly: q.RankedOnly,
	}, nil
}
