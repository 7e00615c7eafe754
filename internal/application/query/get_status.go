// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATUS QUERY
// Собирает сводку по привязанному аккаунту: ник, медаль, рейтинг с пометкой
// происхождения, максимум, последний матч. Это главный экран бота.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatusQuery содержит параметры запроса статуса.
type GetStatusQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64
}

// Validate проверяет корректность параметров запроса.
func (q *GetStatusQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	return nil
}

// LastMatchDTO - краткая сводка по последнему матчу.
type LastMatchDTO struct {
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

	// Kills, Deaths, Assists - счёт игрока.
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
}

// StatusDTO - сводка по аккаунту.
type StatusDTO struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Идентификация
	// ─────────────────────────────────────────────────────────────────────────

	// PersonaName - последнее известное имя профиля.
	PersonaName string `json:"persona_name"`

	// SteamID - 32-битный account_id.
	SteamID int64 `json:"steam_id"`

	// ─────────────────────────────────────────────────────────────────────────
	// Медаль и рейтинг
	// ─────────────────────────────────────────────────────────────────────────

	// RankName - название медали со звездой ("Legend 4").
	RankName string `json:"rank_name"`

	// RankTier - сырое значение медали (major*10+minor).
	RankTier int `json:"rank_tier"`

	// Rating - условный MMR с пометкой происхождения.
	Rating account.Rating `json:"rating"`

	// MaxRating - максимум условного MMR за время наблюдения.
	MaxRating int `json:"max_rating"`

	// MMRToNextStar - примерно сколько MMR до следующей звезды.
	// nil, когда рейтинг не точный или медаль неизвестна.
	MMRToNextStar *int `json:"mmr_to_next_star,omitempty"`

	// ─────────────────────────────────────────────────────────────────────────
	// История
	// ─────────────────────────────────────────────────────────────────────────

	// TotalMatches - сколько матчей сохранено в истории.
	TotalMatches int `json:"total_matches"`

	// LastMatch - последний сохранённый матч. nil, если истории ещё нет.
	LastMatch *LastMatchDTO `json:"last_match,omitempty"`
}

// GetStatusHandler обрабатывает GetStatusQuery.
type GetStatusHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetStatusHandler создаёт обработчик запроса статуса.
func NewGetStatusHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetStatusHandler {
	return &GetStatusHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос статуса.
func (h *GetStatusHandler) Handle(ctx context.Context, q GetStatusQuery) (*StatusDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	total, err := h.matchRepo.Count(ctx, match.SteamID(acc.SteamID.Int64()))
	if err != nil {
		return nil, err
	}

	status := &StatusDTO{
		PersonaName:   acc.PersonaName,
		SteamID:       acc.SteamID.Int64(),
		RankName:      acc.RankTier.Name(),
		RankTier:      acc.RankTier.Int(),
		Rating:        acc.Rating,
		MaxRating:     acc.MaxRating,
		MMRToNextStar: mmrToNextStar(acc),
		TotalMatches:  total,
	}

	recent, err := h.matchRepo.ListRecent(ctx, match.SteamID(acc.SteamID.Int64()), 1)
	if err == nil && len(recent) > 0 {
		m := recent[0]
		status.LastMatch = &LastMatchDTO{
			MatchID:   m.MatchID.Int64(),
			StartTime: m.StartTime,
			HeroID:    m.HeroID,
			GameMode:  m.GameMode.Name(),
			LobbyType: m.LobbyType.Name(),
			Won:       m.PlayerWon(),
			Kills:     m.Kills,
			Deaths:    m.Deaths,
			Assists:   m.Assists,
		}
	}

	return status, nil
}

// mmrToNextStar оценивает дистанцию до следующей звезды медали.
// Считается только от точного MMR: оценка от оценки не имеет смысла.
func mmrToNextStar(acc *account.Account) *int {
	if !acc.Rating.IsExact() || !acc.RankTier.IsValid() {
		return nil
	}

	nextBorder := acc.RankTier.EstimateMMR() + account.MMRPerStar
	need := nextBorder - acc.Rating.Value
	if need < 0 {
		need = 0
	}
	return &need
}
