package query

import (
	"context"
	"errors"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RATING TREND QUERY
// Тренд условного MMR по последним рейтинговым матчам: симулированная
// прогулка фиксированным шагом от стартовой точки. По этим данным строится
// линейный график.
// ══════════════════════════════════════════════════════════════════════════════

// trendDefaultLimit - сколько рейтинговых матчей берётся в тренд.
const trendDefaultLimit = 60

// ErrNoRankedMatches - рейтинговых матчей для тренда нет.
var ErrNoRankedMatches = errors.New("no ranked matches for trend")

// GetRatingTrendQuery содержит параметры запроса тренда.
type GetRatingTrendQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64

	// Limit - сколько матчей взять (по умолчанию trendDefaultLimit).
	Limit int

	// Step - шаг симуляции за матч. Ноль означает шаг по умолчанию.
	Step int
}

// Validate проверяет корректность параметров запроса.
func (q *GetRatingTrendQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 || q.Limit > trendDefaultLimit {
		q.Limit = trendDefaultLimit
	}
	if q.Step == 0 {
		q.Step = 30
	}
	return nil
}

// RatingTrendDTO - точки тренда условного MMR.
type RatingTrendDTO struct {
	// StartRating - стартовая точка прогулки.
	StartRating int `json:"start_rating"`

	// Points - значение после каждого матча, от старых к новым.
	Points []int `json:"points"`

	// Exact - стартовая точка взята из точного MMR, а не из оценки.
	Exact bool `json:"exact"`
}

// GetRatingTrendHandler обрабатывает GetRatingTrendQuery.
type GetRatingTrendHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetRatingTrendHandler создаёт обработчик запроса тренда.
func NewGetRatingTrendHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetRatingTrendHandler {
	return &GetRatingTrendHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос тренда.
func (h *GetRatingTrendHandler) Handle(
	ctx context.Context,
	q GetRatingTrendQuery,
) (*RatingTrendDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	ranked, err := h.matchRepo.ListRecentRanked(
		ctx, match.SteamID(acc.SteamID.Int64()), q.Limit,
	)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoRankedMatches
	}

	start := 0
	if rating, ok := acc.EffectiveRating(); ok {
		start = rating
	} else if acc.RankTier.IsValid() {
		start = acc.RankTier.EstimateMMR()
	}

	// Матчи приходят от свежих к старым; прогулка идёт от старых к новым.
	points := make([]int, 0, len(ranked))
	current := start
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].PlayerWon() {
			current += q.Step
		} else {
			current -= q.Step
		}
		points = append(points, current)
	}

	return &RatingTrendDTO{
		StartRating: start,
		Points:      points,
		Exact:       acc.Rating.IsExact(),
	}, nil
}
