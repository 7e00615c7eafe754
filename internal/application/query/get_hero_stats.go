package query

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HERO STATS QUERY
// Таблицы по героям. Доски "по играм / по WR / по KDA" строятся из сводной
// статистики публичного API за всю карьеру; аналитика (WR и средний
// Net Worth) - из сохранённой истории матчей.
// ══════════════════════════════════════════════════════════════════════════════

// HeroBoard - какой срез по героям запрашивается.
type HeroBoard string

// Известные срезы.
const (
	HeroBoardGames   HeroBoard = "games"
	HeroBoardWinRate HeroBoard = "wr"
	HeroBoardKDA     HeroBoard = "kda"
)

// Пороговые значения досок.
const (
	// heroBoardSize - сколько строк в доске.
	heroBoardSize = 15

	// heroBoardMinGames - минимум игр для досок по WR и KDA.
	heroBoardMinGames = 10

	// analyticsWinRateMinGames - минимум игр для аналитики по WR.
	analyticsWinRateMinGames = 10

	// analyticsNetWorthMinGames - минимум игр для аналитики по Net Worth.
	analyticsNetWorthMinGames = 5

	// analyticsSize - сколько строк в каждой таблице аналитики.
	analyticsSize = 10
)

// HeroSource - срез клиента статистики для досок по героям.
type HeroSource interface {
	// PlayerHeroes возвращает сводку по героям за карьеру.
	PlayerHeroes(ctx context.Context, accountID int64) ([]opendota.PlayerHeroDTO, error)
}

// GetHeroStatsQuery содержит параметры запроса досок по героям.
type GetHeroStatsQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64

	// Board - какой срез строить.
	Board HeroBoard
}

// Validate проверяет корректность параметров запроса.
func (q *GetHeroStatsQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	switch q.Board {
	case HeroBoardGames, HeroBoardWinRate, HeroBoardKDA:
		return nil
	default:
		return errors.New("unknown hero board")
	}
}

// HeroLineDTO - одна строка доски по героям.
type HeroLineDTO struct {
	// HeroID - идентификатор героя.
	HeroID int `json:"hero_id"`

	// Games - сколько игр сыграно.
	Games int `json:"games"`

	// WinRate - процент побед (0-100).
	WinRate float64 `json:"win_rate"`

	// KDA - коэффициент эффективности.
	KDA float64 `json:"kda"`
}

// HeroBoardDTO - доска по героям.
type HeroBoardDTO struct {
	// Board - какой срез построен.
	Board HeroBoard `json:"board"`

	// Lines - строки доски, уже отсортированные.
	Lines []HeroLineDTO `json:"lines"`
}

// GetHeroStatsHandler обрабатывает GetHeroStatsQuery.
type GetHeroStatsHandler struct {
	accountRepo account.Repository
	heroes      HeroSource
}

// NewGetHeroStatsHandler создаёт обработчик досок по героям.
func NewGetHeroStatsHandler(
	accountRepo account.Repository,
	heroes HeroSource,
) *GetHeroStatsHandler {
	return &GetHeroStatsHandler{
		accountRepo: accountRepo,
		heroes:      heroes,
	}
}

// Handle выполняет запрос доски по героям.
func (h *GetHeroStatsHandler) Handle(
	ctx context.Context,
	q GetHeroStatsQuery,
) (*HeroBoardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	stats, err := h.heroes.PlayerHeroes(ctx, acc.SteamID.Int64())
	if err != nil {
		return nil, err
	}

	lines := make([]HeroLineDTO, 0, len(stats))
	for i := range stats {
		s := &stats[i]
		if s.Games <= 0 {
			continue
		}
		lines = append(lines, HeroLineDTO{
			HeroID:  s.HeroIDInt(),
			Games:   s.Games,
			WinRate: s.WinRate(),
			KDA:     math.Round(s.KDA()*100) / 100,
		})
	}

	switch q.Board {
	case HeroBoardGames:
		sort.Slice(lines, func(i, j int) bool { return lines[i].Games > lines[j].Games })

	case HeroBoardWinRate:
		lines = filterMinGames(lines, heroBoardMinGames)
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].WinRate != lines[j].WinRate {
				return lines[i].WinRate > lines[j].WinRate
			}
			return lines[i].Games > lines[j].Games
		})

	case HeroBoardKDA:
		lines = filterMinGames(lines, heroBoardMinGames)
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].KDA != lines[j].KDA {
				return lines[i].KDA > lines[j].KDA
			}
			return lines[i].Games > lines[j].Games
		})
	}

	if len(lines) > heroBoardSize {
		lines = lines[:heroBoardSize]
	}

	return &HeroBoardDTO{Board: q.Board, Lines: lines}, nil
}

func filterMinGames(lines []HeroLineDTO, minGames int) []HeroLineDTO {
	out := lines[:0]
	for _, l := range lines {
		if l.Games >= minGames {
			out = append(out, l)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// GET HERO ANALYTICS QUERY
// Аналитика по сохранённой истории: топ по WR и топ по среднему Net Worth.
// ══════════════════════════════════════════════════════════════════════════════

// GetHeroAnalyticsQuery содержит параметры запроса аналитики по героям.
type GetHeroAnalyticsQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64
}

// Validate проверяет корректность параметров запроса.
func (q *GetHeroAnalyticsQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	return nil
}

// HeroAnalyticsLineDTO - одна строка аналитики.
type HeroAnalyticsLineDTO struct {
	// HeroID - идентификатор героя.
	HeroID int `json:"hero_id"`

	// Games - сколько игр в сохранённой истории.
	Games int `json:"games"`

	// WinRate - процент побед (0-100).
	WinRate float64 `json:"win_rate"`

	// AvgNetWorth - средняя итоговая ценность за матч.
	AvgNetWorth float64 `json:"avg_net_worth"`
}

// HeroAnalyticsDTO - аналитика по героям.
type HeroAnalyticsDTO struct {
	// ByWinRate - топ по винрейту (минимум игр учтён).
	ByWinRate []HeroAnalyticsLineDTO `json:"by_win_rate"`

	// ByNetWorth - топ по среднему Net Worth (минимум игр учтён).
	ByNetWorth []HeroAnalyticsLineDTO `json:"by_net_worth"`
}

// GetHeroAnalyticsHandler обрабатывает GetHeroAnalyticsQuery.
type GetHeroAnalyticsHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetHeroAnalyticsHandler создаёт обработчик аналитики по героям.
func NewGetHeroAnalyticsHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetHeroAnalyticsHandler {
	return &GetHeroAnalyticsHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос аналитики по героям.
func (h *GetHeroAnalyticsHandler) Handle(
	ctx context.Context,
	q GetHeroAnalyticsQuery,
) (*HeroAnalyticsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	aggregates, err := h.matchRepo.HeroAggregates(ctx, match.SteamID(acc.SteamID.Int64()))
	if err != nil {
		return nil, err
	}

	byWR := make([]HeroAnalyticsLineDTO, 0)
	byNW := make([]HeroAnalyticsLineDTO, 0)
	for _, a := range aggregates {
		line := HeroAnalyticsLineDTO{
			HeroID:      a.HeroID,
			Games:       a.Games,
			WinRate:     a.WinRate(),
			AvgNetWorth: a.AvgNetWorth,
		}
		if a.Games >= analyticsWinRateMinGames {
			byWR = append(byWR, line)
		}
		if a.Games >= analyticsNetWorthMinGames {
			byNW = append(byNW, line)
		}
	}

	sort.Slice(byWR, func(i, j int) bool {
		if byWR[i].WinRate != byWR[j].WinRate {
			return byWR[i].WinRate > byWR[j].WinRate
		}
		return byWR[i].Games > byWR[j].Games
	})
	sort.Slice(byNW, func(i, j int) bool { return byNW[i].AvgNetWorth > byNW[j].AvgNetWorth })

	if len(byWR) > analyticsSize {
		byWR = byWR[:analyticsSize]
	}
	if len(byNW) > analyticsSize {
		byNW = byNW[:analyticsSize]
	}

	return &HeroAnalyticsDTO{ByWinRate: byWR, ByNetWorth: byNW}, nil
}
