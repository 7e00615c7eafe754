package handler

import (
	"context"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEROES SCREENS
// Меню сортировок, три доски по карьере и аналитика по сохранённой истории.
// ══════════════════════════════════════════════════════════════════════════════

// HeroesHandler serves the hero boards and the hero analytics screen.
type HeroesHandler struct {
	statsQuery     *query.GetHeroStatsHandler
	analyticsQuery *query.GetHeroAnalyticsHandler
	board          *presenter.HeroBoardPresenter
	dictionaries   *Dictionaries
	keyboards      *presenter.KeyboardBuilder
}

// NewHeroesHandler creates a new HeroesHandler.
func NewHeroesHandler(
	statsQuery *query.GetHeroStatsHandler,
	analyticsQuery *query.GetHeroAnalyticsHandler,
	dictionaries *Dictionaries,
	keyboards *presenter.KeyboardBuilder,
) *HeroesHandler {
	return &HeroesHandler{
		statsQuery:     statsQuery,
		analyticsQuery: analyticsQuery,
		board:          presenter.NewHeroBoardPresenter(),
		dictionaries:   dictionaries,
		keyboards:      keyboards,
	}
}

// HandleMenu shows the hero board sort picker.
func (h *HeroesHandler) HandleMenu(ctx context.Context, req *Request) (*Response, error) {
	resp := HTML("Выбери сортировку героев:", h.keyboards.HeroesMenuKeyboard())
	resp.EditInPlace = true
	return resp, nil
}

// HandleByGames renders the top heroes by games played.
func (h *HeroesHandler) HandleByGames(ctx context.Context, req *Request) (*Response, error) {
	return h.handleBoard(ctx, req, query.HeroBoardGames)
}

// HandleByWinRate renders the top heroes by win rate.
func (h *HeroesHandler) HandleByWinRate(ctx context.Context, req *Request) (*Response, error) {
	return h.handleBoard(ctx, req, query.HeroBoardWinRate)
}

// HandleByKDA renders the top heroes by KDA.
func (h *HeroesHandler) HandleByKDA(ctx context.Context, req *Request) (*Response, error) {
	return h.handleBoard(ctx, req, query.HeroBoardKDA)
}

func (h *HeroesHandler) handleBoard(ctx context.Context, req *Request, board query.HeroBoard) (*Response, error) {
	dto, err := h.statsQuery.Handle(ctx, query.GetHeroStatsQuery{
		TelegramID: req.TelegramID,
		Board:      board,
	})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	heroes := h.dictionaries.HeroNames(ctx)
	return HTML(h.board.FormatBoard(dto, heroes), h.keyboards.HeroesMenuKeyboard()), nil
}

// HandleAnalytics renders the win-rate and net-worth analytics boards.
func (h *HeroesHandler) HandleAnalytics(ctx context.Context, req *Request) (*Response, error) {
	dto, err := h.analyticsQuery.Handle(ctx, query.GetHeroAnalyticsQuery{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	heroes := h.dictionaries.HeroNames(ctx)
	return HTML(h.board.FormatAnalytics(dto, heroes), h.keyboards.HeroesMenuKeyboard()), nil
}
