package handler

import (
	"context"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECENT MATCHES SCREEN
// Список последних 10 матчей, все режимы или только рейтинговые.
// ══════════════════════════════════════════════════════════════════════════════

const (
	emptyMatchesText = "Нет доступных последних матчей."
	emptyRankedText  = "Не найдено рейтинговых матчей."
)

// MatchesHandler serves the recent matches list.
type MatchesHandler struct {
	matchesQuery *query.GetRecentMatchesHandler
	list         *presenter.MatchListPresenter
	dictionaries *Dictionaries
	keyboards    *presenter.KeyboardBuilder
}

// NewMatchesHandler creates a new MatchesHandler.
func NewMatchesHandler(
	matchesQuery *query.GetRecentMatchesHandler,
	dictionaries *Dictionaries,
	keyboards *presenter.KeyboardBuilder,
) *MatchesHandler {
	return &MatchesHandler{
		matchesQuery: matchesQuery,
		list:         presenter.NewMatchListPresenter(),
		dictionaries: dictionaries,
		keyboards:    keyboards,
	}
}

// HandleAll renders the last matches across all game modes.
func (h *MatchesHandler) HandleAll(ctx context.Context, req *Request) (*Response, error) {
	return h.handle(ctx, req, false)
}

// HandleRanked renders the last ranked matches only.
func (h *MatchesHandler) HandleRanked(ctx context.Context, req *Request) (*Response, error) {
	return h.handle(ctx, req, true)
}

func (h *MatchesHandler) handle(ctx context.Context, req *Request, rankedOnly bool) (*Response, error) {
	dto, err := h.matchesQuery.Handle(ctx, query.GetRecentMatchesQuery{
		TelegramID: req.TelegramID,
		RankedOnly: rankedOnly,
	})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	kb := h.keyboards.MatchListKeyboard(rankedOnly)

	if len(dto.Matches) == 0 {
		text := emptyMatchesText
		if rankedOnly {
			text = emptyRankedText
		}
		return HTML(text, kb), nil
	}

	heroes := h.dictionaries.HeroNames(ctx)
	return HTML(h.list.Format(dto, heroes), kb), nil
}
