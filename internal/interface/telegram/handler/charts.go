package handler

import (
	"context"
	"errors"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/render"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHART SCREENS
// Картинки: активность за 7 дней и тренд условного MMR.
// ══════════════════════════════════════════════════════════════════════════════

const (
	activityChartTitle = "Активность: игр в день (последние 7 дн.)"
	trendChartTitle    = "Тренд условного MMR (последние ранк)"
	noTrendText        = "Недостаточно ранк-матчей для тренда."
)

// ChartsHandler serves the activity and rating trend charts.
type ChartsHandler struct {
	activityQuery *query.GetActivityHandler
	trendQuery    *query.GetRatingTrendHandler
	keyboards     *presenter.KeyboardBuilder
}

// NewChartsHandler creates a new ChartsHandler.
func NewChartsHandler(
	activityQuery *query.GetActivityHandler,
	trendQuery *query.GetRatingTrendHandler,
	keyboards *presenter.KeyboardBuilder,
) *ChartsHandler {
	return &ChartsHandler{
		activityQuery: activityQuery,
		trendQuery:    trendQuery,
		keyboards:     keyboards,
	}
}

// HandleActivity renders the 7-day activity bar chart.
func (h *ChartsHandler) HandleActivity(ctx context.Context, req *Request) (*Response, error) {
	dto, err := h.activityQuery.Handle(ctx, query.GetActivityQuery{TelegramID: req.TelegramID})
	if err != nil {
		if isNotBound(err) {
			return notBoundResponse(h.keyboards), nil
		}
		return nil, err
	}

	days := make([]render.ActivityDay, 0, len(dto.Days))
	for _, d := range dto.Days {
		days = append(days, render.ActivityDay{
			Label:  timeutil.FormatMoscow(d.Date, "02.01"),
			Wins:   d.Wins,
			Losses: d.Games - d.Wins,
		})
	}

	png, err := render.ActivityChart(activityChartTitle, days)
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:      presenter.ActivityCaption(dto),
		ParseMode: "HTML",
		Photo:     png,
	}, nil
}

// HandleTrend renders the simulated MMR trend line chart.
func (h *ChartsHandler) HandleTrend(ctx context.Context, req *Request) (*Response, error) {
	dto, err := h.trendQuery.Handle(ctx, query.GetRatingTrendQuery{TelegramID: req.TelegramID})
	if err != nil {
		switch {
		case isNotBound(err):
			return notBoundResponse(h.keyboards), nil
		case errors.Is(err, query.ErrNoRankedMatches):
			return HTML(noTrendText, h.keyboards.MainMenuKeyboard(true)), nil
		default:
			return nil, err
		}
	}

	// The walk starts at the current rating estimate, so even a single
	// ranked match yields a two-point line.
	points := make([]int, 0, len(dto.Points)+1)
	points = append(points, dto.StartRating)
	points = append(points, dto.Points...)

	png, err := render.RatingTrend(trendChartTitle, points)
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:      presenter.TrendCaption(dto),
		ParseMode: "HTML",
		Photo:     png,
	}, nil
}
