package query

import (
	"context"
	"errors"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACTIVITY QUERY
// Активность за последние 7 московских дней: сколько игр в каждый день.
// По этим данным строится столбчатая диаграмма.
// ══════════════════════════════════════════════════════════════════════════════

// activityDays - длина окна активности в днях.
const activityDays = 7

// GetActivityQuery содержит параметры запроса активности.
type GetActivityQuery struct {
	// TelegramID - пользователь чата.
	TelegramID int64
}

// Validate проверяет корректность параметров запроса.
func (q *GetActivityQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be provided")
	}
	return nil
}

// ActivityDayDTO - один день окна активности.
type ActivityDayDTO struct {
	// Date - начало дня в московском времени.
	Date time.Time `json:"date"`

	// Games - сколько игр начато в этот день.
	Games int `json:"games"`

	// Wins - сколько из них выиграно.
	Wins int `json:"wins"`
}

// ActivityDTO - активность за окно.
type ActivityDTO struct {
	// Days - дни от старых к новым, ровно activityDays штук.
	Days []ActivityDayDTO `json:"days"`

	// Total - всего игр за окно.
	Total int `json:"total"`

	// AvgPerDay - в среднем игр в день.
	AvgPerDay float64 `json:"avg_per_day"`
}

// GetActivityHandler обрабатывает GetActivityQuery.
type GetActivityHandler struct {
	accountRepo account.Repository
	matchRepo   match.Repository
}

// NewGetActivityHandler создаёт обработчик запроса активности.
func NewGetActivityHandler(
	accountRepo account.Repository,
	matchRepo match.Repository,
) *GetActivityHandler {
	return &GetActivityHandler{
		accountRepo: accountRepo,
		matchRepo:   matchRepo,
	}
}

// Handle выполняет запрос активности.
func (h *GetActivityHandler) Handle(ctx context.Context, q GetActivityQuery) (*ActivityDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	now := timeutil.ToMoscow(timeutil.Now())
	windowStart := timeutil.StartOfDay(now.AddDate(0, 0, -(activityDays - 1)))
	windowEnd := timeutil.EndOfDay(now)

	matches, err := h.matchRepo.ListInRange(
		ctx, match.SteamID(acc.SteamID.Int64()), windowStart, windowEnd,
	)
	if err != nil {
		return nil, err
	}

	days := make([]ActivityDayDTO, activityDays)
	for i := range days {
		days[i].Date = windowStart.AddDate(0, 0, i)
	}

	total := 0
	for _, m := range matches {
		started := timeutil.ToMoscow(m.StartTime)
		idx := timeutil.DaysBetween(windowStart, started)
		if idx < 0 || idx >= activityDays {
			continue
		}
		days[idx].Games++
		if m.PlayerWon() {
			days[idx].Wins++
		}
		total++
	}

	return &ActivityDTO{
		Days:      days,
		Total:     total,
		AvgPerDay: float64(total) / float64(activityDays),
	}, nil
}
