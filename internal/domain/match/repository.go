package match

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// Разрезы по сохранённой истории матчей, которые считает хранилище.
// ══════════════════════════════════════════════════════════════════════════════

// RoleStat - агрегат по одной роли: сколько игр и побед.
type RoleStat struct {
	Role  Role
	Games int
	Wins  int
}

// WinRate возвращает процент побед (0-100).
func (s RoleStat) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games) * 100
}

// HeroAggregate - агрегат по одному герою из сохранённой истории.
type HeroAggregate struct {
	HeroID      int
	Games       int
	Wins        int
	AvgNetWorth float64
}

// WinRate возвращает процент побед (0-100).
func (h HeroAggregate) WinRate() float64 {
	if h.Games == 0 {
		return 0
	}
	return float64(h.Wins) / float64(h.Games) * 100
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения истории матчей.
type Repository interface {
	// Upsert создаёт запись о матче или обновляет существующую.
	// Ключ (SteamID, MatchID); повторный апсерт той же записи идемпотентен.
	Upsert(ctx context.Context, m *Match) error

	// GetByID возвращает запись о матче.
	// Возвращает ErrMatchNotFound, если записи нет.
	GetByID(ctx context.Context, steamID SteamID, matchID MatchID) (*Match, error)

	// ListRecent возвращает последние матчи аккаунта, от свежих к старым.
	ListRecent(ctx context.Context, steamID SteamID, limit int) ([]*Match, error)

	// ListRecentRanked возвращает последние рейтинговые матчи аккаунта,
	// от свежих к старым.
	ListRecentRanked(ctx context.Context, steamID SteamID, limit int) ([]*Match, error)

	// ListInRange возвращает матчи, начавшиеся в окне [from, to],
	// от свежих к старым. Используется для дневного отчёта.
	ListInRange(ctx context.Context, steamID SteamID, from, to time.Time) ([]*Match, error)

	// SumRankedDeltas суммирует применённые шаги условного MMR по
	// рейтинговым матчам, начавшимся в окне [from, to].
	SumRankedDeltas(ctx context.Context, steamID SteamID, from, to time.Time) (int, error)

	// RoleStats возвращает агрегаты по ролям из сохранённой истории.
	// Матчи без выведенной роли не участвуют.
	RoleStats(ctx context.Context, steamID SteamID) ([]RoleStat, error)

	// HeroAggregates возвращает агрегаты по героям из сохранённой истории,
	// отсортированные по числу игр.
	HeroAggregates(ctx context.Context, steamID SteamID) ([]HeroAggregate, error)

	// Count возвращает количество сохранённых матчей аккаунта.
	Count(ctx context.Context, steamID SteamID) (int, error)
}
