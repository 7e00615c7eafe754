package presenter

import (
	"fmt"
	"strings"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH LIST PRESENTER
// Formats the last-10 match lists. Ranked matches that went through the
// reconciler carry the applied simulated-MMR step and show it inline.
// ══════════════════════════════════════════════════════════════════════════════

// MatchListPresenter formats RecentMatchesDTO for Telegram display.
type MatchListPresenter struct{}

// NewMatchListPresenter creates a new MatchListPresenter.
func NewMatchListPresenter() *MatchListPresenter {
	return &MatchListPresenter{}
}

// Format renders the match list as HTML.
func (p *MatchListPresenter) Format(dto *query.RecentMatchesDTO, heroes map[int]string) string {
	header := "<b>🎮 Последние 10 матчей (все режимы)</b>"
	if dto.RankedOnly {
		header = "<b>🏆 Последние 10 рейтинговых матчей</b>"
	}

	lines := make([]string, 0, len(dto.Matches)+1)
	lines = append(lines, header)

	for i, m := range dto.Matches {
		lines = append(lines, p.formatLine(i+1, m, heroes))
	}

	return strings.Join(lines, "\n")
}

func (p *MatchListPresenter) formatLine(n int, m query.MatchLineDTO, heroes map[int]string) string {
	outcome := "❌"
	if m.Won {
		outcome = "✅"
	}

	ratingStr := ""
	if m.RatingDelta != nil && m.RatingAfter != nil {
		arrow := "•"
		if *m.RatingDelta > 0 {
			arrow = "▲"
		} else if *m.RatingDelta < 0 {
			arrow = "▼"
		}
		ratingStr = fmt.Sprintf(" | %s %+d (MMR %d)", arrow, *m.RatingDelta, *m.RatingAfter)
	}

	return fmt.Sprintf("%d) %s — %s — %s — %s — %d/%d/%d (KDA %.2f)%s — <a href=\"%s\">match</a>",
		n,
		timeutil.FormatMoscow(m.StartTime, "02.01.2006 15:04")+" МСК",
		EscapeHTML(HeroName(heroes, m.HeroID)),
		m.GameMode,
		outcome,
		m.Kills, m.Deaths, m.Assists, m.KDA,
		ratingStr,
		fmt.Sprintf(openDotaMatchURL, m.MatchID),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// HERO BOARD PRESENTER
// Formats the career hero boards and the stored-history analytics view.
// ══════════════════════════════════════════════════════════════════════════════

// HeroBoardPresenter formats hero boards for Telegram display.
type HeroBoardPresenter struct{}

// NewHeroBoardPresenter creates a new HeroBoardPresenter.
func NewHeroBoardPresenter() *HeroBoardPresenter {
	return &HeroBoardPresenter{}
}

// FormatBoard renders a career hero board as HTML.
func (p *HeroBoardPresenter) FormatBoard(dto *query.HeroBoardDTO, heroes map[int]string) string {
	var header string
	switch dto.Board {
	case query.HeroBoardWinRate:
		header = "🧙 <b>Топ 15 по винрейту (≥10 игр)</b>"
	case query.HeroBoardKDA:
		header = "🧙 <b>Топ 15 по KDA (≥10 игр)</b>"
	default:
		header = "🧙 <b>Топ 15 по играм</b>"
	}

	lines := make([]string, 0, len(dto.Lines)+1)
	lines = append(lines, header)

	for i, h := range dto.Lines {
		name := EscapeHTML(HeroName(heroes, h.HeroID))
		if dto.Board == query.HeroBoardKDA {
			lines = append(lines, fmt.Sprintf("%d) %s — игр: %d, KDA: %.2f, WR: %.0f%%",
				i+1, name, h.Games, h.KDA, h.WinRate))
		} else {
			lines = append(lines, fmt.Sprintf("%d) %s — игр: %d, WR: %.0f%%, KDA: %.2f",
				i+1, name, h.Games, h.WinRate, h.KDA))
		}
	}

	if len(dto.Lines) == 0 {
		lines = append(lines, "Пока нет сыгранных героев.")
	}

	return strings.Join(lines, "\n")
}

// FormatAnalytics renders the stored-history analytics view as HTML.
func (p *HeroBoardPresenter) FormatAnalytics(dto *query.HeroAnalyticsDTO, heroes map[int]string) string {
	lines := []string{"🏅 <b>Топ по винрейту (≥10 игр)</b>"}

	for i, h := range dto.ByWinRate {
		lines = append(lines, fmt.Sprintf("%d) %s — WR %.0f%% (%d игр)",
			i+1, EscapeHTML(HeroName(heroes, h.HeroID)), h.WinRate, h.Games))
	}
	if len(dto.ByWinRate) == 0 {
		lines = append(lines, "Недостаточно сохранённых игр.")
	}

	lines = append(lines, "", "💰 <b>Топ по среднему Net Worth (≥5 игр)</b>")

	for i, h := range dto.ByNetWorth {
		lines = append(lines, fmt.Sprintf("%d) %s — NW %.0f (игр: %d)",
			i+1, EscapeHTML(HeroName(heroes, h.HeroID)), h.AvgNetWorth, h.Games))
	}
	if len(dto.ByNetWorth) == 0 {
		lines = append(lines, "Недостаточно сохранённых игр.")
	}

	return strings.Join(lines, "\n")
}

// ══════════════════════════════════════════════════════════════════════════════
// ROLE STATS PRESENTER
// ══════════════════════════════════════════════════════════════════════════════

// FormatRoleStats renders the core/support win-rate split as HTML.
func FormatRoleStats(dto *query.RoleStatsDTO) string {
	return fmt.Sprintf("🎭 <b>Винрейт по ролям</b>\n• Core: игр %d, побед %d, WR %.0f%%\n• Support: игр %d, побед %d, WR %.0f%%",
		dto.Core.Games, dto.Core.Wins, dto.Core.WinRate,
		dto.Support.Games, dto.Support.Wins, dto.Support.WinRate,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHART CAPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// ActivityCaption renders the caption under the 7-day activity chart.
func ActivityCaption(dto *query.ActivityDTO) string {
	return fmt.Sprintf("📈 Активность за 7 дн.\n• Всего игр: %d\n• В среднем/день: %.1f",
		dto.Total, dto.AvgPerDay)
}

// TrendCaption renders the caption under the simulated-MMR trend chart.
func TrendCaption(dto *query.RatingTrendDTO) string {
	return fmt.Sprintf("📉 Тренд MMR (условный). Точка старта: %d", dto.StartRating)
}
