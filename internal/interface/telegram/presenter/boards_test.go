package presenter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
)

func intPtr(v int) *int { return &v }

func TestMatchListHeaders(t *testing.T) {
	p := NewMatchListPresenter()

	all := p.Format(&query.RecentMatchesDTO{RankedOnly: false}, nil)
	assert.Contains(t, all, "<b>🎮 Последние 10 матчей (все режимы)</b>")

	ranked := p.Format(&query.RecentMatchesDTO{RankedOnly: true}, nil)
	assert.Contains(t, ranked, "<b>🏆 Последние 10 рейтинговых матчей</b>")
}

func TestMatchListLineWithRatingStep(t *testing.T) {
	p := NewMatchListPresenter()

	text := p.Format(&query.RecentMatchesDTO{
		Matches: []query.MatchLineDTO{{
			MatchID:     555,
			StartTime:   time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
			HeroID:      1,
			GameMode:    "Ranked All Pick",
			Won:         true,
			Ranked:      true,
			Kills:       10,
			Deaths:      2,
			Assists:     8,
			KDA:         9.0,
			RatingDelta: intPtr(30),
			RatingAfter: intPtr(4030),
		}},
	}, map[int]string{1: "Anti-Mage"})

	assert.Contains(t, text, "1) 20.08.2026 12:00 МСК — Anti-Mage — Ranked All Pick — ✅ — 10/2/8 (KDA 9.00)")
	assert.Contains(t, text, "| ▲ +30 (MMR 4030)")
	assert.Contains(t, text, `<a href="https://www.opendota.com/matches/555">match</a>`)
}

func TestMatchListLineLossArrow(t *testing.T) {
	p := NewMatchListPresenter()

	text := p.Format(&query.RecentMatchesDTO{
		Matches: []query.MatchLineDTO{{
			HeroID:      1,
			GameMode:    "Ranked All Pick",
			Won:         false,
			RatingDelta: intPtr(-30),
			RatingAfter: intPtr(3970),
		}},
	}, nil)

	assert.Contains(t, text, "❌")
	assert.Contains(t, text, "| ▼ -30 (MMR 3970)")
}

func TestMatchListLineWithoutRatingStep(t *testing.T) {
	p := NewMatchListPresenter()

	text := p.Format(&query.RecentMatchesDTO{
		Matches: []query.MatchLineDTO{{HeroID: 2, GameMode: "Turbo", Won: true}},
	}, nil)

	assert.NotContains(t, text, "MMR")
}

func TestHeroBoardHeadersPerBoard(t *testing.T) {
	p := NewHeroBoardPresenter()

	games := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardGames}, nil)
	assert.Contains(t, games, "🧙 <b>Топ 15 по играм</b>")

	wr := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardWinRate}, nil)
	assert.Contains(t, wr, "🧙 <b>Топ 15 по винрейту (≥10 игр)</b>")

	kda := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardKDA}, nil)
	assert.Contains(t, kda, "🧙 <b>Топ 15 по KDA (≥10 игр)</b>")
}

func TestHeroBoardLineOrder(t *testing.T) {
	p := NewHeroBoardPresenter()
	lines := []query.HeroLineDTO{{HeroID: 14, Games: 42, WinRate: 57, KDA: 3.41}}
	heroes := map[int]string{14: "Pudge"}

	byGames := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardGames, Lines: lines}, heroes)
	assert.Contains(t, byGames, "1) Pudge — игр: 42, WR: 57%, KDA: 3.41")

	// KDA board leads with KDA
	byKDA := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardKDA, Lines: lines}, heroes)
	assert.Contains(t, byKDA, "1) Pudge — игр: 42, KDA: 3.41, WR: 57%")
}

func TestHeroBoardEmptyFallback(t *testing.T) {
	p := NewHeroBoardPresenter()

	text := p.FormatBoard(&query.HeroBoardDTO{Board: query.HeroBoardGames}, nil)

	assert.Contains(t, text, "Пока нет сыгранных героев.")
}

func TestAnalyticsSections(t *testing.T) {
	p := NewHeroBoardPresenter()

	text := p.FormatAnalytics(&query.HeroAnalyticsDTO{
		ByWinRate: []query.HeroAnalyticsLineDTO{
			{HeroID: 14, Games: 20, WinRate: 65},
		},
		ByNetWorth: []query.HeroAnalyticsLineDTO{
			{HeroID: 1, Games: 8, AvgNetWorth: 21500},
		},
	}, map[int]string{14: "Pudge", 1: "Anti-Mage"})

	require.True(t, strings.Index(text, "🏅") < strings.Index(text, "💰"))
	assert.Contains(t, text, "1) Pudge — WR 65% (20 игр)")
	assert.Contains(t, text, "💰 <b>Топ по среднему Net Worth (≥5 игр)</b>")
	assert.Contains(t, text, "1) Anti-Mage — NW 21500 (игр: 8)")
}

func TestAnalyticsEmptySections(t *testing.T) {
	p := NewHeroBoardPresenter()

	text := p.FormatAnalytics(&query.HeroAnalyticsDTO{}, nil)

	assert.Equal(t, 2, strings.Count(text, "Недостаточно сохранённых игр."))
}

func TestRoleStatsText(t *testing.T) {
	text := FormatRoleStats(&query.RoleStatsDTO{
		Core:    query.RoleLineDTO{Games: 20, Wins: 12, WinRate: 60},
		Support: query.RoleLineDTO{Games: 10, Wins: 4, WinRate: 40},
	})

	assert.Equal(t, "🎭 <b>Винрейт по ролям</b>\n• Core: игр 20, побед 12, WR 60%\n• Support: игр 10, побед 4, WR 40%", text)
}

func TestChartCaptions(t *testing.T) {
	activity := ActivityCaption(&query.ActivityDTO{Total: 12, AvgPerDay: 1.7})
	assert.Equal(t, "📈 Активность за 7 дн.\n• Всего игр: 12\n• В среднем/день: 1.7", activity)

	trend := TrendCaption(&query.RatingTrendDTO{StartRating: 4000})
	assert.Equal(t, "📉 Тренд MMR (условный). Точка старта: 4000", trend)
}
