package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

func TestStatusCardShowsExactRating(t *testing.T) {
	p := NewStatusCardPresenter()

	card := p.Format(&query.StatusDTO{
		PersonaName: "Dendi",
		SteamID:     86745912,
		RankName:    "Legend 4",
		Rating:      account.ManualRating(4340),
		MaxRating:   4400,
	}, nil)

	assert.Contains(t, card, "<b>🏆 Статус аккаунта</b>")
	assert.Contains(t, card, "👤 Ник: <b>Dendi</b>")
	assert.Contains(t, card, "🆔 Steam32: <b>86745912</b>")
	assert.Contains(t, card, "🏅 Ранг: <b>Legend 4</b>")
	assert.Contains(t, card, "📈 MMR: <b>4340 (точный)</b>")
	assert.Contains(t, card, "🔝 Макс. MMR: <b>4400</b>")
}

func TestStatusCardEstimatedAndUnsetRating(t *testing.T) {
	p := NewStatusCardPresenter()

	estimated := p.Format(&query.StatusDTO{Rating: account.EstimatedRating(3200)}, nil)
	assert.Contains(t, estimated, "📈 MMR: <b>~3200 (оценка)</b>")

	unset := p.Format(&query.StatusDTO{Rating: account.UnsetRating()}, nil)
	assert.Contains(t, unset, "📈 MMR: <b>—</b>")
	assert.Contains(t, unset, "🔝 Макс. MMR: <b>—</b>")
}

func TestStatusCardProgressLine(t *testing.T) {
	p := NewStatusCardPresenter()
	toNext := 100

	card := p.Format(&query.StatusDTO{
		Rating:        account.ManualRating(3300),
		MMRToNextStar: &toNext,
	}, nil)

	assert.Contains(t, card, "🧭 до следующей звезды ≈ 100 MMR")
}

func TestStatusCardDashesForEmptyProfile(t *testing.T) {
	p := NewStatusCardPresenter()

	card := p.Format(&query.StatusDTO{Rating: account.UnsetRating()}, nil)

	assert.Contains(t, card, "👤 Ник: <b>—</b>")
	assert.Contains(t, card, "🏅 Ранг: <b>—</b>")
	assert.Contains(t, card, "🕓 Последний матч:\n—")
}

func TestStatusCardUnrankedMedalIsDash(t *testing.T) {
	p := NewStatusCardPresenter()

	card := p.Format(&query.StatusDTO{
		RankName: "Unranked",
		Rating:   account.UnsetRating(),
	}, nil)

	assert.Contains(t, card, "🏅 Ранг: <b>—</b>")
}

func TestStatusCardLastMatchBlock(t *testing.T) {
	p := NewStatusCardPresenter()
	heroes := map[int]string{14: "Pudge"}

	card := p.Format(&query.StatusDTO{
		Rating: account.ManualRating(4000),
		LastMatch: &query.LastMatchDTO{
			MatchID:   7654321,
			StartTime: time.Date(2026, 8, 25, 18, 30, 0, 0, time.UTC),
			HeroID:    14,
			GameMode:  "All Pick",
			Won:       true,
			Kills:     12,
			Deaths:    3,
			Assists:   9,
		},
	}, heroes)

	assert.Contains(t, card, "Pudge — All Pick | ✅ Победа | 12/3/9")
	assert.Contains(t, card, `<a href="https://www.opendota.com/matches/7654321">OpenDota</a>`)
	// 18:30 UTC is 21:30 in Moscow
	assert.Contains(t, card, "25.08.2026 21:30 МСК")
}

func TestStatusCardEscapesPersonaName(t *testing.T) {
	p := NewStatusCardPresenter()

	card := p.Format(&query.StatusDTO{
		PersonaName: "<pro> & co",
		Rating:      account.UnsetRating(),
	}, nil)

	assert.Contains(t, card, "👤 Ник: <b>&lt;pro&gt; &amp; co</b>")
}

func TestHeroNameFallsBackToID(t *testing.T) {
	require.Equal(t, "Pudge", HeroName(map[int]string{14: "Pudge"}, 14))
	require.Equal(t, "Hero 99", HeroName(map[int]string{14: "Pudge"}, 99))
	require.Equal(t, "Hero 1", HeroName(nil, 1))
}
