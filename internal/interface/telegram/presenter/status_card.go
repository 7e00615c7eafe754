package presenter

import (
	"fmt"
	"strings"

	"github.com/dotapulse/dota-pulse-bot/internal/application/query"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS CARD PRESENTER
// Formats the account status view: persona, medal, simulated MMR with its
// origin, progress to the next star and the latest stored match.
// ══════════════════════════════════════════════════════════════════════════════

const openDotaMatchURL = "https://www.opendota.com/matches/%d"

// StatusCardPresenter formats StatusDTO for Telegram display.
type StatusCardPresenter struct{}

// NewStatusCardPresenter creates a new StatusCardPresenter.
func NewStatusCardPresenter() *StatusCardPresenter {
	return &StatusCardPresenter{}
}

// Format renders the status card as HTML.
func (p *StatusCardPresenter) Format(dto *query.StatusDTO, heroes map[int]string) string {
	var sb strings.Builder

	sb.WriteString("<b>🏆 Статус аккаунта</b>\n")
	sb.WriteString(fmt.Sprintf("👤 Ник: <b>%s</b>\n", EscapeHTML(orDash(dto.PersonaName))))
	sb.WriteString(fmt.Sprintf("🆔 Steam32: <b>%d</b>\n", dto.SteamID))
	sb.WriteString(fmt.Sprintf("🏅 Ранг: <b>%s</b>\n", rankLabel(dto.RankName)))
	sb.WriteString(fmt.Sprintf("📈 MMR: <b>%s</b>\n", ratingLabel(dto.Rating)))

	if dto.MMRToNextStar != nil {
		sb.WriteString(fmt.Sprintf("🧭 до следующей звезды ≈ %d MMR\n", *dto.MMRToNextStar))
	}

	if dto.MaxRating > 0 {
		sb.WriteString(fmt.Sprintf("🔝 Макс. MMR: <b>%d</b>\n", dto.MaxRating))
	} else {
		sb.WriteString("🔝 Макс. MMR: <b>—</b>\n")
	}

	sb.WriteString("🕓 Последний матч:\n")
	sb.WriteString(p.formatLastMatch(dto.LastMatch, heroes))

	return sb.String()
}

// formatLastMatch renders the last-match block, or a dash when there is
// no stored history yet.
func (p *StatusCardPresenter) formatLastMatch(m *query.LastMatchDTO, heroes map[int]string) string {
	if m == nil {
		return "—"
	}

	outcome := "❌ Поражение"
	if m.Won {
		outcome = "✅ Победа"
	}

	return fmt.Sprintf("%s\n%s — %s | %s | %d/%d/%d\n<a href=\"%s\">OpenDota</a>",
		timeutil.FormatMoscow(m.StartTime, "02.01.2006 15:04")+" МСК",
		EscapeHTML(HeroName(heroes, m.HeroID)),
		m.GameMode,
		outcome,
		m.Kills, m.Deaths, m.Assists,
		fmt.Sprintf(openDotaMatchURL, m.MatchID),
	)
}

// ratingLabel renders the simulated MMR with its origin tag.
func ratingLabel(r account.Rating) string {
	switch {
	case r.IsExact():
		return fmt.Sprintf("%d (точный)", r.Value)
	case r.IsSet():
		return fmt.Sprintf("~%d (оценка)", r.Value)
	default:
		return "—"
	}
}

func rankLabel(name string) string {
	if name == "" || name == "Unranked" {
		return "—"
	}
	return name
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// HeroName resolves a hero id against the dictionary, falling back to a
// numeric placeholder when the dictionary has no entry.
func HeroName(heroes map[int]string, heroID int) string {
	if name, ok := heroes[heroID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Hero %d", heroID)
}

// EscapeHTML escapes text for Telegram HTML parse mode.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
