package opendota

import (
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER (Anti-Corruption Layer)
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts API DTOs into domain objects. It is the only place that
// knows both shapes; the domain stays free of upstream field names.
type Mapper struct{}

// NewMapper creates a mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MatchFromSummary builds a domain match record from a player match list
// entry. Economy fields stay empty until details are applied.
func (m *Mapper) MatchFromSummary(steamID int64, dto PlayerMatchDTO) (*match.Match, error) {
	return match.NewMatch(match.NewMatchParams{
		SteamID:    match.SteamID(steamID),
		MatchID:    match.MatchID(dto.MatchID),
		StartTime:  timeutil.FromUnix(dto.StartTime),
		Duration:   dto.Duration,
		HeroID:     dto.HeroID,
		Kills:      dto.Kills,
		Deaths:     dto.Deaths,
		Assists:    dto.Assists,
		LobbyType:  match.LobbyType(dto.LobbyType),
		GameMode:   match.GameMode(dto.GameMode),
		RadiantWin: dto.RadiantWin,
		PlayerSlot: dto.PlayerSlot,
	})
}

// RoleSignalsFromDetail extracts the tracked player's economy and purchase
// history from a match detail. Returns ok=false when the player is
// anonymous in this match and nothing can be extracted.
func (m *Mapper) RoleSignalsFromDetail(detail *MatchDetailDTO, steamID int64) (netWorth, gpm *int, signals match.RoleSignals, ok bool) {
	if detail == nil {
		return nil, nil, match.RoleSignals{}, false
	}
	player := detail.FindPlayer(steamID)
	if player == nil {
		return nil, nil, match.RoleSignals{}, false
	}

	signals = match.RoleSignals{
		Purchases: player.PurchaseKeys(),
	}
	if player.GoldPerMin != nil {
		signals.GPM = *player.GoldPerMin
	}
	return player.NetWorth, player.GoldPerMin, signals, true
}

// RankTierFromPlayer extracts the medal from a player profile.
func (m *Mapper) RankTierFromPlayer(dto *PlayerDTO) account.RankTier {
	if dto == nil {
		return account.RankUnknown
	}
	return account.RankTier(dto.RankTier)
}

// HeroNames builds a hero id to localized name dictionary.
func (m *Mapper) HeroNames(dtos []HeroDTO) map[int]string {
	names := make(map[int]string, len(dtos))
	for _, dto := range dtos {
		names[dto.ID] = dto.LocalizedName
	}
	return names
}

// GameModeNames builds a mode id to name dictionary from the constants
// table.
func (m *Mapper) GameModeNames(table GameModeTable) map[int]string {
	names := make(map[int]string, len(table))
	for _, dto := range table {
		names[dto.ID] = dto.Name
	}
	return names
}
