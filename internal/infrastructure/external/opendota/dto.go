// Package opendota implements the OpenDota API client.
// This package handles all communication with the public match statistics
// service: player profiles, match lists, match details and static dictionaries.
package opendota

import (
	"encoding/json"
	"strconv"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER DTOs
// ══════════════════════════════════════════════════════════════════════════════

// PlayerDTO represents a player profile as returned by /players/{account_id}.
type PlayerDTO struct {
	// Profile is nil for accounts OpenDota has never seen. Bind verification
	// treats that the same as a 404.
	Profile *ProfileDTO `json:"profile"`

	// RankTier encodes the medal as major*10+minor (54 = Legend 4).
	// Zero or absent when the profile hides its rank.
	RankTier int `json:"rank_tier"`

	// LeaderboardRank is the Immortal leaderboard position, if any.
	LeaderboardRank int `json:"leaderboard_rank,omitempty"`
}

// ProfileDTO contains the public part of a player profile.
type ProfileDTO struct {
	AccountID   int64  `json:"account_id"`
	Personaname string `json:"personaname"`
	Avatar      string `json:"avatarfull,omitempty"`
	ProfileURL  string `json:"profileurl,omitempty"`
}

// HasProfile reports whether the account is known to the statistics service.
func (p *PlayerDTO) HasProfile() bool {
	return p != nil && p.Profile != nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH DTOs
// ══════════════════════════════════════════════════════════════════════════════

// PlayerMatchDTO represents one entry of /players/{id}/matches and
// /players/{id}/recentMatches: the tracked player's view of one match.
type PlayerMatchDTO struct {
	MatchID    int64 `json:"match_id"`
	PlayerSlot int   `json:"player_slot"`
	RadiantWin bool  `json:"radiant_win"`
	StartTime  int64 `json:"start_time"`
	Duration   int   `json:"duration"`
	GameMode   int   `json:"game_mode"`
	LobbyType  int   `json:"lobby_type"`
	HeroID     int   `json:"hero_id"`
	Kills      int   `json:"kills"`
	Deaths     int   `json:"deaths"`
	Assists    int   `json:"assists"`
}

// MatchDetailDTO represents /matches/{match_id}: the full match with all
// ten participants. Only the fields the tracker reads are mapped.
type MatchDetailDTO struct {
	MatchID    int64               `json:"match_id"`
	RadiantWin bool                `json:"radiant_win"`
	Duration   int                 `json:"duration"`
	StartTime  int64               `json:"start_time"`
	Players    []MatchPlayerDTO    `json:"players"`
}

// MatchPlayerDTO is one participant inside a match detail.
type MatchPlayerDTO struct {
	AccountID   int64             `json:"account_id"`
	PlayerSlot  int               `json:"player_slot"`
	HeroID      int               `json:"hero_id"`
	NetWorth    *int              `json:"net_worth"`
	GoldPerMin  *int              `json:"gold_per_min"`
	PurchaseLog []PurchaseLogDTO  `json:"purchase_log"`
}

// PurchaseLogDTO is one item purchase event.
type PurchaseLogDTO struct {
	Time int    `json:"time"`
	Key  string `json:"key"`
}

// PurchaseKeys returns the item keys from the purchase log.
func (p *MatchPlayerDTO) PurchaseKeys() []string {
	keys := make([]string, 0, len(p.PurchaseLog))
	for _, entry := range p.PurchaseLog {
		keys = append(keys, entry.Key)
	}
	return keys
}

// FindPlayer returns the participant with the given account id, or nil if
// the player is anonymous in this match.
func (m *MatchDetailDTO) FindPlayer(accountID int64) *MatchPlayerDTO {
	for i := range m.Players {
		if m.Players[i].AccountID == accountID {
			return &m.Players[i]
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// PlayerHeroDTO represents one entry of /players/{id}/heroes.
// OpenDota serialises hero_id as a string in this endpoint.
type PlayerHeroDTO struct {
	HeroID     string `json:"hero_id"`
	LastPlayed int64  `json:"last_played"`
	Games      int    `json:"games"`
	Win        int    `json:"win"`
	WithGames  int    `json:"with_games"`
	WithWin    int    `json:"with_win"`

	// Aggregate score fields. Absent on older API responses, then zero.
	Kills   int `json:"k"`
	Deaths  int `json:"d"`
	Assists int `json:"a"`
}

// HeroIDInt returns the hero id as an int, zero if unparseable.
func (h *PlayerHeroDTO) HeroIDInt() int {
	id, err := strconv.Atoi(h.HeroID)
	if err != nil {
		return 0
	}
	return id
}

// WinRate returns the win percentage (0-100).
func (h *PlayerHeroDTO) WinRate() float64 {
	if h.Games == 0 {
		return 0
	}
	return float64(h.Win) / float64(h.Games) * 100
}

// KDA returns (kills+assists)/deaths, with zero deaths counted as one.
func (h *PlayerHeroDTO) KDA() float64 {
	d := h.Deaths
	if d < 1 {
		d = 1
	}
	return float64(h.Kills+h.Assists) / float64(d)
}

// WinLossDTO represents /players/{id}/wl.
type WinLossDTO struct {
	Win  int `json:"win"`
	Lose int `json:"lose"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STATIC DICTIONARY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// HeroDTO represents one entry of /heroes.
type HeroDTO struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	PrimaryAttr   string `json:"primary_attr,omitempty"`
}

// GameModeDTO represents one entry of /constants/game_mode. The endpoint
// returns a map keyed by mode id as a string.
type GameModeDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GameModeTable is the raw shape of /constants/game_mode.
type GameModeTable map[string]GameModeDTO

// UnmarshalGameModes parses the /constants/game_mode payload.
func UnmarshalGameModes(body []byte) (GameModeTable, error) {
	var table GameModeTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, err
	}
	return table, nil
}
