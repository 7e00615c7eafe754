// Package postgres implements the PostgreSQL persistence layer of the bot.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MatchRepository implements match.Repository for PostgreSQL.
type MatchRepository struct {
	conn *Connection
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(conn *Connection) *MatchRepository {
	return &MatchRepository{conn: conn}
}

const matchColumns = `
	steam32, match_id, start_time, duration, hero_id, kills, deaths, assists,
	lobby_type, game_mode, radiant_win, player_slot, net_worth, gpm, role,
	rating_delta, rating_after, created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// Write Operations
// ─────────────────────────────────────────────────────────────────────────────

// Upsert inserts a match record or refreshes the existing one. The
// (steam32, match_id) key makes re-seeing a match idempotent.
func (r *MatchRepository) Upsert(ctx context.Context, m *match.Match) error {
	query := `
		INSERT INTO matches (
			steam32, match_id, start_time, duration, hero_id, kills, deaths, assists,
			lobby_type, game_mode, radiant_win, player_slot, net_worth, gpm, role,
			rating_delta, rating_after, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (steam32, match_id) DO UPDATE SET
			duration = EXCLUDED.duration,
			kills = EXCLUDED.kills,
			deaths = EXCLUDED.deaths,
			assists = EXCLUDED.assists,
			radiant_win = EXCLUDED.radiant_win,
			net_worth = COALESCE(EXCLUDED.net_worth, matches.net_worth),
			gpm = COALESCE(EXCLUDED.gpm, matches.gpm),
			role = CASE WHEN EXCLUDED.role <> '' THEN EXCLUDED.role ELSE matches.role END,
			rating_delta = COALESCE(EXCLUDED.rating_delta, matches.rating_delta),
			rating_after = COALESCE(EXCLUDED.rating_after, matches.rating_after),
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		m.SteamID.Int64(),
		m.MatchID.Int64(),
		m.StartTime,
		m.Duration,
		m.HeroID,
		m.Kills,
		m.Deaths,
		m.Assists,
		int(m.LobbyType),
		int(m.GameMode),
		m.RadiantWin,
		m.PlayerSlot,
		m.NetWorth,
		m.GPM,
		string(m.Role),
		m.RatingDelta,
		m.RatingAfter,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns one match record.
func (r *MatchRepository) GetByID(ctx context.Context, steamID match.SteamID, matchID match.MatchID) (*match.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE steam32 = $1 AND match_id = $2`

	row := r.conn.QueryRow(ctx, query, steamID.Int64(), matchID.Int64())
	return r.scanMatch(row)
}

// ListRecent returns the account's latest matches, newest first.
func (r *MatchRepository) ListRecent(ctx context.Context, steamID match.SteamID, limit int) ([]*match.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE steam32 = $1
		ORDER BY start_time DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, steamID.Int64(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// ListRecentRanked returns the account's latest ranked matches, newest first.
func (r *MatchRepository) ListRecentRanked(ctx context.Context, steamID match.SteamID, limit int) ([]*match.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE steam32 = $1 AND lobby_type = $2
		ORDER BY start_time DESC
		LIMIT $3
	`

	rows, err := r.conn.Query(ctx, query, steamID.Int64(), int(match.LobbyRanked), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ranked matches: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// ListInRange returns matches that started inside [from, to], newest first.
func (r *MatchRepository) ListInRange(ctx context.Context, steamID match.SteamID, from, to time.Time) ([]*match.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE steam32 = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time DESC
	`

	rows, err := r.conn.Query(ctx, query, steamID.Int64(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches in range: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// SumRankedDeltas sums the applied rating steps over ranked matches that
// started inside [from, to].
func (r *MatchRepository) SumRankedDeltas(ctx context.Context, steamID match.SteamID, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(rating_delta), 0)
		FROM matches
		WHERE steam32 = $1
		  AND lobby_type = $2
		  AND rating_delta IS NOT NULL
		  AND start_time >= $3 AND start_time <= $4
	`

	var sum int
	err := r.conn.QueryRow(ctx, query,
		steamID.Int64(), int(match.LobbyRanked), from, to,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ranked deltas: %w", err)
	}
	return sum, nil
}

// Count returns the number of stored matches for the account.
func (r *MatchRepository) Count(ctx context.Context, steamID match.SteamID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM matches WHERE steam32 = $1",
		steamID.Int64(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregates
// ─────────────────────────────────────────────────────────────────────────────

// RoleStats returns games and wins per inferred role. Matches without an
// inferred role are left out.
func (r *MatchRepository) RoleStats(ctx context.Context, steamID match.SteamID) ([]match.RoleStat, error) {
	query := `
		SELECT role,
		       COUNT(*) AS games,
		       COUNT(*) FILTER (WHERE (player_slot < 128) = radiant_win) AS wins
		FROM matches
		WHERE steam32 = $1 AND role <> ''
		GROUP BY role
		ORDER BY games DESC
	`

	rows, err := r.conn.Query(ctx, query, steamID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to query role stats: %w", err)
	}
	defer rows.Close()

	stats := make([]match.RoleStat, 0, 2)
	for rows.Next() {
		var role string
		var stat match.RoleStat
		if err := rows.Scan(&role, &stat.Games, &stat.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan role stat: %w", err)
		}
		stat.Role = match.Role(role)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// HeroAggregates returns per-hero games, wins and average net worth from
// the stored history, most played first.
func (r *MatchRepository) HeroAggregates(ctx context.Context, steamID match.SteamID) ([]match.HeroAggregate, error) {
	query := `
		SELECT hero_id,
		       COUNT(*) AS games,
		       COUNT(*) FILTER (WHERE (player_slot < 128) = radiant_win) AS wins,
		       COALESCE(AVG(net_worth), 0) AS avg_net_worth
		FROM matches
		WHERE steam32 = $1 AND hero_id > 0
		GROUP BY hero_id
		ORDER BY games DESC, wins DESC
	`

	rows, err := r.conn.Query(ctx, query, steamID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to query hero aggregates: %w", err)
	}
	defer rows.Close()

	aggregates := make([]match.HeroAggregate, 0)
	for rows.Next() {
		var agg match.HeroAggregate
		if err := rows.Scan(&agg.HeroID, &agg.Games, &agg.Wins, &agg.AvgNetWorth); err != nil {
			return nil, fmt.Errorf("failed to scan hero aggregate: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *MatchRepository) scanMatch(row pgx.Row) (*match.Match, error) {
	var m match.Match
	var steam32, matchID int64
	var lobbyType, gameMode int
	var role string

	err := row.Scan(
		&steam32,
		&matchID,
		&m.StartTime,
		&m.Duration,
		&m.HeroID,
		&m.Kills,
		&m.Deaths,
		&m.Assists,
		&lobbyType,
		&gameMode,
		&m.RadiantWin,
		&m.PlayerSlot,
		&m.NetWorth,
		&m.GPM,
		&role,
		&m.RatingDelta,
		&m.RatingAfter,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, match.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	m.SteamID = match.SteamID(steam32)
	m.MatchID = match.MatchID(matchID)
	m.LobbyType = match.LobbyType(lobbyType)
	m.GameMode = match.GameMode(gameMode)
	m.Role = match.Role(role)

	return &m, nil
}

func (r *MatchRepository) scanMatches(rows pgx.Rows) ([]*match.Match, error) {
	matches := make([]*match.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
