// Package postgres implements the PostgreSQL persistence layer of the bot.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AccountRepository implements account.Repository for PostgreSQL.
type AccountRepository struct {
	conn *Connection
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

const accountColumns = `
	telegram_id, steam32, persona_name, rating, rating_source, max_rating,
	rank_tier, last_match_id, last_ranked_match_id, preferences,
	created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Upsert creates a binding or replaces the existing one for the Telegram ID.
// Rebinding to another game account is a normal operation, not an error.
func (r *AccountRepository) Upsert(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO linked_accounts (
			telegram_id, steam32, persona_name, rating, rating_source, max_rating,
			rank_tier, last_match_id, last_ranked_match_id, preferences,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (telegram_id) DO UPDATE SET
			steam32 = EXCLUDED.steam32,
			persona_name = EXCLUDED.persona_name,
			rating = EXCLUDED.rating,
			rating_source = EXCLUDED.rating_source,
			max_rating = EXCLUDED.max_rating,
			rank_tier = EXCLUDED.rank_tier,
			last_match_id = EXCLUDED.last_match_id,
			last_ranked_match_id = EXCLUDED.last_ranked_match_id,
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at
	`

	prefsJSON, err := json.Marshal(preferencesToMap(acc.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		acc.TelegramID.Int64(),
		acc.SteamID.Int64(),
		acc.PersonaName,
		ratingValue(acc.Rating),
		string(acc.Rating.Source),
		maxRatingValue(acc),
		acc.RankTier.Int(),
		acc.LastMatchID,
		acc.LastRankedMatchID,
		prefsJSON,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// GetByTelegramID returns a binding by Telegram ID.
func (r *AccountRepository) GetByTelegramID(ctx context.Context, telegramID account.TelegramID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE telegram_id = $1`

	row := r.conn.QueryRow(ctx, query, telegramID.Int64())
	return r.scanAccount(row)
}

// GetBySteamID returns a binding by game account id.
func (r *AccountRepository) GetBySteamID(ctx context.Context, steamID account.SteamID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE steam32 = $1 LIMIT 1`

	row := r.conn.QueryRow(ctx, query, steamID.Int64())
	return r.scanAccount(row)
}

// Update updates an existing binding.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE linked_accounts SET
			steam32 = $1,
			persona_name = $2,
			rating = $3,
			rating_source = $4,
			max_rating = $5,
			rank_tier = $6,
			last_match_id = $7,
			last_ranked_match_id = $8,
			preferences = $9,
			updated_at = $10
		WHERE telegram_id = $11
	`

	prefsJSON, err := json.Marshal(preferencesToMap(acc.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		acc.SteamID.Int64(),
		acc.PersonaName,
		ratingValue(acc.Rating),
		string(acc.Rating.Source),
		maxRatingValue(acc),
		acc.RankTier.Int(),
		acc.LastMatchID,
		acc.LastRankedMatchID,
		prefsJSON,
		time.Now().UTC(),
		acc.TelegramID.Int64(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// Delete removes a binding.
func (r *AccountRepository) Delete(ctx context.Context, telegramID account.TelegramID) error {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM linked_accounts WHERE telegram_id = $1",
		telegramID.Int64(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns every binding. The poll cycle walks this list.
func (r *AccountRepository) GetAll(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts ORDER BY created_at`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	return r.scanAccounts(rows)
}

// Count returns the number of bindings.
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM linked_accounts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// ExistsByTelegramID checks whether a binding exists.
func (r *AccountRepository) ExistsByTelegramID(ctx context.Context, telegramID account.TelegramID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM linked_accounts WHERE telegram_id = $1)",
		telegramID.Int64(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	var telegramID, steam32 int64
	var rating, maxRating *int
	var ratingSource string
	var rankTier int
	var prefsJSON []byte

	err := row.Scan(
		&telegramID,
		&steam32,
		&acc.PersonaName,
		&rating,
		&ratingSource,
		&maxRating,
		&rankTier,
		&acc.LastMatchID,
		&acc.LastRankedMatchID,
		&prefsJSON,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	acc.TelegramID = account.TelegramID(telegramID)
	acc.SteamID = account.SteamID(steam32)
	acc.Rating = ratingFromColumns(rating, ratingSource)
	if maxRating != nil {
		acc.MaxRating = *maxRating
	}
	acc.RankTier = account.RankTier(rankTier)
	acc.Preferences = mapToPreferences(prefsJSON)

	return &acc, nil
}

func (r *AccountRepository) scanAccounts(rows pgx.Rows) ([]*account.Account, error) {
	accounts := make([]*account.Account, 0)
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Column Mapping
// ─────────────────────────────────────────────────────────────────────────────

// ratingValue returns the rating column value: NULL when unset.
func ratingValue(r account.Rating) *int {
	if !r.IsSet() {
		return nil
	}
	v := r.Value
	return &v
}

// maxRatingValue returns the max_rating column value: NULL when no rating
// has ever been known.
func maxRatingValue(acc *account.Account) *int {
	if !acc.Rating.IsSet() && acc.MaxRating == 0 {
		return nil
	}
	v := acc.MaxRating
	return &v
}

// ratingFromColumns restores the tagged rating from its two columns.
func ratingFromColumns(value *int, source string) account.Rating {
	if value == nil {
		return account.UnsetRating()
	}
	switch account.RatingSource(source) {
	case account.RatingSourceManual:
		return account.ManualRating(*value)
	case account.RatingSourceEstimated:
		return account.EstimatedRating(*value)
	default:
		return account.UnsetRating()
	}
}

// preferencesToMap converts preferences to the JSONB shape.
func preferencesToMap(prefs account.NotificationPreferences) map[string]bool {
	return map[string]bool{
		"match_card":   prefs.MatchCards,
		"streak_alert": prefs.StreakAlerts,
		"rank_alert":   prefs.RankAlerts,
		"daily_report": prefs.DailyReport,
	}
}

// mapToPreferences restores preferences from JSONB, falling back to the
// defaults on any malformed payload.
func mapToPreferences(data []byte) account.NotificationPreferences {
	prefs := account.DefaultNotificationPreferences()
	if len(data) == 0 {
		return prefs
	}

	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return prefs
	}

	if v, ok := m["match_card"]; ok {
		prefs.MatchCards = v
	}
	if v, ok := m["streak_alert"]; ok {
		prefs.StreakAlerts = v
	}
	if v, ok := m["rank_alert"]; ok {
		prefs.RankAlerts = v
	}
	if v, ok := m["daily_report"]; ok {
		prefs.DailyReport = v
	}
	return prefs
}
