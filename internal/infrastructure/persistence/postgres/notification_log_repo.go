// Package postgres implements the PostgreSQL persistence layer of the bot.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION LOG REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// NotificationLogRepository records delivery outcomes for diagnostics.
// The message body is deliberately not stored.
type NotificationLogRepository struct {
	conn *Connection
}

// NewNotificationLogRepository creates a new NotificationLogRepository.
func NewNotificationLogRepository(conn *Connection) *NotificationLogRepository {
	return &NotificationLogRepository{conn: conn}
}

// Record writes one delivery outcome.
func (r *NotificationLogRepository) Record(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notification_log (
			id, telegram_id, type, status, attempts, last_error, created_at, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			attempts = EXCLUDED.attempts,
			last_error = EXCLUDED.last_error,
			sent_at = EXCLUDED.sent_at
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID,
		n.TelegramChatID.Int64(),
		string(n.Type),
		string(n.Status),
		n.Attempts,
		n.LastError,
		n.CreatedAt,
		n.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// CountSince returns delivery counts per status since the given time.
func (r *NotificationLogRepository) CountSince(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM notification_log
		WHERE created_at >= $1
		GROUP BY status
	`

	rows, err := r.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan notification count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DeleteOlderThan prunes old log rows. Returns the number deleted.
func (r *NotificationLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM notification_log WHERE created_at < $1",
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notification log: %w", err)
	}
	return result.RowsAffected(), nil
}
