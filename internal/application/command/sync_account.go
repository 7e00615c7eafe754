package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC ACCOUNT COMMAND
// Runs the reconciliation pass for a single account on demand, outside the
// scheduled cycle. The pass itself lives in the scheduler job; this command
// only targets it at one player.
// ══════════════════════════════════════════════════════════════════════════════

// AccountSyncer runs one reconciliation pass for a single account.
// Implemented by the scheduled match sync job.
type AccountSyncer interface {
	SyncAccount(ctx context.Context, acc *account.Account) (int, error)
}

// SyncAccountCommand contains the data to sync one account.
type SyncAccountCommand struct {
	// TelegramID is the chat user whose account to sync.
	TelegramID int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SyncAccountCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("sync_account: telegram_id is required")
	}
	return nil
}

// SyncAccountResult contains the result of a single-account sync.
type SyncAccountResult struct {
	// NewMatches is how many new matches the pass recorded.
	NewMatches int

	// SyncedAt is when the pass finished.
	SyncedAt time.Time
}

// SyncAccountConfig contains the command settings.
type SyncAccountConfig struct {
	// Timeout bounds the pass.
	Timeout time.Duration
}

// DefaultSyncAccountConfig returns the default configuration.
func DefaultSyncAccountConfig() SyncAccountConfig {
	return SyncAccountConfig{Timeout: 60 * time.Second}
}

// SyncAccountHandler handles the SyncAccountCommand.
type SyncAccountHandler struct {
	accountRepo account.Repository
	syncer      AccountSyncer
	logger      *slog.Logger
	config      SyncAccountConfig
}

// NewSyncAccountHandler creates a new SyncAccountHandler.
func NewSyncAccountHandler(
	accountRepo account.Repository,
	syncer AccountSyncer,
	logger *slog.Logger,
	config SyncAccountConfig,
) *SyncAccountHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncAccountHandler{
		accountRepo: accountRepo,
		syncer:      syncer,
		logger:      logger.With("command", "sync_account"),
		config:      config,
	}
}

// Handle executes the sync account command.
func (h *SyncAccountHandler) Handle(
	ctx context.Context,
	cmd SyncAccountCommand,
) (*SyncAccountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(cmd.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("sync_account: load account: %w", err)
	}

	newMatches, err := h.syncer.SyncAccount(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("sync_account: %w", err)
	}

	h.logger.Info("on-demand sync finished",
		"telegram_id", cmd.TelegramID,
		"new_matches", newMatches,
	)

	return &SyncAccountResult{
		NewMatches: newMatches,
		SyncedAt:   time.Now().UTC(),
	}, nil
}
