package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNLINK ACCOUNT COMMAND
// Removes the bind between a Telegram user and a game account. Recorded
// matches stay in the store; a later re-bind of the same account picks the
// history back up.
// ══════════════════════════════════════════════════════════════════════════════

// UnlinkAccountCommand contains the data to remove a bind.
type UnlinkAccountCommand struct {
	// TelegramID is the chat user.
	TelegramID int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UnlinkAccountCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("unlink_account: telegram_id is required")
	}
	return nil
}

// UnlinkAccountResult contains the result of removing a bind.
type UnlinkAccountResult struct {
	// SteamID is the game account that was unbound.
	SteamID account.SteamID
}

// UnlinkAccountHandler handles the UnlinkAccountCommand.
type UnlinkAccountHandler struct {
	accountRepo    account.Repository
	accountCache   account.Cache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewUnlinkAccountHandler creates a new UnlinkAccountHandler.
func NewUnlinkAccountHandler(
	accountRepo account.Repository,
	accountCache account.Cache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *UnlinkAccountHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &UnlinkAccountHandler{
		accountRepo:    accountRepo,
		accountCache:   accountCache,
		eventPublisher: eventPublisher,
		logger:         logger.With("command", "unlink_account"),
	}
}

// Handle executes the unlink account command.
func (h *UnlinkAccountHandler) Handle(
	ctx context.Context,
	cmd UnlinkAccountCommand,
) (*UnlinkAccountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(cmd.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("unlink_account: load account: %w", err)
	}

	if err := h.accountRepo.Delete(ctx, acc.TelegramID); err != nil {
		return nil, fmt.Errorf("unlink_account: delete: %w", err)
	}

	if h.accountCache != nil {
		_ = h.accountCache.Delete(ctx, acc.TelegramID)
	}

	if h.eventPublisher != nil {
		event := shared.NewAccountUnboundEvent(cmd.TelegramID, acc.SteamID.Int64())
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish account unbound event", "error", err)
		}
	}

	h.logger.Info("account unbound",
		"telegram_id", cmd.TelegramID,
		"steam_id", acc.SteamID.Int64(),
	)

	return &UnlinkAccountResult{SteamID: acc.SteamID}, nil
}
