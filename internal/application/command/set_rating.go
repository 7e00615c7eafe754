package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET RATING COMMAND
// Pins the simulated rating to the exact MMR the player reported
// ("mmr 4340"). Manual values take precedence over tier estimates and the
// simulation walks from here on.
// ══════════════════════════════════════════════════════════════════════════════

// SetRatingCommand contains the data to set an exact rating.
type SetRatingCommand struct {
	// TelegramID is the chat user.
	TelegramID int64

	// Rating is the exact MMR reported by the player.
	Rating int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SetRatingCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("set_rating: telegram_id is required")
	}
	if c.Rating < account.MinRatingValue || c.Rating > account.MaxRatingValue {
		return fmt.Errorf("set_rating: %w", account.ErrInvalidRating)
	}
	return nil
}

// SetRatingResult contains the result of setting a rating.
type SetRatingResult struct {
	// OldRating is the previous value. Zero when the rating was unknown.
	OldRating int

	// NewRating is the pinned value.
	NewRating int

	// MaxRating is the high-water mark after the write.
	MaxRating int
}

// SetRatingConfig contains the command settings.
type SetRatingConfig struct {
	// Timeout bounds the command.
	Timeout time.Duration
}

// DefaultSetRatingConfig returns the default configuration.
func DefaultSetRatingConfig() SetRatingConfig {
	return SetRatingConfig{Timeout: 10 * time.Second}
}

// SetRatingHandler handles the SetRatingCommand.
type SetRatingHandler struct {
	accountRepo    account.Repository
	accountCache   account.Cache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	config         SetRatingConfig
}

// NewSetRatingHandler creates a new SetRatingHandler.
func NewSetRatingHandler(
	accountRepo account.Repository,
	accountCache account.Cache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config SetRatingConfig,
) *SetRatingHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SetRatingHandler{
		accountRepo:    accountRepo,
		accountCache:   accountCache,
		eventPublisher: eventPublisher,
		logger:         logger.With("command", "set_rating"),
		config:         config,
	}
}

// Handle executes the set rating command.
func (h *SetRatingHandler) Handle(
	ctx context.Context,
	cmd SetRatingCommand,
) (*SetRatingResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	acc, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(cmd.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("set_rating: load account: %w", err)
	}

	oldRating, _ := acc.EffectiveRating()

	if err := acc.SetManualRating(cmd.Rating); err != nil {
		return nil, fmt.Errorf("set_rating: %w", err)
	}

	if err := h.accountRepo.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("set_rating: save: %w", err)
	}

	if h.accountCache != nil {
		_ = h.accountCache.Delete(ctx, acc.TelegramID)
	}

	if h.eventPublisher != nil {
		event := shared.NewRatingManualSetEvent(cmd.TelegramID, oldRating, cmd.Rating)
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish rating set event", "error", err)
		}
	}

	h.logger.Info("manual rating set",
		"telegram_id", cmd.TelegramID,
		"old_rating", oldRating,
		"new_rating", cmd.Rating,
	)

	return &SetRatingResult{
		OldRating: oldRating,
		NewRating: cmd.Rating,
		MaxRating: acc.MaxRating,
	}, nil
}
