// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/match"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK ACCOUNT COMMAND
// Binds a Telegram user to a game account. Verifies the account against the
// public statistics service, seeds recent match history silently and sets the
// watermarks so the next reconciliation pass does not replay old games.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileSource is the slice of the statistics client the bind flow needs.
type ProfileSource interface {
	// Player fetches the profile. Returns shared.ErrProfileNotFound for
	// accounts the service does not know, (nil, nil) when degraded.
	Player(ctx context.Context, accountID int64) (*opendota.PlayerDTO, error)

	// Matches fetches the most recent matches, newest first.
	Matches(ctx context.Context, accountID int64, limit int) ([]opendota.PlayerMatchDTO, error)
}

// Command-level errors the presentation layer tells apart.
var (
	// ErrProfileNotVerified - the statistics service does not know the account.
	ErrProfileNotVerified = errors.New("link_account: profile not found or hidden")

	// ErrUpstreamUnavailable - the statistics service gave no answer.
	ErrUpstreamUnavailable = errors.New("link_account: statistics service unavailable")
)

// LinkAccountCommand contains the data to bind an account.
type LinkAccountCommand struct {
	// TelegramID is the chat user performing the bind.
	TelegramID int64

	// Input is the raw user text: a 32- or 64-bit account id, or a
	// dotabuff/opendota profile URL.
	Input string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c LinkAccountCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("link_account: telegram_id is required")
	}
	if c.Input == "" {
		return errors.New("link_account: input is required")
	}
	return nil
}

// LinkAccountResult contains the result of binding an account.
type LinkAccountResult struct {
	// SteamID is the bound 32-bit account id.
	SteamID account.SteamID

	// PersonaName is the profile name at bind time.
	PersonaName string

	// RankTier is the profile medal at bind time (RankUnknown when hidden).
	RankTier account.RankTier

	// Rebound is true when the user replaced a previous bind.
	Rebound bool

	// Backfilled is how many matches were imported silently.
	Backfilled int
}

// LinkAccountConfig contains the bind flow settings.
type LinkAccountConfig struct {
	// BackfillLimit is how many recent matches to import at bind time.
	BackfillLimit int

	// Timeout bounds the whole bind flow.
	Timeout time.Duration
}

// DefaultLinkAccountConfig returns the default configuration.
func DefaultLinkAccountConfig() LinkAccountConfig {
	return LinkAccountConfig{
		BackfillLimit: 20,
		Timeout:       30 * time.Second,
	}
}

// LinkAccountHandler handles the LinkAccountCommand.
type LinkAccountHandler struct {
	accountRepo    account.Repository
	accountCache   account.Cache
	matchRepo      match.Repository
	profiles       ProfileSource
	mapper         *opendota.Mapper
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	config         LinkAccountConfig
}

// NewLinkAccountHandler creates a new LinkAccountHandler.
func NewLinkAccountHandler(
	accountRepo account.Repository,
	accountCache account.Cache,
	matchRepo match.Repository,
	profiles ProfileSource,
	mapper *opendota.Mapper,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config LinkAccountConfig,
) *LinkAccountHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &LinkAccountHandler{
		accountRepo:    accountRepo,
		accountCache:   accountCache,
		matchRepo:      matchRepo,
		profiles:       profiles,
		mapper:         mapper,
		eventPublisher: eventPublisher,
		logger:         logger.With("command", "link_account"),
		config:         config,
	}
}

// Handle executes the link account command.
func (h *LinkAccountHandler) Handle(
	ctx context.Context,
	cmd LinkAccountCommand,
) (*LinkAccountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("link_account: validation failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	steamID, err := account.ParseSteamID(cmd.Input)
	if err != nil {
		return nil, fmt.Errorf("link_account: %w", err)
	}

	// Verify the account exists before persisting anything.
	player, err := h.profiles.Player(ctx, steamID.Int64())
	if errors.Is(err, shared.ErrProfileNotFound) {
		return nil, ErrProfileNotVerified
	}
	if err != nil {
		return nil, fmt.Errorf("link_account: verify profile: %w", err)
	}
	if player == nil {
		return nil, ErrUpstreamUnavailable
	}

	tier := h.mapper.RankTierFromPlayer(player)
	personaName := ""
	if player.Profile != nil {
		personaName = player.Profile.Personaname
	}

	acc, rebound, err := h.bindOrRebind(ctx, cmd.TelegramID, steamID, tier, personaName)
	if err != nil {
		return nil, err
	}

	backfilled := h.backfillHistory(ctx, acc)

	if err := h.accountRepo.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("link_account: save watermarks: %w", err)
	}

	if h.accountCache != nil {
		_ = h.accountCache.Delete(ctx, acc.TelegramID)
	}

	if h.eventPublisher != nil {
		event := shared.NewAccountBoundEvent(cmd.TelegramID, steamID.Int64(), backfilled)
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish account bound event", "error", err)
		}
	}

	h.logger.Info("account bound",
		"telegram_id", cmd.TelegramID,
		"steam_id", steamID.Int64(),
		"rebound", rebound,
		"backfilled", backfilled,
	)

	return &LinkAccountResult{
		SteamID:     steamID,
		PersonaName: personaName,
		RankTier:    tier,
		Rebound:     rebound,
		Backfilled:  backfilled,
	}, nil
}

// bindOrRebind creates a new bind or points the existing one at a new
// game account.
func (h *LinkAccountHandler) bindOrRebind(
	ctx context.Context,
	telegramID int64,
	steamID account.SteamID,
	tier account.RankTier,
	personaName string,
) (*account.Account, bool, error) {
	existing, err := h.accountRepo.GetByTelegramID(ctx, account.TelegramID(telegramID))
	switch {
	case err == nil:
		if err := existing.Rebind(steamID, tier); err != nil {
			return nil, false, fmt.Errorf("link_account: rebind: %w", err)
		}
		existing.SetPersonaName(personaName)
		if err := h.accountRepo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("link_account: save rebind: %w", err)
		}
		return existing, true, nil

	case errors.Is(err, account.ErrAccountNotFound):
		acc, err := account.NewAccount(account.NewAccountParams{
			TelegramID:  account.TelegramID(telegramID),
			SteamID:     steamID,
			RankTier:    tier,
			PersonaName: personaName,
		})
		if err != nil {
			return nil, false, fmt.Errorf("link_account: %w", err)
		}
		if err := h.accountRepo.Upsert(ctx, acc); err != nil {
			return nil, false, fmt.Errorf("link_account: save bind: %w", err)
		}
		return acc, false, nil

	default:
		return nil, false, fmt.Errorf("link_account: load existing bind: %w", err)
	}
}

// backfillHistory imports recent matches without notifications and raises
// the watermarks past them, seeding history for streaks and reports.
// Failures here are not fatal: the reconciliation loop catches up later.
func (h *LinkAccountHandler) backfillHistory(ctx context.Context, acc *account.Account) int {
	summaries, err := h.profiles.Matches(ctx, acc.SteamID.Int64(), h.config.BackfillLimit)
	if err != nil || len(summaries) == 0 {
		if err != nil {
			h.logger.Warn("backfill fetch failed",
				"steam_id", acc.SteamID.Int64(),
				"error", err,
			)
		}
		return 0
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].MatchID < summaries[j].MatchID
	})

	backfilled := 0
	for _, dto := range summaries {
		m, err := h.mapper.MatchFromSummary(acc.SteamID.Int64(), dto)
		if err != nil {
			h.logger.Warn("skipping malformed match during backfill",
				"match_id", dto.MatchID,
				"error", err,
			)
			continue
		}

		if err := h.matchRepo.Upsert(ctx, m); err != nil {
			h.logger.Warn("backfill upsert failed",
				"match_id", dto.MatchID,
				"error", err,
			)
			continue
		}

		acc.AdvanceMatchWatermark(m.MatchID.Int64())
		if m.IsRanked() {
			acc.AdvanceRankedWatermark(m.MatchID.Int64())
		}
		backfilled++
	}

	return backfilled
}
