// Package service wires domain ports to their infrastructure
// implementations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dotapulse/dota-pulse-bot/config"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationService implements notification.Sender. Before delivery it
// checks the feature flag for the notification type and the recipient's
// own preferences; every outcome, including skips, lands in the delivery
// log.
type NotificationService struct {
	mu       sync.RWMutex
	channels map[notification.ChannelType]notification.NotificationChannel

	accounts account.Repository
	flags    *config.FeatureFlags
	log      NotificationLog
	logger   *slog.Logger
}

// NotificationLog records delivery attempts for the ops surface.
type NotificationLog interface {
	Record(ctx context.Context, n *notification.Notification) error
}

// NewNotificationService creates the sender. The flags and log arguments
// may be nil; a nil flag set allows everything.
func NewNotificationService(
	accounts account.Repository,
	flags *config.FeatureFlags,
	log NotificationLog,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		channels: make(map[notification.ChannelType]notification.NotificationChannel),
		accounts: accounts,
		flags:    flags,
		log:      log,
		logger:   logger,
	}
}

// RegisterChannel registers a delivery channel.
func (s *NotificationService) RegisterChannel(channel notification.NotificationChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[channel.Type()] = channel
}

// Send delivers one notification through the first supporting channel.
func (s *NotificationService) Send(ctx context.Context, n *notification.Notification) notification.DeliveryResult {
	if !s.featureEnabled(n) {
		n.MarkSkipped()
		s.record(ctx, n)
		return notification.NewFailureResult("", notification.ErrSkippedByPreferences, false)
	}

	if skipped := s.skippedByPreferences(ctx, n); skipped {
		n.MarkSkipped()
		s.record(ctx, n)
		return notification.NewFailureResult("", notification.ErrSkippedByPreferences, false)
	}

	channel, err := s.pickChannel(ctx, n)
	if err != nil {
		n.MarkFailed(err)
		s.record(ctx, n)
		return notification.NewFailureResult("", err, true)
	}

	result := channel.Send(ctx, n, notification.DefaultDeliveryOptions())
	if result.Success {
		n.MarkSent()
	} else {
		n.MarkFailed(result.Error)
		s.logger.Warn("notification delivery failed",
			"type", string(n.Type),
			"chat_id", n.TelegramChatID.Int64(),
			"retryable", result.Retryable,
			"error", result.Error,
		)
	}
	s.record(ctx, n)

	return result
}

// featureEnabled checks the feature flag for the notification type.
// System messages are command replies and never gated.
func (s *NotificationService) featureEnabled(n *notification.Notification) bool {
	if s.flags == nil || n.Type == notification.TypeSystem {
		return true
	}

	feature, ok := featureForType(n.Type)
	if !ok {
		return true
	}

	return s.flags.IsEnabled(feature, &config.FeatureContext{UserID: n.TelegramChatID.Int64()})
}

// featureForType maps a notification type to its feature flag.
func featureForType(typ notification.Type) (string, bool) {
	switch typ {
	case notification.TypeMatchCard:
		return config.FeatureNotifyMatchCard, true
	case notification.TypeStreakAlert:
		return config.FeatureNotifyStreakAlert, true
	case notification.TypeRankAlert:
		return config.FeatureNotifyRankChange, true
	case notification.TypeDailyReport:
		return config.FeatureNotifyDailyReport, true
	default:
		return "", false
	}
}

// skippedByPreferences checks the recipient's own notification settings.
// An unbound recipient has no settings to consult.
func (s *NotificationService) skippedByPreferences(ctx context.Context, n *notification.Notification) bool {
	key := n.Type.PreferenceKey()
	if key == "" || s.accounts == nil {
		return false
	}

	acc, err := s.accounts.GetByTelegramID(ctx, account.TelegramID(n.TelegramChatID.Int64()))
	if err != nil {
		if !errors.Is(err, account.ErrAccountNotFound) {
			s.logger.Warn("failed to load recipient preferences",
				"chat_id", n.TelegramChatID.Int64(),
				"error", err,
			)
		}
		return false
	}

	return !acc.CanReceiveNotification(key)
}

// pickChannel returns the first registered channel that supports the
// recipient and is currently available.
func (s *NotificationService) pickChannel(ctx context.Context, n *notification.Notification) (notification.NotificationChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.channels) == 0 {
		return nil, notification.ErrChannelNotFound
	}

	// Telegram is the primary channel; try it first.
	if channel, ok := s.channels[notification.ChannelTypeTelegram]; ok {
		if channel.SupportsRecipient(n) && channel.IsAvailable(ctx) {
			return channel, nil
		}
	}

	for _, channel := range s.channels {
		if channel.SupportsRecipient(n) && channel.IsAvailable(ctx) {
			return channel, nil
		}
	}

	return nil, notification.ErrChannelUnavailable
}

// record writes the delivery outcome to the log, best effort.
func (s *NotificationService) record(ctx context.Context, n *notification.Notification) {
	if s.log == nil {
		return
	}
	if err := s.log.Record(ctx, n); err != nil {
		s.logger.Warn("failed to record notification",
			"id", n.ID,
			"error", err,
		)
	}
}
