// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Account events
	EventAccountBound    EventType = "account.bound"
	EventAccountUnbound  EventType = "account.unbound"
	EventRatingManualSet EventType = "account.rating_set"

	// Match events
	EventMatchRecorded EventType = "match.recorded"

	// Rating events
	EventRatingChanged   EventType = "rating.changed"
	EventRankTierChanged EventType = "rating.tier_changed"

	// Streak events
	EventStreakThresholdHit EventType = "streak.threshold_hit"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"

	// System events
	EventSyncCompleted   EventType = "system.sync_completed"
	EventDailyReportSent EventType = "system.daily_report_sent"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event. Aggregates in this system are
// keyed by the owner's Telegram ID.
func NewBaseEvent(eventType EventType, telegramID int64) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: strconv.FormatInt(telegramID, 10),
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Account Events
// ═══════════════════════════════════════════════════════════════════════════

// AccountBoundEvent is emitted when a chat user links a game account.
type AccountBoundEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	SteamID    int64 `json:"steam_id"`
	Backfilled int   `json:"backfilled"` // matches imported silently at bind time
}

// Payload implements Event interface.
func (e AccountBoundEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"steam_id":    e.SteamID,
		"backfilled":  e.Backfilled,
	}
}

// NewAccountBoundEvent creates a new AccountBoundEvent.
func NewAccountBoundEvent(telegramID, steamID int64, backfilled int) AccountBoundEvent {
	return AccountBoundEvent{
		BaseEvent:  NewBaseEvent(EventAccountBound, telegramID),
		TelegramID: telegramID,
		SteamID:    steamID,
		Backfilled: backfilled,
	}
}

// AccountUnboundEvent is emitted when a chat user removes the link to a
// game account.
type AccountUnboundEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	SteamID    int64 `json:"steam_id"`
}

// Payload implements Event interface.
func (e AccountUnboundEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"steam_id":    e.SteamID,
	}
}

// NewAccountUnboundEvent creates a new AccountUnboundEvent.
func NewAccountUnboundEvent(telegramID, steamID int64) AccountUnboundEvent {
	return AccountUnboundEvent{
		BaseEvent:  NewBaseEvent(EventAccountUnbound, telegramID),
		TelegramID: telegramID,
		SteamID:    steamID,
	}
}

// RatingManualSetEvent is emitted when the user pins the simulated rating
// to an exact value.
type RatingManualSetEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	OldRating  int   `json:"old_rating"` // zero when the rating was unknown
	NewRating  int   `json:"new_rating"`
}

// Payload implements Event interface.
func (e RatingManualSetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"old_rating":  e.OldRating,
		"new_rating":  e.NewRating,
	}
}

// NewRatingManualSetEvent creates a new RatingManualSetEvent.
func NewRatingManualSetEvent(telegramID int64, oldRating, newRating int) RatingManualSetEvent {
	return RatingManualSetEvent{
		BaseEvent:  NewBaseEvent(EventRatingManualSet, telegramID),
		TelegramID: telegramID,
		OldRating:  oldRating,
		NewRating:  newRating,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Match Events
// ═══════════════════════════════════════════════════════════════════════════

// MatchRecordedEvent is emitted when the poller persists a newly detected match.
type MatchRecordedEvent struct {
	BaseEvent
	TelegramID  int64 `json:"telegram_id"`
	SteamID     int64 `json:"steam_id"`
	MatchID     int64 `json:"match_id"`
	HeroID      int   `json:"hero_id"`
	Won         bool  `json:"won"`
	Ranked      bool  `json:"ranked"`
	RatingDelta int   `json:"rating_delta"` // zero for unranked matches
}

// Payload implements Event interface.
func (e MatchRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id":  e.TelegramID,
		"steam_id":     e.SteamID,
		"match_id":     e.MatchID,
		"hero_id":      e.HeroID,
		"won":          e.Won,
		"ranked":       e.Ranked,
		"rating_delta": e.RatingDelta,
	}
}

// NewMatchRecordedEvent creates a new MatchRecordedEvent.
func NewMatchRecordedEvent(telegramID, steamID, matchID int64, heroID int, won, ranked bool, ratingDelta int) MatchRecordedEvent {
	return MatchRecordedEvent{
		BaseEvent:   NewBaseEvent(EventMatchRecorded, telegramID),
		TelegramID:  telegramID,
		SteamID:     steamID,
		MatchID:     matchID,
		HeroID:      heroID,
		Won:         won,
		Ranked:      ranked,
		RatingDelta: ratingDelta,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Rating Events
// ═══════════════════════════════════════════════════════════════════════════

// RatingChangedEvent is emitted when a ranked match moves the simulated rating.
type RatingChangedEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	MatchID    int64 `json:"match_id"`
	OldRating  int   `json:"old_rating"`
	NewRating  int   `json:"new_rating"`
	Delta      int   `json:"delta"`
}

// Payload implements Event interface.
func (e RatingChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"match_id":    e.MatchID,
		"old_rating":  e.OldRating,
		"new_rating":  e.NewRating,
		"delta":       e.Delta,
	}
}

// NewRatingChangedEvent creates a new RatingChangedEvent.
func NewRatingChangedEvent(telegramID, matchID int64, oldRating, newRating int) RatingChangedEvent {
	return RatingChangedEvent{
		BaseEvent:  NewBaseEvent(EventRatingChanged, telegramID),
		TelegramID: telegramID,
		MatchID:    matchID,
		OldRating:  oldRating,
		NewRating:  newRating,
		Delta:      newRating - oldRating,
	}
}

// Gained returns true if the rating went up.
func (e RatingChangedEvent) Gained() bool {
	return e.Delta > 0
}

// Lost returns true if the rating went down.
func (e RatingChangedEvent) Lost() bool {
	return e.Delta < 0
}

// RankTierChangedEvent is emitted when the upstream profile reports a new
// rank medal for the player.
type RankTierChangedEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	SteamID    int64 `json:"steam_id"`
	OldTier    int   `json:"old_tier"`
	NewTier    int   `json:"new_tier"`
}

// Payload implements Event interface.
func (e RankTierChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"steam_id":    e.SteamID,
		"old_tier":    e.OldTier,
		"new_tier":    e.NewTier,
	}
}

// NewRankTierChangedEvent creates a new RankTierChangedEvent.
func NewRankTierChangedEvent(telegramID, steamID int64, oldTier, newTier int) RankTierChangedEvent {
	return RankTierChangedEvent{
		BaseEvent:  NewBaseEvent(EventRankTierChanged, telegramID),
		TelegramID: telegramID,
		SteamID:    steamID,
		OldTier:    oldTier,
		NewTier:    newTier,
	}
}

// Promoted returns true if the new medal is higher than the old one.
func (e RankTierChangedEvent) Promoted() bool {
	return e.NewTier > e.OldTier
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Events
// ═══════════════════════════════════════════════════════════════════════════

// StreakKind distinguishes winning from losing streaks.
type StreakKind string

const (
	StreakWin  StreakKind = "win"
	StreakLose StreakKind = "lose"
)

// StreakThresholdHitEvent is emitted when a freshly recorded match leaves the
// player on a streak at or past the alert threshold.
type StreakThresholdHitEvent struct {
	BaseEvent
	TelegramID int64      `json:"telegram_id"`
	Kind       StreakKind `json:"kind"`
	Length     int        `json:"length"`
}

// Payload implements Event interface.
func (e StreakThresholdHitEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"kind":        string(e.Kind),
		"length":      e.Length,
	}
}

// NewStreakThresholdHitEvent creates a new StreakThresholdHitEvent.
func NewStreakThresholdHitEvent(telegramID int64, kind StreakKind, length int) StreakThresholdHitEvent {
	return StreakThresholdHitEvent{
		BaseEvent:  NewBaseEvent(EventStreakThresholdHit, telegramID),
		TelegramID: telegramID,
		Kind:       kind,
		Length:     length,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// SyncCompletedEvent is emitted after the poller finishes a full pass over
// all linked accounts.
type SyncCompletedEvent struct {
	BaseEvent
	Accounts   int           `json:"accounts"`
	NewMatches int           `json:"new_matches"`
	Failures   int           `json:"failures"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Payload implements Event interface.
func (e SyncCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"accounts":    e.Accounts,
		"new_matches": e.NewMatches,
		"failures":    e.Failures,
		"elapsed":     e.Elapsed.String(),
	}
}

// NewSyncCompletedEvent creates a new SyncCompletedEvent.
func NewSyncCompletedEvent(accounts, newMatches, failures int, elapsed time.Duration) SyncCompletedEvent {
	return SyncCompletedEvent{
		BaseEvent:  NewBaseEvent(EventSyncCompleted, 0),
		Accounts:   accounts,
		NewMatches: newMatches,
		Failures:   failures,
		Elapsed:    elapsed,
	}
}

// DailyReportSentEvent is emitted after the end-of-day summary reaches
// a player.
type DailyReportSentEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	Games      int   `json:"games"`
}

// Payload implements Event interface.
func (e DailyReportSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"games":       e.Games,
	}
}

// NewDailyReportSentEvent creates a new DailyReportSentEvent.
func NewDailyReportSentEvent(telegramID int64, games int) DailyReportSentEvent {
	return DailyReportSentEvent{
		BaseEvent:  NewBaseEvent(EventDailyReportSent, telegramID),
		TelegramID: telegramID,
		Games:      games,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
