package messaging

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestInMemoryBusDeliversToTypedHandler(t *testing.T) {
	bus := syncBus()

	var got shared.Event
	err := bus.Subscribe(shared.EventMatchRecorded, func(e shared.Event) error {
		got = e
		return nil
	})
	assert.NoError(t, err)

	event := shared.NewMatchRecordedEvent(1, 100, 7000000001, 14, true, true, 30)
	assert.NoError(t, bus.Publish(event))

	assert.NotNil(t, got)
	assert.Equal(t, shared.EventMatchRecorded, got.EventType())
	assert.Equal(t, "1", got.AggregateID())
}

func TestInMemoryBusSkipsOtherTypes(t *testing.T) {
	bus := syncBus()

	var calls int32
	_ = bus.Subscribe(shared.EventRatingChanged, func(e shared.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	event := shared.NewMatchRecordedEvent(1, 100, 7000000001, 14, true, false, 0)
	assert.NoError(t, bus.Publish(event))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestInMemoryBusGlobalHandlerSeesEverything(t *testing.T) {
	bus := syncBus()

	var calls int32
	_ = bus.SubscribeAll(func(e shared.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	assert.NoError(t, bus.Publish(shared.NewMatchRecordedEvent(1, 100, 1, 14, true, false, 0)))
	assert.NoError(t, bus.Publish(shared.NewRatingChangedEvent(1, 1, 3000, 3030)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInMemoryBusClosedRejectsPublish(t *testing.T) {
	bus := syncBus()
	assert.NoError(t, bus.Close())

	err := bus.Publish(shared.NewMatchRecordedEvent(1, 100, 1, 14, true, false, 0))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestDispatcherRetriesThenDeadLetters(t *testing.T) {
	bus := syncBus()
	cfg := DefaultDispatcherConfig(bus)
	cfg.RetryConfig = RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	d := NewDispatcher(cfg)
	defer d.Stop()

	var attempts int32
	err := d.RegisterSync(shared.EventRatingChanged, "always-fails", func(e shared.Event) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("send failed")
	})
	assert.NoError(t, err)

	err = d.Dispatch(shared.NewRatingChangedEvent(1, 1, 3000, 2970))
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, d.DeadLetterQueue().Size())

	entry, ok := d.DeadLetterQueue().Pop()
	assert.True(t, ok)
	assert.Equal(t, "always-fails", entry.HandlerName)
	assert.Equal(t, 3, entry.Attempts)
}

func TestDispatcherRecoveryMiddleware(t *testing.T) {
	bus := syncBus()
	cfg := DefaultDispatcherConfig(bus)
	cfg.RetryConfig.MaxRetries = 1
	cfg.RetryConfig.InitialBackoff = time.Millisecond
	d := NewDispatcher(cfg)
	defer d.Stop()

	d.Use(RecoveryMiddleware(slog.Default()))

	_ = d.RegisterSync(shared.EventSyncCompleted, "panics", func(e shared.Event) error {
		panic("boom")
	})

	err := d.Dispatch(shared.NewSyncCompletedEvent(3, 1, 0, time.Second))
	assert.Error(t, err)
}

func TestDispatcherMetrics(t *testing.T) {
	bus := syncBus()
	d := NewDispatcher(DefaultDispatcherConfig(bus))
	defer d.Stop()

	d.Use(MetricsMiddleware(d.Metrics()))

	_ = d.RegisterSync(shared.EventMatchRecorded, "ok", func(e shared.Event) error {
		return nil
	})

	assert.NoError(t, d.Dispatch(shared.NewMatchRecordedEvent(1, 100, 1, 14, true, true, 30)))

	snap := d.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalDispatched)
	assert.Equal(t, int64(1), snap.TotalExecutions)
	assert.Equal(t, 1.0, snap.SuccessRate)
}
