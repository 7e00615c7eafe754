package messaging

import (
	"context"

	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/persistence/redis"
)

// CachePubSub adapts the redis package's Cache to the RedisClient
// interface the event bus consumes.
type CachePubSub struct {
	cache *redis.Cache
}

// NewCachePubSub creates a new adapter around the given cache.
func NewCachePubSub(cache *redis.Cache) *CachePubSub {
	return &CachePubSub{cache: cache}
}

// Publish implements RedisClient. Goes through the raw client: the bus
// serializes envelopes itself, so the cache's JSON layer must not wrap
// them a second time.
func (a *CachePubSub) Publish(ctx context.Context, channel string, message interface{}) error {
	return a.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe implements RedisClient. The returned channel closes when the
// subscription drops or ctx is cancelled.
func (a *CachePubSub) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	sub := a.cache.Subscribe(ctx, channels...)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan RedisMessage)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close implements RedisClient. The underlying cache is shared and owned
// by the caller, so Close is a no-op here.
func (a *CachePubSub) Close() error {
	return nil
}
