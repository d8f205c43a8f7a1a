package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
)

// InvalidationBus broadcasts schema changes over a Redis pub/sub channel.
// Delivery is at-most-once; a replica that misses a message still expires
// its cache after the freshness window.
type InvalidationBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

// NewInvalidationBus wraps client. The bus does not own the client; Close
// leaves it open for the readiness probe.
func NewInvalidationBus(client *redis.Client, channel string, log zerolog.Logger) *InvalidationBus {
	return &InvalidationBus{client: client, channel: channel, log: log}
}

func (b *InvalidationBus) Publish(ctx context.Context, change domain.SchemaChange) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish schema change: %w", err)
	}
	return nil
}

// Subscribe blocks, handing every decoded change to handle, until ctx is
// cancelled. Malformed payloads are logged and skipped.
func (b *InvalidationBus) Subscribe(ctx context.Context, handle func(domain.SchemaChange)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no publish after this
	// point is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			change, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed schema change")
				continue
			}
			handle(change)
		}
	}
}

func (b *InvalidationBus) Close() error { return nil }

func encodeChange(change domain.SchemaChange) ([]byte, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode schema change: %w", err)
	}
	return payload, nil
}

func decodeChange(payload []byte) (domain.SchemaChange, error) {
	var change domain.SchemaChange
	if err := json.Unmarshal(payload, &change); err != nil {
		return domain.SchemaChange{}, fmt.Errorf("decode schema change: %w", err)
	}
	if change.Origin == "" {
		return domain.SchemaChange{}, fmt.Errorf("decode schema change: missing origin")
	}
	return change, nil
}
