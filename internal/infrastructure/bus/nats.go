// Package bus holds the non-Redis invalidation bus backends.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
)

// NATSBus publishes schema changes as JSON on a single NATS subject.
type NATSBus struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

// NewNATSBus connects to url with unlimited reconnects. Extra options are
// appended to the defaults.
func NewNATSBus(url, subject string, log zerolog.Logger, opts ...nats.Option) (*NATSBus, error) {
	defaults := []nats.Option{
		nats.Name("customfields"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSBus{conn: nc, subject: subject, log: log}, nil
}

func (b *NATSBus) Publish(_ context.Context, change domain.SchemaChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshaling schema change: %w", err)
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", b.subject, err)
	}
	return nil
}

// Subscribe registers on the subject and blocks until ctx is cancelled or
// the connection is closed.
func (b *NATSBus) Subscribe(ctx context.Context, handle func(domain.SchemaChange)) error {
	sub, err := b.conn.Subscribe(b.subject, func(msg *nats.Msg) {
		var change domain.SchemaChange
		if err := json.Unmarshal(msg.Data, &change); err != nil || change.Origin == "" {
			b.log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed schema change")
			return
		}
		handle(change)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	// Flush so the subscription is registered on the server before any
	// change published elsewhere is routed.
	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("flushing subscription: %w", err)
	}

	closed := make(chan struct{})
	b.conn.SetClosedHandler(func(*nats.Conn) { close(closed) })

	select {
	case <-ctx.Done():
	case <-closed:
	}
	return nil
}

// Ping round-trips to the server; used as a readiness check.
func (b *NATSBus) Ping(ctx context.Context) error {
	return b.conn.FlushWithContext(ctx)
}

func (b *NATSBus) Close() error {
	b.conn.Close()
	return nil
}
