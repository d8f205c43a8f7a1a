package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/metrics"
)

// InvalidationListener drops the local schema cache when another replica
// announces a definition change.
type InvalidationListener struct {
	bus    ports.InvalidationBus
	cache  Invalidator
	origin string
	log    zerolog.Logger
}

func NewInvalidationListener(bus ports.InvalidationBus, cache Invalidator, origin string, log zerolog.Logger) *InvalidationListener {
	return &InvalidationListener{bus: bus, cache: cache, origin: origin, log: log}
}

// Run blocks until ctx is cancelled or the bus fails.
func (l *InvalidationListener) Run(ctx context.Context) error {
	return l.bus.Subscribe(ctx, l.Handle)
}

// Handle applies one change. Changes published by this replica were already
// applied synchronously and are skipped.
func (l *InvalidationListener) Handle(change domain.SchemaChange) {
	if change.Origin == l.origin {
		return
	}
	l.cache.Invalidate()
	metrics.SchemaInvalidations.WithLabelValues("remote").Inc()
	l.log.Debug().
		Str("key", change.Key).
		Str("op", change.Op).
		Str("origin", change.Origin).
		Msg("schema invalidated by remote change")
}
