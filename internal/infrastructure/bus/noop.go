package bus

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// Noop discards every change. Used for single-replica deployments, where the
// local invalidation is all there is.
type Noop struct{}

func (Noop) Publish(context.Context, domain.SchemaChange) error { return nil }

func (Noop) Subscribe(ctx context.Context, _ func(domain.SchemaChange)) error {
	<-ctx.Done()
	return nil
}

func (Noop) Close() error { return nil }
