package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// InvalidationBus fans schema changes out to every replica.
type InvalidationBus interface {
	Publish(ctx context.Context, change domain.SchemaChange) error
	// Subscribe delivers changes until ctx is cancelled or the bus is closed.
	Subscribe(ctx context.Context, handle func(domain.SchemaChange)) error
	Close() error
}
