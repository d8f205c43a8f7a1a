package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// FieldRepository persists custom field definitions.
type FieldRepository interface {
	// List returns every definition, active or not, in position order.
	List(ctx context.Context) ([]domain.FieldDefinition, error)
	Get(ctx context.Context, key string) (*domain.FieldDefinition, error)
	// Create returns domain.ErrFieldExists when the key is taken.
	Create(ctx context.Context, def *domain.FieldDefinition) error
	// Update replaces the stored definition with the same key.
	Update(ctx context.Context, def *domain.FieldDefinition) error
	Delete(ctx context.Context, key string) error
}

// SchemaSource is the read contract behind the schema cache: one call, one
// complete snapshot.
type SchemaSource interface {
	FetchSchema(ctx context.Context) (domain.Schema, error)
}
