package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// CreateFieldInput is the DTO for a new definition. An empty Key is derived
// from Name.
type CreateFieldInput struct {
	Key            string
	Name           string
	Type           domain.FieldType
	Required       bool
	Min            *float64
	Max            *float64
	Regex          string
	Options        []domain.Option
	RoleVisibility domain.Visibility
	Active         *bool // nil = active
	HelpText       string
	Position       int
}

// UpdateFieldInput is a partial merge: nil leaves the attribute as stored.
// Options, when set, replace the whole list.
type UpdateFieldInput struct {
	Key            *string
	Name           *string
	Type           *domain.FieldType
	Required       *bool
	Min            *float64
	Max            *float64
	ClearBounds    bool
	Regex          *string
	Options        *[]domain.Option
	RoleVisibility *domain.Visibility
	Active         *bool
	HelpText       *string
	Position       *int
}

// FieldResult is returned by definition writes.
type FieldResult struct {
	Field    domain.FieldDefinition
	Warnings []string
}

// FieldService runs the administrative commands on definitions.
type FieldService interface {
	List(ctx context.Context, p domain.Principal) ([]domain.FieldDefinition, error)
	Get(ctx context.Context, p domain.Principal, key string) (*domain.FieldDefinition, error)
	Create(ctx context.Context, p domain.Principal, in CreateFieldInput) (*FieldResult, error)
	Update(ctx context.Context, p domain.Principal, key string, in UpdateFieldInput) (*FieldResult, error)
	Delete(ctx context.Context, p domain.Principal, key string) error
	Compatibility(ctx context.Context, p domain.Principal, key string) (*domain.CompatibilityReport, error)
}

// SchemaReader serves the current schema.
type SchemaReader interface {
	Get(ctx context.Context) (domain.Schema, error)
}
