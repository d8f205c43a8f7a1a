package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/form"
	"github.com/planactions/customfields/internal/core/validation"
)

// RecordForm is a record's custom values projected for one principal.
type RecordForm struct {
	RecordID string
	Form     form.RenderModel
}

// RecordService reads and replaces the custom values of action records.
type RecordService interface {
	Form(ctx context.Context, p domain.Principal, recordID string) (*RecordForm, error)
	ReplaceCustom(ctx context.Context, p domain.Principal, recordID string, values domain.ValueMap) (*RecordForm, error)
	// Validate is a dry run. A non-empty key checks that field alone.
	Validate(ctx context.Context, p domain.Principal, values domain.ValueMap, key string) (validation.Result, error)
}
