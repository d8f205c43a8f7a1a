package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/form"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/core/validation"
	"github.com/planactions/customfields/internal/metrics"
)

type recordService struct {
	records ports.RecordRepository
	schema  ports.SchemaReader
	policy  *policy.Table
	log     zerolog.Logger
}

// NewRecordService returns a RecordService reading the schema through schema.
func NewRecordService(records ports.RecordRepository, schema ports.SchemaReader, rules *policy.Table, log zerolog.Logger) ports.RecordService {
	return &recordService{records: records, schema: schema, policy: rules, log: log}
}

// Form projects a record's custom values for p. Values of fields p is not in
// the audience of are left out entirely.
func (s *recordService) Form(ctx context.Context, p domain.Principal, recordID string) (*ports.RecordForm, error) {
	if err := s.authorize(p, policy.ActionRead, policy.ResourceAction); err != nil {
		return nil, err
	}

	rec, err := s.records.Get(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("record form: %w", err)
	}
	schema, err := s.schema.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.RecordForm{RecordID: rec.ActID, Form: project(schema, p, rec.Custom)}, nil
}

// ReplaceCustom validates and stores the record's custom map. Only fields p
// can edit are taken from values; everything else on the record is kept.
func (s *recordService) ReplaceCustom(ctx context.Context, p domain.Principal, recordID string, values domain.ValueMap) (*ports.RecordForm, error) {
	if err := s.authorize(p, policy.ActionUpdate, policy.ResourceAction); err != nil {
		return nil, err
	}

	rec, err := s.records.Get(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("replace custom: %w", err)
	}
	schema, err := s.schema.Get(ctx)
	if err != nil {
		return nil, err
	}
	visible := schema.VisibleTo(p)

	merged := form.Merge(visible, rec.Custom, values)
	res := validation.ValidateAll(visible.Active(), merged)
	if !res.IsValid {
		s.countFailures(visible, res)
		return nil, res.Err()
	}

	final := form.Canonical(visible, merged)
	if err := s.records.ReplaceCustom(ctx, recordID, final); err != nil {
		return nil, fmt.Errorf("replace custom: %w", err)
	}

	s.log.Info().Str("record_id", recordID).Int("values", len(final)).Str("role", string(p.Role)).Msg("custom values replaced")
	return &ports.RecordForm{RecordID: rec.ActID, Form: project(schema, p, final)}, nil
}

// Validate checks values without storing anything.
func (s *recordService) Validate(ctx context.Context, p domain.Principal, values domain.ValueMap, key string) (validation.Result, error) {
	if err := s.authorize(p, policy.ActionRead, policy.ResourceCustomField); err != nil {
		return validation.Result{}, err
	}

	schema, err := s.schema.Get(ctx)
	if err != nil {
		return validation.Result{}, err
	}
	visible := schema.VisibleTo(p)

	if key == "" {
		return validation.ValidateAll(visible.Active(), values), nil
	}

	def, ok := visible.Lookup(key)
	if !ok || !def.Active {
		return validation.Result{}, domain.ErrFieldNotFound
	}
	res := validation.Result{Errors: map[string]string{}, IsValid: true}
	if msg, ok := validation.ValidateField(def, values[key]); !ok {
		res.Errors[key] = msg
		res.IsValid = false
	}
	return res, nil
}

func (s *recordService) authorize(p domain.Principal, action, resource string) error {
	if s.policy.Can(p, action, resource) {
		return nil
	}
	metrics.PolicyDenials.WithLabelValues(action, resource).Inc()
	return domain.ErrAccessDenied
}

func (s *recordService) countFailures(schema domain.Schema, res validation.Result) {
	for key := range res.Errors {
		if def, ok := schema.Lookup(key); ok {
			metrics.ValidationFailures.WithLabelValues(string(def.Type)).Inc()
		}
	}
}

func project(schema domain.Schema, p domain.Principal, values domain.ValueMap) form.RenderModel {
	return form.Project(schema.VisibleTo(p), form.Hide(schema, p, values))
}
