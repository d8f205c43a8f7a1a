package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/metrics"
	"github.com/planactions/customfields/internal/pkg/idgen"
)

const (
	keySuffixLen      = 4
	keyDeriveAttempts = 5
)

// Invalidator drops the cached schema.
type Invalidator interface {
	Invalidate()
}

type fieldService struct {
	repo    ports.FieldRepository
	records ports.RecordRepository
	cache   Invalidator
	bus     ports.InvalidationBus
	compat  ports.CompatScanner
	policy  *policy.Table
	origin  string
	now     func() time.Time
	log     zerolog.Logger
}

// NewFieldService returns the administrative command handler for field
// definitions. origin identifies this replica on the invalidation bus.
func NewFieldService(
	repo ports.FieldRepository,
	records ports.RecordRepository,
	cache Invalidator,
	bus ports.InvalidationBus,
	compat ports.CompatScanner,
	rules *policy.Table,
	origin string,
	log zerolog.Logger,
) ports.FieldService {
	return &fieldService{
		repo:    repo,
		records: records,
		cache:   cache,
		bus:     bus,
		compat:  compat,
		policy:  rules,
		origin:  origin,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
}

func (s *fieldService) List(ctx context.Context, p domain.Principal) ([]domain.FieldDefinition, error) {
	if err := s.authorize(p, policy.ActionRead); err != nil {
		return nil, err
	}
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return defs, nil
}

func (s *fieldService) Get(ctx context.Context, p domain.Principal, key string) (*domain.FieldDefinition, error) {
	if err := s.authorize(p, policy.ActionRead); err != nil {
		return nil, err
	}
	def, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}
	return def, nil
}

// Create stores a new definition. Without an explicit key one is derived from
// the name, suffixed when the slug is already taken or still carried by records.
func (s *fieldService) Create(ctx context.Context, p domain.Principal, in ports.CreateFieldInput) (*ports.FieldResult, error) {
	if err := s.authorize(p, policy.ActionCreate); err != nil {
		return nil, err
	}

	key := in.Key
	if key != "" && !domain.ValidKey(key) {
		return nil, domain.NewValidationError(map[string]string{"key": "must be a lowercase slug"}, domain.ErrInvalidDefinition)
	}
	if key == "" {
		derived, err := s.deriveKey(ctx, domain.Slugify(in.Name))
		if err != nil {
			return nil, fmt.Errorf("create field: %w", err)
		}
		key = derived
	} else if err := s.keyAvailable(ctx, key); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	visibility := in.RoleVisibility
	if visibility == "" {
		visibility = domain.VisibilityAll
	}

	now := s.now()
	def := &domain.FieldDefinition{
		Key:            key,
		Name:           in.Name,
		Type:           in.Type,
		Required:       in.Required,
		Min:            in.Min,
		Max:            in.Max,
		Regex:          in.Regex,
		Options:        in.Options,
		RoleVisibility: visibility,
		Active:         active,
		HelpText:       in.HelpText,
		Position:       in.Position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.Create(ctx, def)
	s.changed(ctx, p, key, "create")
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}

	s.log.Info().Str("key", key).Str("type", string(def.Type)).Str("role", string(p.Role)).Msg("custom field created")
	return &ports.FieldResult{Field: *def}, nil
}

// Update merges the set attributes into the stored definition. Changing the
// type is allowed: stored values are left alone, the caller gets a warning
// and a compatibility scan is queued.
func (s *fieldService) Update(ctx context.Context, p domain.Principal, key string, in ports.UpdateFieldInput) (*ports.FieldResult, error) {
	if err := s.authorize(p, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if in.Key != nil && *in.Key != key {
		return nil, domain.ErrImmutableKey
	}

	current, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}

	next := mergeDefinition(*current, in)
	next.UpdatedAt = s.now()
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, &next)
	s.changed(ctx, p, key, "update")
	if err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}

	res := &ports.FieldResult{Field: next}
	if next.Type != current.Type {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"type changed from %s to %s; stored values are not revalidated", current.Type, next.Type))
		s.log.Warn().Str("key", key).Str("from", string(current.Type)).Str("to", string(next.Type)).Msg("custom field retyped")
		if s.compat != nil {
			s.compat.Enqueue(ports.CompatJob{Key: key, From: current.Type, To: next.Type})
		}
	}

	s.log.Info().Str("key", key).Str("role", string(p.Role)).Msg("custom field updated")
	return res, nil
}

// Delete removes the definition. Values stored under the key stay on the
// records and surface as orphans.
func (s *fieldService) Delete(ctx context.Context, p domain.Principal, key string) error {
	if err := s.authorize(p, policy.ActionDelete); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, key)
	s.changed(ctx, p, key, "delete")
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}

	s.log.Info().Str("key", key).Str("role", string(p.Role)).Msg("custom field deleted")
	return nil
}

func (s *fieldService) Compatibility(_ context.Context, p domain.Principal, key string) (*domain.CompatibilityReport, error) {
	if err := s.authorize(p, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if s.compat == nil {
		return nil, domain.ErrReportNotFound
	}
	report, ok := s.compat.Report(key)
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

func (s *fieldService) authorize(p domain.Principal, action string) error {
	if s.policy.Can(p, action, policy.ResourceCustomField) {
		return nil
	}
	metrics.PolicyDenials.WithLabelValues(action, policy.ResourceCustomField).Inc()
	s.log.Warn().Str("role", string(p.Role)).Str("action", action).Msg("custom field command denied")
	return domain.ErrAccessDenied
}

// changed runs after every attempted write: the local cache is invalidated
// before the command returns, then peers are told.
func (s *fieldService) changed(ctx context.Context, p domain.Principal, key, op string) {
	s.cache.Invalidate()
	metrics.SchemaInvalidations.WithLabelValues("local").Inc()
	metrics.FieldMutations.WithLabelValues(op).Inc()

	if s.bus == nil {
		return
	}
	change := domain.SchemaChange{Key: key, Op: op, Origin: s.origin, At: s.now()}
	if err := s.bus.Publish(ctx, change); err != nil {
		s.log.Error().Err(err).Str("key", key).Str("op", op).Str("role", string(p.Role)).Msg("schema change not broadcast")
	}
}

func (s *fieldService) keyAvailable(ctx context.Context, key string) error {
	_, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		return domain.ErrFieldExists
	case !errors.Is(err, domain.ErrFieldNotFound):
		return err
	}

	n, err := s.records.CountWithKey(ctx, key)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrKeyInUse
	}
	return nil
}

func (s *fieldService) deriveKey(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		// Validate reports the missing name or key.
		return "", nil
	}

	candidate := slug
	for i := 0; i < keyDeriveAttempts; i++ {
		err := s.keyAvailable(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, domain.ErrFieldExists) && !errors.Is(err, domain.ErrKeyInUse) {
			return "", err
		}
		suffix, err := idgen.KeySuffix(keySuffixLen)
		if err != nil {
			return "", err
		}
		candidate = slug + "-" + suffix
	}
	return "", domain.ErrFieldExists
}

func mergeDefinition(def domain.FieldDefinition, in ports.UpdateFieldInput) domain.FieldDefinition {
	if in.Name != nil {
		def.Name = *in.Name
	}
	if in.Type != nil {
		def.Type = *in.Type
	}
	if in.Required != nil {
		def.Required = *in.Required
	}
	if in.ClearBounds {
		def.Min, def.Max = nil, nil
	}
	if in.Min != nil {
		def.Min = in.Min
	}
	if in.Max != nil {
		def.Max = in.Max
	}
	if in.Regex != nil {
		def.Regex = *in.Regex
	}
	if in.Options != nil {
		def.Options = *in.Options
	}
	if in.RoleVisibility != nil {
		def.RoleVisibility = *in.RoleVisibility
	}
	if in.Active != nil {
		def.Active = *in.Active
	}
	if in.HelpText != nil {
		def.HelpText = *in.HelpText
	}
	if in.Position != nil {
		def.Position = *in.Position
	}
	return def
}
