package service

import (
	"context"
	"sort"
	"sync"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory field repository
// ---------------------------------------------------------------------------

type stubFieldRepo struct {
	byKey     map[string]domain.FieldDefinition
	createErr error
	updateErr error
}

func newStubFieldRepo(defs ...domain.FieldDefinition) *stubFieldRepo {
	r := &stubFieldRepo{byKey: make(map[string]domain.FieldDefinition)}
	for _, d := range defs {
		r.byKey[d.Key] = d
	}
	return r
}

func (r *stubFieldRepo) List(_ context.Context) ([]domain.FieldDefinition, error) {
	out := make([]domain.FieldDefinition, 0, len(r.byKey))
	for _, d := range r.byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *stubFieldRepo) Get(_ context.Context, key string) (*domain.FieldDefinition, error) {
	d, ok := r.byKey[key]
	if !ok {
		return nil, domain.ErrFieldNotFound
	}
	return &d, nil
}

func (r *stubFieldRepo) Create(_ context.Context, def *domain.FieldDefinition) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byKey[def.Key]; ok {
		return domain.ErrFieldExists
	}
	r.byKey[def.Key] = *def
	return nil
}

func (r *stubFieldRepo) Update(_ context.Context, def *domain.FieldDefinition) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byKey[def.Key]; !ok {
		return domain.ErrFieldNotFound
	}
	r.byKey[def.Key] = *def
	return nil
}

func (r *stubFieldRepo) Delete(_ context.Context, key string) error {
	if _, ok := r.byKey[key]; !ok {
		return domain.ErrFieldNotFound
	}
	delete(r.byKey, key)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory record repository
// ---------------------------------------------------------------------------

type stubRecordRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.ActionRecord
	replaceErr error
	replaced   []domain.ValueMap
	countErr   error
	counted    []string
}

func newStubRecordRepo(recs ...domain.ActionRecord) *stubRecordRepo {
	r := &stubRecordRepo{byID: make(map[string]*domain.ActionRecord)}
	for i := range recs {
		rec := recs[i]
		r.byID[rec.ActID] = &rec
	}
	return r
}

func (r *stubRecordRepo) Get(_ context.Context, id string) (*domain.ActionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *rec
	clone.Custom = rec.Custom.Clone()
	return &clone, nil
}

func (r *stubRecordRepo) ReplaceCustom(_ context.Context, id string, values domain.ValueMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	rec, ok := r.byID[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	rec.Custom = values.Clone()
	r.replaced = append(r.replaced, values.Clone())
	return nil
}

func (r *stubRecordRepo) CountWithKey(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counted = append(r.counted, key)
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, rec := range r.byID {
		if _, ok := rec.Custom[key]; ok {
			n++
		}
	}
	return n, nil
}

func (r *stubRecordRepo) ScanValues(_ context.Context, key string, fn func(string, any) error) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	for _, id := range ids {
		r.mu.Lock()
		v, ok := r.byID[id].Custom[key]
		r.mu.Unlock()
		if !ok {
			continue
		}
		if err := fn(id, v); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cache, bus and scanner doubles
// ---------------------------------------------------------------------------

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

type stubBus struct {
	published  []domain.SchemaChange
	publishErr error
}

func (b *stubBus) Publish(_ context.Context, c domain.SchemaChange) error {
	b.published = append(b.published, c)
	return b.publishErr
}

func (b *stubBus) Subscribe(ctx context.Context, _ func(domain.SchemaChange)) error {
	<-ctx.Done()
	return nil
}

func (b *stubBus) Close() error { return nil }

type stubCompat struct {
	jobs    []ports.CompatJob
	reports map[string]*domain.CompatibilityReport
}

func (c *stubCompat) Enqueue(job ports.CompatJob) { c.jobs = append(c.jobs, job) }

func (c *stubCompat) Report(key string) (*domain.CompatibilityReport, bool) {
	r, ok := c.reports[key]
	return r, ok
}

type stubSchemaReader struct {
	schema domain.Schema
	err    error
}

func (s *stubSchemaReader) Get(_ context.Context) (domain.Schema, error) {
	return s.schema, s.err
}
