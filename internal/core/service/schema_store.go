package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/metrics"
)

const (
	defaultSchemaTTL          = 60 * time.Second
	defaultSchemaFetchTimeout = 5 * time.Second
)

// SchemaState is the freshness of the cached schema.
type SchemaState string

const (
	SchemaEmpty    SchemaState = "empty"
	SchemaFresh    SchemaState = "fresh"
	SchemaStale    SchemaState = "stale"
	SchemaFetching SchemaState = "fetching"
)

// SchemaStore is a read-through cache of the custom field schema.
//
// Reads inside the freshness window are served from memory. Otherwise one
// fetch is shared by every concurrent caller of the same generation.
// Invalidate starts a new generation: later reads never join a fetch that
// began before it, and a fetch that finishes after it is not cached.
type SchemaStore struct {
	source  ports.SchemaSource
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	group singleflight.Group

	mu        sync.Mutex
	schema    *domain.Schema
	fetchedAt time.Time
	gen       uint64
	stale     bool
	inflight  int
}

// SchemaStoreOption customises a SchemaStore.
type SchemaStoreOption func(*SchemaStore)

// WithTTL sets the freshness window. Non-positive values keep the default.
func WithTTL(d time.Duration) SchemaStoreOption {
	return func(s *SchemaStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithFetchTimeout bounds a single fetch. Non-positive values keep the default.
func WithFetchTimeout(d time.Duration) SchemaStoreOption {
	return func(s *SchemaStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) SchemaStoreOption {
	return func(s *SchemaStore) { s.now = now }
}

func NewSchemaStore(source ports.SchemaSource, log zerolog.Logger, opts ...SchemaStoreOption) *SchemaStore {
	s := &SchemaStore{
		source:  source,
		ttl:     defaultSchemaTTL,
		timeout: defaultSchemaFetchTimeout,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current schema as a copy the caller may modify freely.
// A failed fetch is returned as an error
// wrapping domain.ErrSchemaUnavailable; a previously cached schema is never
// served in its place.
func (s *SchemaStore) Get(ctx context.Context) (domain.Schema, error) {
	s.mu.Lock()
	if s.freshLocked() {
		snap := s.schema.Clone()
		s.mu.Unlock()
		metrics.SchemaCacheRequests.WithLabelValues("hit").Inc()
		return snap, nil
	}
	gen := s.gen
	s.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return s.fetch(fetchCtx, gen)
	})

	select {
	case <-ctx.Done():
		return domain.Schema{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.SchemaCacheRequests.WithLabelValues("shared").Inc()
		} else {
			metrics.SchemaCacheRequests.WithLabelValues("miss").Inc()
		}
		if res.Err != nil {
			return domain.Schema{}, fmt.Errorf("get schema: %w: %w", domain.ErrSchemaUnavailable, res.Err)
		}
		return res.Val.(domain.Schema).Clone(), nil
	}
}

// Invalidate marks the cache stale. Callers that write definitions call it
// before reporting success.
func (s *SchemaStore) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.stale = true
	gen := s.gen
	s.mu.Unlock()

	s.log.Debug().Uint64("generation", gen).Msg("schema cache invalidated")
}

// State reports where the cache is in its lifecycle.
func (s *SchemaStore) State() SchemaState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.inflight > 0:
		return SchemaFetching
	case s.schema == nil:
		return SchemaEmpty
	case s.freshLocked():
		return SchemaFresh
	default:
		return SchemaStale
	}
}

// StateName is State as a plain string, for the readiness probe.
func (s *SchemaStore) StateName() string {
	return string(s.State())
}

func (s *SchemaStore) freshLocked() bool {
	return s.schema != nil && !s.stale && s.now().Sub(s.fetchedAt) < s.ttl
}

// fetch runs inside the singleflight group. A caller that saw a cold cache
// can reach the group after the previous fetch of its generation has already
// completed and left; that caller gets the cached schema, not a second fetch.
func (s *SchemaStore) fetch(ctx context.Context, gen uint64) (domain.Schema, error) {
	s.mu.Lock()
	if gen == s.gen && s.freshLocked() {
		snap := *s.schema
		s.mu.Unlock()
		return snap, nil
	}
	s.inflight++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	schema, err := s.source.FetchSchema(ctx)
	metrics.SchemaFetchDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		metrics.SchemaFetchTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Uint64("generation", gen).Msg("schema fetch failed")
		return domain.Schema{}, err
	}

	if gen != s.gen {
		metrics.SchemaFetchTotal.WithLabelValues("discarded").Inc()
		s.log.Debug().Uint64("generation", gen).Uint64("current", s.gen).Msg("schema fetch overtaken by invalidation, not cached")
		return schema, nil
	}

	s.schema = &schema
	s.fetchedAt = s.now()
	s.stale = false
	metrics.SchemaFetchTotal.WithLabelValues("success").Inc()
	s.log.Debug().Int("fields", len(schema.Fields)).Dur("took", time.Since(start)).Msg("schema fetched")
	return schema, nil
}
