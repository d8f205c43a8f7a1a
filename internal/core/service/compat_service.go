package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/metrics"
)

const maxCompatSamples = 5

type compatService struct {
	records ports.RecordRepository
	log     zerolog.Logger

	mu      sync.RWMutex
	reports map[string]*domain.CompatibilityReport
}

// NewCompatService returns a CompatService. Scans only read: no stored value
// is migrated or rejected.
func NewCompatService(records ports.RecordRepository, log zerolog.Logger) ports.CompatService {
	return &compatService{
		records: records,
		log:     log,
		reports: make(map[string]*domain.CompatibilityReport),
	}
}

// Process counts the values under job.Key that job.To cannot coerce.
func (s *compatService) Process(ctx context.Context, job ports.CompatJob) error {
	h, ok := domain.Lookup(job.To)
	if !ok {
		return fmt.Errorf("compat scan %s: unknown type %q", job.Key, job.To)
	}

	report := &domain.CompatibilityReport{Key: job.Key, From: job.From, To: job.To}
	err := s.records.ScanValues(ctx, job.Key, func(recordID string, v any) error {
		report.Scanned++
		if h.IsAbsent(v) {
			return nil
		}
		if _, ok := h.Coerce(v); !ok {
			report.Incompatible++
			if len(report.Samples) < maxCompatSamples {
				report.Samples = append(report.Samples, recordID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("compat scan %s: %w", job.Key, err)
	}
	report.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.reports[job.Key] = report
	s.mu.Unlock()

	metrics.IncompatibleValues.WithLabelValues(job.Key).Set(float64(report.Incompatible))

	evt := s.log.Info()
	if report.Incompatible > 0 {
		evt = s.log.Warn()
	}
	evt.Str("key", job.Key).
		Str("from", string(job.From)).
		Str("to", string(job.To)).
		Int("scanned", report.Scanned).
		Int("incompatible", report.Incompatible).
		Msg("compatibility scan finished")
	return nil
}

func (s *compatService) Report(key string) (*domain.CompatibilityReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[key]
	if !ok {
		return nil, false
	}
	clone := *r
	clone.Samples = append([]string(nil), r.Samples...)
	return &clone, true
}
