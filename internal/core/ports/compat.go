package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// CompatJob asks for the values stored under Key to be checked against To.
type CompatJob struct {
	Key  string
	From domain.FieldType
	To   domain.FieldType
}

// CompatScanner queues compatibility scans and serves their reports.
type CompatScanner interface {
	Enqueue(job CompatJob)
	Report(key string) (*domain.CompatibilityReport, bool)
}

// CompatService runs one scan and keeps the latest report per key.
type CompatService interface {
	Process(ctx context.Context, job CompatJob) error
	Report(key string) (*domain.CompatibilityReport, bool)
}
