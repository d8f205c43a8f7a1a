package ports

import (
	"context"

	"github.com/planactions/customfields/internal/core/domain"
)

// RecordRepository reads and writes the custom map of action records.
type RecordRepository interface {
	Get(ctx context.Context, id string) (*domain.ActionRecord, error)
	// ReplaceCustom stores values as the record's whole custom map.
	ReplaceCustom(ctx context.Context, id string, values domain.ValueMap) error
	// CountWithKey counts records still carrying a value under key.
	CountWithKey(ctx context.Context, key string) (int64, error)
	// ScanValues calls fn for every stored value under key until fn errors.
	ScanValues(ctx context.Context, key string, fn func(recordID string, value any) error) error
}
