package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrFieldNotFound     = errors.New("custom field not found")
	ErrFieldExists       = errors.New("custom field key already exists")
	ErrKeyInUse          = errors.New("custom field key still carried by records")
	ErrImmutableKey      = errors.New("custom field key cannot be changed")
	ErrInvalidDefinition = errors.New("invalid custom field definition")
	ErrRecordNotFound    = errors.New("action record not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrSchemaUnavailable = errors.New("custom field schema unavailable")
	ErrReportNotFound    = errors.New("compatibility report not found")
)

// ValidationError carries one message per offending field key.
type ValidationError struct {
	Errors map[string]string
	kind   error
}

// NewValidationError builds a ValidationError. kind, when non-nil, is exposed
// through errors.Is so callers can tell definition errors from value errors.
func NewValidationError(errs map[string]string, kind error) *ValidationError {
	return &ValidationError{Errors: errs, kind: kind}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Errors[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.kind }

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}
