// Package validation checks custom-field values against their definitions.
//
// Every function here is pure: the same schema and values always produce the
// same result, and nothing touches the network or shared state apart from a
// compiled-pattern cache.
package validation

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/planactions/customfields/internal/core/domain"
)

// Messages surfaced to operators, one per invalid field.
const (
	MsgRequired      = "required"
	MsgInvalidType   = "invalid type"
	MsgInvalidFormat = "invalid format"
	MsgInvalidOption = "invalid option"
)

// Result is the outcome of validating a whole value map.
type Result struct {
	Errors  map[string]string `json:"errors"`
	IsValid bool              `json:"is_valid"`
}

// ValidateField checks one value. It returns the error message and false when
// the value is rejected, or "" and true when it is accepted.
//
// Rules run in a fixed order and stop at the first failure: required, then
// structure, bounds, pattern and option membership.
func ValidateField(def domain.FieldDefinition, value any) (string, bool) {
	h, ok := domain.Lookup(def.Type)
	if !ok {
		return MsgInvalidType, false
	}

	if h.IsAbsent(value) {
		if def.Required {
			return MsgRequired, false
		}
		return "", true
	}

	canonical, ok := h.Coerce(value)
	if !ok {
		return MsgInvalidType, false
	}

	if h.Bounded {
		n := h.Measure(canonical)
		if def.Min != nil && n < *def.Min {
			return "min " + formatBound(*def.Min), false
		}
		if def.Max != nil && n > *def.Max {
			return "max " + formatBound(*def.Max), false
		}
	}

	if def.Regex != "" && def.Type == domain.TypeText {
		re, err := compiled(def.Regex)
		if err != nil || !re.MatchString(canonical.(string)) {
			return MsgInvalidFormat, false
		}
	}

	if h.Options {
		switch v := canonical.(type) {
		case string:
			if !def.HasOption(v) {
				return MsgInvalidOption, false
			}
		case []string:
			for _, el := range v {
				if !def.HasOption(el) {
					return MsgInvalidOption, false
				}
			}
		}
	}

	return "", true
}

// ValidateAll checks every field of the schema independently. Keys in values
// that the schema does not define are ignored. Callers that exclude inactive
// fields pass schema.Active().
func ValidateAll(schema domain.Schema, values domain.ValueMap) Result {
	errs := make(map[string]string)
	for _, def := range schema.Fields {
		if msg, ok := ValidateField(def, values[def.Key]); !ok {
			errs[def.Key] = msg
		}
	}
	return Result{Errors: errs, IsValid: len(errs) == 0}
}

// Err converts a failed Result into a *domain.ValidationError, or nil.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return domain.NewValidationError(r.Errors, nil)
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Patterns must match the whole value, not a substring.
var patterns sync.Map

func compiled(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}
