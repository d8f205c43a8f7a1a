package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldType is the closed set of value kinds a custom field may hold.
type FieldType string

const (
	TypeText   FieldType = "text"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeSelect FieldType = "select"
	TypeTags   FieldType = "tags"
	TypeBool   FieldType = "bool"
)

// DateLayout is the ISO calendar date layout stored for date fields.
const DateLayout = "2006-01-02"

// TypeHandler is the single registry entry for a field type. Coercion,
// rendering and default-value generation all read from it.
type TypeHandler struct {
	Type FieldType
	// Shape describes the canonical value, e.g. "string" or "[]string".
	Shape string
	// Widget is the input a generic form renders for the type.
	Widget string
	// Options is true when the type draws its values from FieldDefinition.Options.
	Options bool
	// Bounded is true when min/max apply (length, value or cardinality).
	Bounded bool

	empty  func() any
	absent func(v any) bool
	coerce func(raw any) (any, bool)
	size   func(canonical any) float64
}

// Empty returns the value used to seed a new record.
func (h TypeHandler) Empty() any { return h.empty() }

// IsAbsent reports whether v counts as "no value" for the type.
func (h TypeHandler) IsAbsent(v any) bool { return h.absent(v) }

// Coerce converts raw input into the canonical shape. ok is false when the
// input cannot be read as this type at all.
func (h TypeHandler) Coerce(raw any) (v any, ok bool) { return h.coerce(raw) }

// Measure returns the quantity min/max are compared against. Only meaningful
// when Bounded is true and v came out of Coerce.
func (h TypeHandler) Measure(v any) float64 { return h.size(v) }

var typeOrder = []FieldType{TypeText, TypeNumber, TypeDate, TypeSelect, TypeTags, TypeBool}

var registry = map[FieldType]TypeHandler{
	TypeText: {
		Type: TypeText, Shape: "string", Widget: "text", Bounded: true,
		empty:  func() any { return "" },
		absent: absentScalar,
		coerce: coerceString,
		size:   func(v any) float64 { return float64(len([]rune(v.(string)))) },
	},
	TypeNumber: {
		Type: TypeNumber, Shape: "number", Widget: "number", Bounded: true,
		empty:  func() any { return nil },
		absent: absentScalar,
		coerce: coerceNumber,
		size:   func(v any) float64 { return v.(float64) },
	},
	TypeDate: {
		Type: TypeDate, Shape: "string (YYYY-MM-DD)", Widget: "date",
		empty:  func() any { return "" },
		absent: absentScalar,
		coerce: coerceDate,
	},
	TypeSelect: {
		Type: TypeSelect, Shape: "string", Widget: "select", Options: true,
		empty:  func() any { return "" },
		absent: absentScalar,
		coerce: coerceString,
	},
	TypeTags: {
		Type: TypeTags, Shape: "[]string", Widget: "multiselect", Options: true, Bounded: true,
		empty:  func() any { return []string{} },
		absent: absentTags,
		coerce: coerceTags,
		size:   func(v any) float64 { return float64(len(v.([]string))) },
	},
	TypeBool: {
		Type: TypeBool, Shape: "bool", Widget: "checkbox",
		empty:  func() any { return nil },
		absent: func(v any) bool { return v == nil },
		coerce: coerceBool,
	},
}

// Lookup returns the handler registered for t.
func Lookup(t FieldType) (TypeHandler, bool) {
	h, ok := registry[t]
	return h, ok
}

// Types lists the registered types in catalogue order.
func Types() []FieldType {
	out := make([]FieldType, len(typeOrder))
	copy(out, typeOrder)
	return out
}

func (t FieldType) IsValid() bool {
	_, ok := registry[t]
	return ok
}

func absentScalar(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func absentTags(v any) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case []string:
		return len(tv) == 0
	case []any:
		return len(tv) == 0
	}
	return false
}

func coerceString(raw any) (any, bool) {
	s, ok := raw.(string)
	return s, ok
}

func coerceNumber(raw any) (any, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func coerceDate(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		d, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return d.Format(DateLayout), true
	case time.Time:
		return v.UTC().Format(DateLayout), true
	}
	return nil, false
}

// coerceTags accepts a list of strings and collapses duplicates, keeping the
// first occurrence.
func coerceTags(raw any) (any, bool) {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
	default:
		return nil, false
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, true
}

func coerceBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}
