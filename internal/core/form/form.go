// Package form projects a schema and a value map onto a renderable model and
// folds edits back into a value map without losing values the current schema
// no longer describes.
package form

import (
	"errors"
	"sort"

	"github.com/planactions/customfields/internal/core/domain"
)

var (
	ErrUnknownField  = errors.New("field is not part of the form")
	ErrReadOnlyField = errors.New("field is read-only")
)

// FieldDescriptor is one input of the rendered form.
type FieldDescriptor struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Type     domain.FieldType `json:"type"`
	Widget   string           `json:"widget"`
	Required bool             `json:"required"`
	HelpText string           `json:"help_text,omitempty"`
	Min      *float64         `json:"min,omitempty"`
	Max      *float64         `json:"max,omitempty"`
	Regex    string           `json:"regex,omitempty"`
	Options  []domain.Option  `json:"options,omitempty"`
	Value    any              `json:"value"`
	Error    string           `json:"error,omitempty"`
	// ReadOnly marks a deactivated field that still carries a stored value.
	ReadOnly bool `json:"read_only"`
}

// Orphan is a stored value whose key the schema no longer defines.
type Orphan struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// RenderModel is the projection of a value map through a schema.
type RenderModel struct {
	Fields  []FieldDescriptor `json:"fields"`
	Orphans []Orphan          `json:"orphans"`

	values domain.ValueMap
}

// Values returns a copy of the full value map behind the model, orphans included.
func (m RenderModel) Values() domain.ValueMap {
	return m.values.Clone()
}

// Field returns the descriptor for key.
func (m RenderModel) Field(key string) (FieldDescriptor, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Project renders every active field in schema order. Inactive fields appear
// read-only when the record still holds a value for them. Keys outside the
// schema are listed as orphans, sorted by key.
func Project(schema domain.Schema, values domain.ValueMap) RenderModel {
	m := RenderModel{
		Fields:  make([]FieldDescriptor, 0, len(schema.Fields)),
		Orphans: []Orphan{},
		values:  values.Clone(),
	}

	for _, def := range schema.Fields {
		v, present := values[def.Key]
		if !def.Active && !present {
			continue
		}

		h, ok := domain.Lookup(def.Type)
		if !ok {
			continue
		}
		if !present {
			v = h.Empty()
		}

		m.Fields = append(m.Fields, FieldDescriptor{
			Key:      def.Key,
			Label:    def.Name,
			Type:     def.Type,
			Widget:   h.Widget,
			Required: def.Required,
			HelpText: def.HelpText,
			Min:      def.Min,
			Max:      def.Max,
			Regex:    def.Regex,
			Options:  orderedOptions(def, h),
			Value:    v,
			ReadOnly: !def.Active,
		})
	}

	for k, v := range values {
		if !schema.Has(k) {
			m.Orphans = append(m.Orphans, Orphan{Key: k, Value: v})
		}
	}
	sort.Slice(m.Orphans, func(i, j int) bool { return m.Orphans[i].Key < m.Orphans[j].Key })

	return m
}

// orderedOptions follows each option's Order, keeping list position for ties.
func orderedOptions(def domain.FieldDefinition, h domain.TypeHandler) []domain.Option {
	if !h.Options {
		return nil
	}
	opts := make([]domain.Option, len(def.Options))
	copy(opts, def.Options)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Order < opts[j].Order })
	return opts
}

// WithErrors returns a copy of the model with field messages attached.
func (m RenderModel) WithErrors(errs map[string]string) RenderModel {
	out := m
	out.Fields = make([]FieldDescriptor, len(m.Fields))
	for i, f := range m.Fields {
		f.Error = errs[f.Key]
		out.Fields[i] = f
	}
	return out
}

// Apply returns a new value map with key set to v. The model and its map are
// left untouched. Orphans and read-only fields cannot be edited.
func Apply(m RenderModel, key string, v any) (domain.ValueMap, error) {
	f, ok := m.Field(key)
	if !ok {
		for _, o := range m.Orphans {
			if o.Key == key {
				return nil, ErrReadOnlyField
			}
		}
		return nil, ErrUnknownField
	}
	if f.ReadOnly {
		return nil, ErrReadOnlyField
	}

	out := m.values.Clone()
	out[key] = v
	return out, nil
}
