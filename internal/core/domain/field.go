package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	keyPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugReplace = regexp.MustCompile(`[^a-z0-9]+`)
)

// Option is one allowed value of a select or tags field.
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
	Order int    `json:"order" bson:"order"`
}

// FieldDefinition is an administrator-authored custom field.
type FieldDefinition struct {
	Key            string     `json:"key" bson:"key"`
	Name           string     `json:"name" bson:"name"`
	Type           FieldType  `json:"type" bson:"type"`
	Required       bool       `json:"required" bson:"required"`
	Min            *float64   `json:"min,omitempty" bson:"min,omitempty"`
	Max            *float64   `json:"max,omitempty" bson:"max,omitempty"`
	Regex          string     `json:"regex,omitempty" bson:"regex,omitempty"`
	Options        []Option   `json:"options,omitempty" bson:"options,omitempty"`
	RoleVisibility Visibility `json:"role_visibility" bson:"role_visibility"`
	Active         bool       `json:"active" bson:"active"`
	HelpText       string     `json:"help_text,omitempty" bson:"help_text,omitempty"`
	Position       int        `json:"position" bson:"position"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// UnmarshalJSON treats a definition without an "active" attribute as active.
func (d *FieldDefinition) UnmarshalJSON(data []byte) error {
	type plain FieldDefinition
	v := plain{Active: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = FieldDefinition(v)
	return nil
}

// Clone returns a copy that shares no slices or pointers with d.
func (d FieldDefinition) Clone() FieldDefinition {
	if d.Min != nil {
		v := *d.Min
		d.Min = &v
	}
	if d.Max != nil {
		v := *d.Max
		d.Max = &v
	}
	if d.Options != nil {
		d.Options = append([]Option(nil), d.Options...)
	}
	return d
}

// ValidKey reports whether key is a lowercase slug usable as a field key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Validate checks the definition is well formed before it is stored.
// Failures are reported per attribute and wrap ErrInvalidDefinition.
func (d FieldDefinition) Validate() error {
	errs := make(map[string]string)

	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "required"
	}
	if !ValidKey(d.Key) {
		errs["key"] = "must be a lowercase slug"
	}

	h, ok := Lookup(d.Type)
	if !ok {
		errs["type"] = fmt.Sprintf("unknown type %q", d.Type)
	}

	if d.Regex != "" {
		if d.Type != TypeText {
			errs["regex"] = "only allowed on text fields"
		} else if _, err := regexp.Compile(d.Regex); err != nil {
			errs["regex"] = "does not compile"
		}
	}

	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		errs["min"] = "must not exceed max"
	}
	if ok && (d.Min != nil || d.Max != nil) {
		switch {
		case !h.Bounded:
			errs["min"] = "bounds not allowed on " + string(d.Type) + " fields"
		case d.Type != TypeNumber && ((d.Min != nil && *d.Min < 0) || (d.Max != nil && *d.Max < 0)):
			errs["min"] = "bounds must be non-negative"
		}
	}

	if ok && !h.Options && len(d.Options) > 0 {
		errs["options"] = "only allowed on select and tags fields"
	}
	if ok && h.Options {
		seen := make(map[string]struct{}, len(d.Options))
		for _, o := range d.Options {
			if o.Value == "" {
				errs["options"] = "option value must not be empty"
				break
			}
			if _, dup := seen[o.Value]; dup {
				errs["options"] = fmt.Sprintf("duplicate option value %q", o.Value)
				break
			}
			seen[o.Value] = struct{}{}
		}
		if d.Required && len(d.Options) == 0 {
			errs["options"] = "required field needs at least one option"
		}
	}

	if d.RoleVisibility != "" && !d.RoleVisibility.IsValid() {
		errs["role_visibility"] = fmt.Sprintf("unknown audience %q", d.RoleVisibility)
	}

	if len(errs) > 0 {
		return NewValidationError(errs, ErrInvalidDefinition)
	}
	return nil
}

// HasOption reports whether v is one of the definition's option values.
func (d FieldDefinition) HasOption(v string) bool {
	for _, o := range d.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Slugify derives a field key from a display name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugReplace.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Schema is the ordered set of definitions in force. It is replaced
// wholesale, never patched.
type Schema struct {
	Fields  []FieldDefinition `json:"fields"`
	Version time.Time         `json:"version"`
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	out := Schema{Version: s.Version}
	if s.Fields != nil {
		out.Fields = make([]FieldDefinition, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

// Lookup finds a definition by key, active or not.
func (s Schema) Lookup(key string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Has reports whether key names a definition in the schema.
func (s Schema) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Active keeps only definitions offered on forms.
func (s Schema) Active() Schema {
	return s.filter(func(f FieldDefinition) bool { return f.Active })
}

// VisibleTo keeps only definitions whose audience includes p.
func (s Schema) VisibleTo(p Principal) Schema {
	return s.filter(func(f FieldDefinition) bool { return p.Sees(f.RoleVisibility) })
}

func (s Schema) filter(keep func(FieldDefinition) bool) Schema {
	out := Schema{Version: s.Version, Fields: make([]FieldDefinition, 0, len(s.Fields))}
	for _, f := range s.Fields {
		if keep(f) {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// ValueMap holds the custom values of one record keyed by field key.
type ValueMap map[string]any

// Clone returns a shallow copy; values are treated as immutable.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
