package form

import "github.com/planactions/customfields/internal/core/domain"

// Hide drops the values of fields the principal is not in the audience of.
// Orphans are kept: they belong to no audience.
func Hide(schema domain.Schema, p domain.Principal, values domain.ValueMap) domain.ValueMap {
	out := make(domain.ValueMap, len(values))
	for k, v := range values {
		if def, ok := schema.Lookup(k); ok && !p.Sees(def.RoleVisibility) {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge builds the map to store from what is stored and what the caller sent.
// Only keys editable in schema (active definitions) are taken from incoming;
// an editable key missing from incoming is cleared. Every other stored key,
// including orphans and values of fields outside schema, is kept verbatim.
func Merge(schema domain.Schema, stored, incoming domain.ValueMap) domain.ValueMap {
	out := stored.Clone()
	for _, def := range schema.Fields {
		if !def.Active {
			continue
		}
		if v, ok := incoming[def.Key]; ok {
			out[def.Key] = v
		} else {
			delete(out, def.Key)
		}
	}
	return out
}

// Canonical rewrites editable values into the registry's canonical shape and
// drops empty ones. Values that do not coerce are left as they are; callers
// validate first.
func Canonical(schema domain.Schema, values domain.ValueMap) domain.ValueMap {
	out := values.Clone()
	for _, def := range schema.Fields {
		if !def.Active {
			continue
		}
		v, ok := out[def.Key]
		if !ok {
			continue
		}
		h, known := domain.Lookup(def.Type)
		if !known {
			continue
		}
		if h.IsAbsent(v) {
			delete(out, def.Key)
			continue
		}
		if c, ok := h.Coerce(v); ok {
			out[def.Key] = c
		}
	}
	return out
}

// Seed returns the empty values a new record starts with.
func Seed(schema domain.Schema) domain.ValueMap {
	out := make(domain.ValueMap)
	for _, def := range schema.Fields {
		if !def.Active {
			continue
		}
		if h, ok := domain.Lookup(def.Type); ok {
			out[def.Key] = h.Empty()
		}
	}
	return out
}
