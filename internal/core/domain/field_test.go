package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Criticité":          "criticit",
		"  Root Cause  ":     "root-cause",
		"Budget (k€) / 2025": "budget-k-2025",
		"---":                "",
		"Already-a-slug":     "already-a-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldDefinition_ValidateOK(t *testing.T) {
	def := FieldDefinition{
		Key: "severity", Name: "Severity", Type: TypeSelect, Required: true,
		Options: []Option{{Label: "Low", Value: "low", Order: 1}, {Label: "High", Value: "high", Order: 2}},
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldDefinition_ValidateReportsEachAttribute(t *testing.T) {
	def := FieldDefinition{
		Key:            "Bad Key",
		Type:           TypeNumber,
		Regex:          "[a-z]+",
		Min:            ptr(10),
		Max:            ptr(1),
		Options:        []Option{{Label: "x", Value: "x"}},
		RoleVisibility: "Everyone",
	}
	err := def.Validate()
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError")
	}
	for _, k := range []string{"name", "key", "regex", "min", "options", "role_visibility"} {
		if _, ok := ve.Errors[k]; !ok {
			t.Fatalf("missing error for %s: %v", k, ve.Errors)
		}
	}
}

func TestFieldDefinition_RequiredTagsNeedOptions(t *testing.T) {
	def := FieldDefinition{Key: "labels", Name: "Labels", Type: TypeTags, Required: true}
	var ve *ValidationError
	if !errors.As(def.Validate(), &ve) || ve.Errors["options"] == "" {
		t.Fatalf("expected options error")
	}
}

func TestFieldDefinition_DuplicateOptionValues(t *testing.T) {
	def := FieldDefinition{
		Key: "labels", Name: "Labels", Type: TypeTags,
		Options: []Option{{Label: "A", Value: "a"}, {Label: "A bis", Value: "a"}},
	}
	var ve *ValidationError
	if !errors.As(def.Validate(), &ve) || ve.Errors["options"] == "" {
		t.Fatalf("expected duplicate option error")
	}
}

func TestFieldDefinition_BadRegex(t *testing.T) {
	def := FieldDefinition{Key: "code", Name: "Code", Type: TypeText, Regex: "([a-z"}
	var ve *ValidationError
	if !errors.As(def.Validate(), &ve) || ve.Errors["regex"] != "does not compile" {
		t.Fatalf("expected regex compile error, got %v", ve)
	}
}

func TestSchemaFilters(t *testing.T) {
	s := Schema{Fields: []FieldDefinition{
		{Key: "a", Active: true, RoleVisibility: VisibilityAll},
		{Key: "b", Active: false, RoleVisibility: VisibilityAll},
		{Key: "c", Active: true, RoleVisibility: VisibilitySAPP},
		{Key: "d", Active: true},
	}}

	if got := len(s.Active().Fields); got != 3 {
		t.Fatalf("active = %d, want 3", got)
	}

	pilote := s.VisibleTo(Principal{Role: RolePilote})
	if pilote.Has("c") {
		t.Fatalf("Pilote must not see SA_PP field")
	}
	if !pilote.Has("d") {
		t.Fatalf("empty visibility means All")
	}
	if !s.VisibleTo(Principal{Role: RolePiloteProcessus}).Has("c") {
		t.Fatalf("PiloteProcessus must see SA_PP field")
	}
	if got := len(s.Fields); got != 4 {
		t.Fatalf("filter mutated the receiver")
	}
}

func TestPrincipalSees(t *testing.T) {
	cases := []struct {
		role Role
		vis  Visibility
		want bool
	}{
		{RoleSuperAdmin, VisibilitySAPP, true},
		{RolePilote, VisibilitySAPP, false},
		{RolePilote, VisibilityPilote, true},
		{RoleUtilisateur, VisibilityPilote, false},
		{RoleUtilisateur, VisibilityUtilisateur, true},
		{Role("Guest"), VisibilityAll, true},
		{Role("Guest"), VisibilityUtilisateur, false},
	}
	for _, tc := range cases {
		if got := (Principal{Role: tc.role}).Sees(tc.vis); got != tc.want {
			t.Fatalf("%s sees %s = %v, want %v", tc.role, tc.vis, got, tc.want)
		}
	}
}

func TestFieldDefinition_DecodeDefaultsToActive(t *testing.T) {
	var defs []FieldDefinition
	raw := `[{"key":"a","type":"text"},{"key":"b","type":"text","active":false}]`
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !defs[0].Active || defs[1].Active {
		t.Fatalf("active = %v, %v; want true, false", defs[0].Active, defs[1].Active)
	}
}

func TestSchemaClone(t *testing.T) {
	orig := Schema{Fields: []FieldDefinition{{
		Key: "a", Type: TypeSelect, Min: ptr(1), Options: []Option{{Value: "x"}},
	}}}
	c := orig.Clone()
	c.Fields[0].Key = "b"
	*c.Fields[0].Min = 5
	c.Fields[0].Options[0].Value = "y"

	f := orig.Fields[0]
	if f.Key != "a" || *f.Min != 1 || f.Options[0].Value != "x" {
		t.Fatalf("clone shares state with the original: %+v", f)
	}
}
