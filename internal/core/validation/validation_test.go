package validation

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/planactions/customfields/internal/core/domain"
)

func ptr(f float64) *float64 { return &f }

func severitySchema() domain.Schema {
	return domain.Schema{Fields: []domain.FieldDefinition{{
		Key: "severity", Name: "Severity", Type: domain.TypeSelect, Required: true, Active: true,
		Options: []domain.Option{
			{Label: "Low", Value: "low", Order: 1},
			{Label: "High", Value: "high", Order: 2},
		},
	}}}
}

func TestValidateAll_RequiredSelectMissing(t *testing.T) {
	got := ValidateAll(severitySchema(), domain.ValueMap{})
	if got.IsValid {
		t.Fatalf("expected invalid")
	}
	if !reflect.DeepEqual(got.Errors, map[string]string{"severity": "required"}) {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
}

func TestValidateAll_UnknownOption(t *testing.T) {
	got := ValidateAll(severitySchema(), domain.ValueMap{"severity": "medium"})
	if got.IsValid || got.Errors["severity"] != MsgInvalidOption {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestValidateAll_ValidOption(t *testing.T) {
	got := ValidateAll(severitySchema(), domain.ValueMap{"severity": "high"})
	if !got.IsValid || len(got.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Err() != nil {
		t.Fatalf("valid result must not produce an error")
	}
}

func TestValidateField_NumberBounds(t *testing.T) {
	def := domain.FieldDefinition{Key: "budget", Type: domain.TypeNumber, Min: ptr(0), Max: ptr(1000), Active: true}
	cases := []struct {
		value any
		msg   string
		ok    bool
	}{
		{value: -5, msg: "min 0"},
		{value: 1500, msg: "max 1000"},
		{value: 500, ok: true},
		{value: json.Number("999.5"), ok: true},
		{value: "lots", msg: MsgInvalidType},
	}
	for _, tc := range cases {
		msg, ok := ValidateField(def, tc.value)
		if ok != tc.ok || msg != tc.msg {
			t.Fatalf("ValidateField(%v) = (%q, %v), want (%q, %v)", tc.value, msg, ok, tc.msg, tc.ok)
		}
	}
}

func TestValidateField_FractionalBoundMessage(t *testing.T) {
	def := domain.FieldDefinition{Key: "ratio", Type: domain.TypeNumber, Min: ptr(0.5)}
	if msg, _ := ValidateField(def, 0.1); msg != "min 0.5" {
		t.Fatalf("got %q", msg)
	}
}

func TestValidateField_RequiredEmptyForEveryScalarType(t *testing.T) {
	for _, ft := range []domain.FieldType{domain.TypeText, domain.TypeDate, domain.TypeSelect} {
		def := domain.FieldDefinition{Key: "k", Type: ft, Required: true}
		for _, empty := range []any{"", nil} {
			if msg, ok := ValidateField(def, empty); ok || msg != MsgRequired {
				t.Fatalf("%s with %#v: got (%q, %v)", ft, empty, msg, ok)
			}
		}
	}
}

func TestValidateField_OptionalEmptySkipsOtherRules(t *testing.T) {
	defs := []domain.FieldDefinition{
		{Key: "t", Type: domain.TypeText, Min: ptr(3), Regex: "[A-Z]+"},
		{Key: "s", Type: domain.TypeSelect, Options: []domain.Option{{Value: "a"}}},
		{Key: "g", Type: domain.TypeTags, Min: ptr(1)},
		{Key: "d", Type: domain.TypeDate},
		{Key: "n", Type: domain.TypeNumber, Min: ptr(10)},
	}
	for _, def := range defs {
		for _, empty := range []any{"", nil} {
			if msg, ok := ValidateField(def, empty); !ok {
				t.Fatalf("%s with %#v: unexpected %q", def.Key, empty, msg)
			}
		}
	}
}

func TestValidateField_Tags(t *testing.T) {
	def := domain.FieldDefinition{
		Key: "labels", Type: domain.TypeTags, Required: true, Min: ptr(1), Max: ptr(2),
		Options: []domain.Option{{Value: "a"}, {Value: "b"}, {Value: "c"}},
	}
	if msg, _ := ValidateField(def, []any{}); msg != MsgRequired {
		t.Fatalf("empty tags: got %q", msg)
	}
	if msg, _ := ValidateField(def, []any{"a", "b", "c"}); msg != "max 2" {
		t.Fatalf("too many tags: got %q", msg)
	}
	if _, ok := ValidateField(def, []any{"a", "a", "b"}); !ok {
		t.Fatalf("duplicates collapse before cardinality check")
	}
	if msg, _ := ValidateField(def, []string{"a", "z"}); msg != MsgInvalidOption {
		t.Fatalf("element-wise membership: got %q", msg)
	}
	if msg, _ := ValidateField(def, "a"); msg != MsgInvalidType {
		t.Fatalf("bare string: got %q", msg)
	}
}

func TestValidateField_TextRules(t *testing.T) {
	def := domain.FieldDefinition{Key: "cause", Type: domain.TypeText, Regex: "[A-Z]+", Max: ptr(5)}
	if msg, _ := ValidateField(def, "abc"); msg != MsgInvalidFormat {
		t.Fatalf("got %q", msg)
	}
	if msg, _ := ValidateField(def, "xABCx"); msg != MsgInvalidFormat {
		t.Fatalf("pattern must match the whole value, got %q", msg)
	}
	if _, ok := ValidateField(def, "ABC"); !ok {
		t.Fatalf("ABC should pass")
	}
	if msg, _ := ValidateField(def, "ABCDEFG"); msg != "max 5" {
		t.Fatalf("bounds run before pattern, got %q", msg)
	}
	if msg, _ := ValidateField(def, 12); msg != MsgInvalidType {
		t.Fatalf("got %q", msg)
	}
}

func TestValidateField_DateAndBool(t *testing.T) {
	date := domain.FieldDefinition{Key: "due", Type: domain.TypeDate}
	if msg, _ := ValidateField(date, "2024-13-01"); msg != MsgInvalidType {
		t.Fatalf("got %q", msg)
	}
	if _, ok := ValidateField(date, "2024-12-01"); !ok {
		t.Fatalf("valid date rejected")
	}

	flag := domain.FieldDefinition{Key: "done", Type: domain.TypeBool, Required: true}
	if msg, _ := ValidateField(flag, nil); msg != MsgRequired {
		t.Fatalf("got %q", msg)
	}
	if _, ok := ValidateField(flag, false); !ok {
		t.Fatalf("false satisfies required")
	}
	if msg, _ := ValidateField(flag, ""); msg != MsgInvalidType {
		t.Fatalf("got %q", msg)
	}
}

func TestValidateField_BrokenStoredPatternFailsClosed(t *testing.T) {
	def := domain.FieldDefinition{Key: "code", Type: domain.TypeText, Regex: "([a-z"}
	if msg, _ := ValidateField(def, "abc"); msg != MsgInvalidFormat {
		t.Fatalf("got %q", msg)
	}
}

func TestValidateAll_IgnoresOrphans(t *testing.T) {
	schema := domain.Schema{Fields: []domain.FieldDefinition{
		{Key: "a", Type: domain.TypeText, Required: true, Active: true},
		{Key: "b", Type: domain.TypeText, Required: true, Active: false},
	}}
	values := domain.ValueMap{"a": "x", "legacy": 42}

	if got := ValidateAll(schema.Active(), values); !got.IsValid {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
	got := ValidateAll(schema, values)
	if len(got.Errors) != 1 || got.Errors["b"] != MsgRequired {
		t.Fatalf("every field of the schema is checked, got %v", got.Errors)
	}
}

func TestValidateAll_DecodedSchemaWithoutActive(t *testing.T) {
	var schema domain.Schema
	raw := `{"fields":[{"key":"severity","name":"Severity","type":"select","required":true,
		"options":[{"label":"Low","value":"low"},{"label":"High","value":"high"}]}]}`
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := ValidateAll(schema, domain.ValueMap{})
	if got.IsValid || got.Errors["severity"] != MsgRequired {
		t.Fatalf("empty map: %+v", got)
	}
	got = ValidateAll(schema, domain.ValueMap{"severity": "medium"})
	if got.IsValid || got.Errors["severity"] != MsgInvalidOption {
		t.Fatalf("unknown option: %+v", got)
	}
	if got = ValidateAll(schema.Active(), domain.ValueMap{"severity": "low"}); !got.IsValid {
		t.Fatalf("valid option: %+v", got)
	}
}

func TestValidateAll_ZeroValueDefinition(t *testing.T) {
	schema := domain.Schema{Fields: []domain.FieldDefinition{{
		Key: "severity", Type: domain.TypeSelect, Required: true,
		Options: []domain.Option{{Value: "low"}, {Value: "high"}},
	}}}
	if got := ValidateAll(schema, domain.ValueMap{}); got.Errors["severity"] != MsgRequired {
		t.Fatalf("got %+v", got)
	}
}

func TestValidateAll_Deterministic(t *testing.T) {
	schema := domain.Schema{Fields: []domain.FieldDefinition{
		{Key: "a", Type: domain.TypeText, Required: true, Active: true},
		{Key: "b", Type: domain.TypeNumber, Max: ptr(1), Active: true},
		{Key: "c", Type: domain.TypeSelect, Active: true, Options: []domain.Option{{Value: "x"}}},
	}}
	values := domain.ValueMap{"b": 3, "c": "y"}

	first, _ := json.Marshal(ValidateAll(schema, values))
	for i := 0; i < 20; i++ {
		again, _ := json.Marshal(ValidateAll(schema, values))
		if string(first) != string(again) {
			t.Fatalf("run %d differs: %s vs %s", i, first, again)
		}
	}
}

func TestResultErr(t *testing.T) {
	err := ValidateAll(severitySchema(), domain.ValueMap{}).Err()
	ve, ok := err.(*domain.ValidationError)
	if !ok || ve.Errors["severity"] != MsgRequired {
		t.Fatalf("unexpected error: %v", err)
	}
}
