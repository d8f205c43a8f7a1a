package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
)

func recordSchema() domain.Schema {
	return domain.Schema{Fields: []domain.FieldDefinition{
		{Key: "severity", Name: "Severity", Type: domain.TypeSelect, Required: true, Active: true,
			Options: []domain.Option{{Label: "Low", Value: "low", Order: 1}, {Label: "High", Value: "high", Order: 2}}},
		{Key: "budget", Name: "Budget", Type: domain.TypeNumber, Active: true, Max: ptrFloat(1000)},
		{Key: "secret", Name: "Secret", Type: domain.TypeText, Active: true, RoleVisibility: domain.VisibilitySAPP},
		{Key: "retired", Name: "Retired", Type: domain.TypeText, Active: false},
	}}
}

func ptrFloat(f float64) *float64 { return &f }

func newRecordFixture(custom domain.ValueMap) (*stubRecordRepo, *stubSchemaReader, ports.RecordService) {
	records := newStubRecordRepo(domain.ActionRecord{ActID: "a1", Custom: custom})
	schema := &stubSchemaReader{schema: recordSchema()}
	return records, schema, NewRecordService(records, schema, policy.Default(), zerolog.Nop())
}

func TestRecordService_Form_HidesValuesOutsideAudience(t *testing.T) {
	_, _, svc := newRecordFixture(domain.ValueMap{"severity": "low", "secret": "VAL", "legacy": 1})

	rf, err := svc.Form(context.Background(), pilote, "a1")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if _, ok := rf.Form.Field("secret"); ok {
		t.Fatalf("Pilote must not see SA_PP field")
	}
	if _, ok := rf.Form.Values()["secret"]; ok {
		t.Fatalf("Pilote must not receive SA_PP value")
	}
	if len(rf.Form.Orphans) != 1 || rf.Form.Orphans[0].Key != "legacy" {
		t.Fatalf("orphans = %v", rf.Form.Orphans)
	}

	rf, err = svc.Form(context.Background(), superAdmin, "a1")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if f, ok := rf.Form.Field("secret"); !ok || f.Value != "VAL" {
		t.Fatalf("SuperAdmin must see SA_PP value")
	}
}

func TestRecordService_Form_Errors(t *testing.T) {
	_, schema, svc := newRecordFixture(nil)

	if _, err := svc.Form(context.Background(), superAdmin, "missing"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	schema.err = domain.ErrSchemaUnavailable
	if _, err := svc.Form(context.Background(), superAdmin, "a1"); !errors.Is(err, domain.ErrSchemaUnavailable) {
		t.Fatalf("expected ErrSchemaUnavailable, got %v", err)
	}
}

func TestRecordService_ReplaceCustom_PreservesWhatCallerCannotEdit(t *testing.T) {
	records, _, svc := newRecordFixture(domain.ValueMap{
		"severity": "low",
		"secret":   "VAL",
		"retired":  "old text",
		"legacy":   42,
	})

	_, err := svc.ReplaceCustom(context.Background(), pilote, "a1", domain.ValueMap{
		"severity": "high",
		"budget":   "250",
		"secret":   "hijack",
		"legacy":   0,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	want := domain.ValueMap{
		"severity": "high",
		"budget":   250.0,
		"secret":   "VAL",
		"retired":  "old text",
		"legacy":   42,
	}
	if got := records.byID["a1"].Custom; !reflect.DeepEqual(got, want) {
		t.Fatalf("stored = %#v, want %#v", got, want)
	}
}

func TestRecordService_InactiveRequiredFieldIsNotChecked(t *testing.T) {
	records, schema, svc := newRecordFixture(domain.ValueMap{"severity": "low"})
	schema.schema.Fields = append(schema.schema.Fields, domain.FieldDefinition{
		Key: "closed-on", Name: "Closed on", Type: domain.TypeDate, Required: true, Active: false,
	})
	ctx := context.Background()

	if _, err := svc.ReplaceCustom(ctx, superAdmin, "a1", domain.ValueMap{"severity": "high"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := records.byID["a1"].Custom["severity"]; got != "high" {
		t.Fatalf("severity = %v", got)
	}
	res, err := svc.Validate(ctx, superAdmin, domain.ValueMap{"severity": "low"}, "")
	if err != nil || !res.IsValid {
		t.Fatalf("validate: %+v, %v", res, err)
	}
}

func TestRecordService_ReplaceCustom_ValidationFailureStoresNothing(t *testing.T) {
	records, _, svc := newRecordFixture(domain.ValueMap{"severity": "low"})

	_, err := svc.ReplaceCustom(context.Background(), superAdmin, "a1", domain.ValueMap{
		"severity": "medium",
		"budget":   1500,
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := map[string]string{"severity": "invalid option", "budget": "max 1000"}
	if !reflect.DeepEqual(ve.Errors, want) {
		t.Fatalf("errors = %v, want %v", ve.Errors, want)
	}
	if len(records.replaced) != 0 {
		t.Fatalf("invalid values were written")
	}
}

func TestRecordService_ReplaceCustom_ReadOnlyRoleDenied(t *testing.T) {
	records, _, svc := newRecordFixture(domain.ValueMap{"severity": "low"})

	_, err := svc.ReplaceCustom(context.Background(), user, "a1", domain.ValueMap{"severity": "high"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if len(records.replaced) != 0 {
		t.Fatalf("denied command wrote values")
	}
}

func TestRecordService_ReplaceCustom_StoreRejectionSurfacesAccessDenied(t *testing.T) {
	records, _, svc := newRecordFixture(domain.ValueMap{"severity": "low"})
	records.replaceErr = domain.ErrAccessDenied

	_, err := svc.ReplaceCustom(context.Background(), superAdmin, "a1", domain.ValueMap{"severity": "high"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		t.Fatalf("access denial must not look like a validation error")
	}
}

func TestRecordService_Validate(t *testing.T) {
	_, _, svc := newRecordFixture(nil)

	res, err := svc.Validate(context.Background(), user, domain.ValueMap{}, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.IsValid || res.Errors["severity"] != "required" {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = svc.Validate(context.Background(), user, domain.ValueMap{"budget": -1, "severity": "bad"}, "budget")
	if err != nil {
		t.Fatalf("validate field: %v", err)
	}
	if !res.IsValid || len(res.Errors) != 0 {
		t.Fatalf("single-field check must only look at budget: %+v", res)
	}

	if _, err := svc.Validate(context.Background(), user, domain.ValueMap{}, "secret"); !errors.Is(err, domain.ErrFieldNotFound) {
		t.Fatalf("hidden field must not be addressable, got %v", err)
	}
}
