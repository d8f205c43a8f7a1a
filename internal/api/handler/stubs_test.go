package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/api/middleware"
	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/core/validation"
)

type stubFieldService struct {
	listFn   func(ctx context.Context, p domain.Principal) ([]domain.FieldDefinition, error)
	getFn    func(ctx context.Context, p domain.Principal, key string) (*domain.FieldDefinition, error)
	createFn func(ctx context.Context, p domain.Principal, in ports.CreateFieldInput) (*ports.FieldResult, error)
	updateFn func(ctx context.Context, p domain.Principal, key string, in ports.UpdateFieldInput) (*ports.FieldResult, error)
	deleteFn func(ctx context.Context, p domain.Principal, key string) error
	compatFn func(ctx context.Context, p domain.Principal, key string) (*domain.CompatibilityReport, error)
}

func (s *stubFieldService) List(ctx context.Context, p domain.Principal) ([]domain.FieldDefinition, error) {
	return s.listFn(ctx, p)
}

func (s *stubFieldService) Get(ctx context.Context, p domain.Principal, key string) (*domain.FieldDefinition, error) {
	return s.getFn(ctx, p, key)
}

func (s *stubFieldService) Create(ctx context.Context, p domain.Principal, in ports.CreateFieldInput) (*ports.FieldResult, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubFieldService) Update(ctx context.Context, p domain.Principal, key string, in ports.UpdateFieldInput) (*ports.FieldResult, error) {
	return s.updateFn(ctx, p, key, in)
}

func (s *stubFieldService) Delete(ctx context.Context, p domain.Principal, key string) error {
	return s.deleteFn(ctx, p, key)
}

func (s *stubFieldService) Compatibility(ctx context.Context, p domain.Principal, key string) (*domain.CompatibilityReport, error) {
	return s.compatFn(ctx, p, key)
}

type stubRecordService struct {
	formFn     func(ctx context.Context, p domain.Principal, id string) (*ports.RecordForm, error)
	replaceFn  func(ctx context.Context, p domain.Principal, id string, values domain.ValueMap) (*ports.RecordForm, error)
	validateFn func(ctx context.Context, p domain.Principal, values domain.ValueMap, key string) (validation.Result, error)
}

func (s *stubRecordService) Form(ctx context.Context, p domain.Principal, id string) (*ports.RecordForm, error) {
	return s.formFn(ctx, p, id)
}

func (s *stubRecordService) ReplaceCustom(ctx context.Context, p domain.Principal, id string, values domain.ValueMap) (*ports.RecordForm, error) {
	return s.replaceFn(ctx, p, id, values)
}

func (s *stubRecordService) Validate(ctx context.Context, p domain.Principal, values domain.ValueMap, key string) (validation.Result, error) {
	return s.validateFn(ctx, p, values, key)
}

type stubSchemaReader struct {
	schema domain.Schema
	err    error
}

func (s stubSchemaReader) Get(context.Context) (domain.Schema, error) {
	return s.schema, s.err
}

// newContext builds an echo context carrying p, as the Auth middleware would.
func newContext(method, target, body string, p domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.PrincipalKey, p)
	return c, rec
}

var (
	superAdmin = domain.Principal{Role: domain.RoleSuperAdmin, Username: "root"}
	pilote     = domain.Principal{Role: domain.RolePilote, Username: "pia"}
	user       = domain.Principal{Role: domain.RoleUtilisateur, Username: "uma"}
)
