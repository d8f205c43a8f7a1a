package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/policy"
)

func runAuthorize(t *testing.T, p *domain.Principal, action, resource string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if p != nil {
		c.Set(PrincipalKey, *p)
	}

	called := false
	h := Authorize(policy.Default(), action, resource)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthorize_Allows(t *testing.T) {
	p := domain.Principal{Role: domain.RolePiloteProcessus}
	rec, called := runAuthorize(t, &p, policy.ActionCreate, policy.ResourceCustomField)
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_Forbids(t *testing.T) {
	p := domain.Principal{Role: domain.RolePilote}
	rec, called := runAuthorize(t, &p, policy.ActionDelete, policy.ResourceCustomField)
	if called {
		t.Fatalf("next handler should not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access denied") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAuthorize_UnknownPairDenied(t *testing.T) {
	p := domain.Principal{Role: domain.RoleSuperAdmin}
	rec, called := runAuthorize(t, &p, "archive", policy.ResourceAction)
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("called=%v code=%d", called, rec.Code)
	}
}

func TestAuthorize_RequiresPrincipal(t *testing.T) {
	rec, called := runAuthorize(t, nil, policy.ActionRead, policy.ResourceAction)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("called=%v code=%d", called, rec.Code)
	}
}
