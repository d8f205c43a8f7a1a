package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/api/middleware"
	"github.com/planactions/customfields/internal/core/domain"
)

// ctxPrincipal returns the Principal injected by the Auth middleware. Its
// absence means the route was mounted outside the authenticated group.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || !p.Role.IsValid() {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
