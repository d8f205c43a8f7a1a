package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/metrics"
)

// Authorize admits the request only when the rule table lets the caller
// perform action on resource. Services check again; this gate keeps denied
// requests from reaching them at all.
func Authorize(rules *policy.Table, action, resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !rules.Can(p, action, resource) {
				metrics.PolicyDenials.WithLabelValues(action, resource).Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
			}
			return next(c)
		}
	}
}
