package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/domain"
)

// PrincipalKey is the echo context key holding the request's domain.Principal.
const PrincipalKey = "principal"

// Auth validates the bearer JWT and stores the caller's Principal in the
// context. Tokens without a known role are rejected: a principal always
// carries one of the fixed roles.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			role, _ := claims["role"].(string)
			if !domain.Role(role).IsValid() {
				return echo.NewHTTPError(http.StatusUnauthorized, "token carries no known role")
			}
			username, _ := claims["username"].(string)
			if username == "" {
				username, _ = claims.GetSubject()
			}

			c.Set(PrincipalKey, domain.Principal{Role: domain.Role(role), Username: username})
			return next(c)
		}
	}
}

// PrincipalFrom returns the Principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	return p, ok
}
