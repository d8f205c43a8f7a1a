package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Errors
// is keyed by field and only set for validation failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		if errors.Is(err, domain.ErrInvalidDefinition) {
			return http.StatusBadRequest, errorResponse{Error: "invalid field definition", Errors: ve.Errors}
		}
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Errors: ve.Errors}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, errorResponse{Error: "access denied"}
	case errors.Is(err, domain.ErrFieldNotFound):
		return http.StatusNotFound, errorResponse{Error: "custom field not found"}
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{Error: "action not found"}
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, errorResponse{Error: "no compatibility report for this field"}
	case errors.Is(err, domain.ErrFieldExists):
		return http.StatusConflict, errorResponse{Error: "custom field key already exists"}
	case errors.Is(err, domain.ErrKeyInUse):
		return http.StatusConflict, errorResponse{Error: "key is still used by stored values"}
	case errors.Is(err, domain.ErrImmutableKey):
		return http.StatusBadRequest, errorResponse{Error: "custom field key cannot be changed"}
	case errors.Is(err, domain.ErrInvalidDefinition):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSchemaUnavailable):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("schema unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: "custom fields are temporarily unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
