package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/planactions/customfields/internal/api/handler"
	"github.com/planactions/customfields/internal/api/middleware"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
	infrahttp "github.com/planactions/customfields/internal/infrastructure/http"
	"github.com/planactions/customfields/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string
	Policy    *policy.Table
	Schema    SchemaStore
	Fields    ports.FieldService
	Records   ports.RecordService
	Checks    []handlers.Check

	// Registerer receives the HTTP request metrics. Nil means the default
	// registry, which may only be used by one router per process.
	Registerer prometheus.Registerer
}

// SchemaStore is the schema cache as seen by the HTTP layer.
type SchemaStore interface {
	ports.SchemaReader
	handlers.SchemaStater
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "customfields",
		Registerer: d.Registerer,
		Skipper:    skipOps,
	}))

	// --- Probes, metrics and docs (no auth required) ---
	infrahttp.RegisterOps(e, d.Schema, d.Checks...)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	fields := handler.NewFieldHandler(d.Fields)
	records := handler.NewRecordHandler(d.Records)
	schema := handler.NewSchemaHandler(d.Schema, d.Records, d.Policy)
	can := func(action, resource string) echo.MiddlewareFunc {
		return middleware.Authorize(d.Policy, action, resource)
	}

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))

	v1.GET("/policy", schema.Policy)
	v1.GET("/custom-fields/schema", schema.Schema, can(policy.ActionRead, policy.ResourceCustomField))
	v1.POST("/custom-fields/validate", schema.Validate, can(policy.ActionRead, policy.ResourceCustomField))

	admin := v1.Group("/admin/custom-fields")
	admin.GET("", fields.List, can(policy.ActionRead, policy.ResourceCustomField))
	admin.GET("/:key", fields.Get, can(policy.ActionRead, policy.ResourceCustomField))
	admin.POST("", fields.Create, can(policy.ActionCreate, policy.ResourceCustomField))
	admin.PATCH("/:key", fields.Update, can(policy.ActionUpdate, policy.ResourceCustomField))
	admin.DELETE("/:key", fields.Delete, can(policy.ActionDelete, policy.ResourceCustomField))
	admin.GET("/:key/compatibility", fields.Compatibility, can(policy.ActionUpdate, policy.ResourceCustomField))

	v1.GET("/actions/:id/custom", records.Get, can(policy.ActionRead, policy.ResourceAction))
	v1.PUT("/actions/:id/custom", records.Replace, can(policy.ActionUpdate, policy.ResourceAction))

	return e
}

// skipOps keeps probes, scrapes and docs out of the request metrics.
func skipOps(c echo.Context) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/swagger")
}
