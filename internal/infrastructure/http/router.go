package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planactions/customfields/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the unauthenticated operational endpoints: probes and
// the Prometheus scrape target.
func RegisterOps(e *echo.Echo, schema handlers.SchemaStater, checks ...handlers.Check) {
	health := handlers.NewHealthHandler()
	ready := handlers.NewReadinessHandler(schema, checks...)

	e.GET("/health", health.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", ready.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
