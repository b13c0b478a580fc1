package http

import (
	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes on e. They never
// require authentication.
func RegisterProbes(e *echo.Echo, deps ...handlers.Dependency) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
}
