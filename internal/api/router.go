package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tesloshop/shop-auth/internal/api/handler"
	"github.com/tesloshop/shop-auth/internal/api/middleware"
	"github.com/tesloshop/shop-auth/internal/api/ws"
	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
	infrahttp "github.com/tesloshop/shop-auth/internal/infrastructure/http"
	"github.com/tesloshop/shop-auth/internal/infrastructure/http/handlers"
)

const metricsSubsystem = "shop_auth"

// Dependencies are the already-built services the router mounts.
type Dependencies struct {
	Log       zerolog.Logger
	Auth      ports.CredentialService
	Validator ports.TokenValidator
	// WS is optional; /ws is only mounted when it is set.
	WS     *ws.Handler
	Probes []handlers.Dependency
	// Registry receives the HTTP request metrics. Defaults to the global
	// prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Metrics ---
	if deps.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  metricsSubsystem,
			Registerer: deps.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: deps.Registry,
		}))
	} else {
		e.Use(echoprometheus.NewMiddleware(metricsSubsystem))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/check-status", authHandler.CheckStatus, middleware.Protected(deps.Validator)...)

	// --- Sample protected routes ---
	privateHandler := handler.NewPrivateHandler()
	e.GET("/auth/private", privateHandler.Show, middleware.Protected(deps.Validator)...)
	e.GET("/auth/private2", privateHandler.Show,
		middleware.Protected(deps.Validator, domain.RoleSuperUser, domain.RoleAdmin)...)
	e.GET("/auth/private3", privateHandler.Show, middleware.Protected(deps.Validator, domain.RoleAdmin)...)

	// --- Real-time gateway ---
	if deps.WS != nil {
		e.GET("/ws", deps.WS.Serve)
	}

	// --- Health probes (no auth required) ---
	infrahttp.RegisterProbes(e, deps.Probes...)

	return e
}
