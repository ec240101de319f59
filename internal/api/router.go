package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/shopcore/storefront-api/docs"
	"github.com/shopcore/storefront-api/internal/api/handler"
	"github.com/shopcore/storefront-api/internal/api/middleware"
	"github.com/shopcore/storefront-api/internal/api/session"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

const APIPrefix = "/api/v1"

// Dependencies are the collaborators the HTTP layer needs. Everything is
// built in cmd/server and passed in explicitly.
type Dependencies struct {
	AuthService  ports.AuthService
	UserService  ports.UserService
	Tokens       ports.AccessVerifier
	Cookies      *session.CookieManager
	HealthChecks map[string]handler.HealthCheck
	Logger       zerolog.Logger
	CORSOrigins  []string

	// Metrics overrides the Prometheus registry used for HTTP metrics and
	// /metrics. Nil means the default global registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.Secure())
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			ExposeHeaders:    []string{echo.HeaderSetCookie},
			AllowCredentials: true,
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Cookies)
	userHandler := handler.NewUserHandler(deps.UserService, deps.Cookies)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	authMiddleware := middleware.Auth(deps.Tokens)

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // process is up
	e.GET("/health/ready", healthHandler.Readiness) // store and redis reachable
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group(APIPrefix)

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/sign-in", authHandler.SignIn)
	auth.POST("/sign-up", authHandler.SignUp)
	auth.POST("/sign-out", authHandler.SignOut, authMiddleware)
	auth.POST("/refresh-tokens", authHandler.RefreshTokens)

	// --- User routes ---
	users := v1.Group("/users", authMiddleware)
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)

	return e
}
