package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/storefront/shop-api/internal/api/handler"
	"github.com/storefront/shop-api/internal/api/middleware"
	"github.com/storefront/shop-api/internal/core/domain"
	"github.com/storefront/shop-api/internal/core/ports"
	"github.com/storefront/shop-api/internal/infrastructure/http/handlers"

	_ "github.com/storefront/shop-api/internal/docs"
)

// RouterConfig carries everything the router needs. Readiness is optional so
// tests can build the router without live dependencies.
type RouterConfig struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Readiness   *handlers.HealthDependenciesHandler
	CORSOrigins []string
	Log         zerolog.Logger
	// DisableMetrics skips the Prometheus middleware; the collectors it
	// registers are global, so tests building several routers set it.
	DisableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	if !cfg.DisableMetrics {
		e.Use(echoprometheus.NewMiddleware("shop"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.UserService)
	requireAuth := middleware.Auth(cfg.AuthService)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", userHandler.Profile, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- Account routes ---
	users := e.Group("/api/users", requireAuth)
	users.PUT("/me", userHandler.UpdateMe)
	users.POST("/me/addresses", userHandler.AddAddress)

	// --- Admin routes ---
	admin := e.Group("/api/admin", requireAuth, middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/users/:id", userHandler.AdminGet)

	// --- Health probes and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if cfg.Readiness != nil {
		e.GET("/health/ready", cfg.Readiness.Readiness)
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
