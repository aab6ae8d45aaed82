package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/client-contracts/docs"
	"github.com/99minutos/client-contracts/internal/api/handler"
	"github.com/99minutos/client-contracts/internal/api/middleware"
	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// Services are the core use cases the HTTP layer exposes.
type Services struct {
	Auth      ports.AuthService
	Clients   ports.ClientService
	Lifecycle ports.LifecycleService
	Contracts ports.ContractService
}

// RouterConfig carries the transport settings.
type RouterConfig struct {
	JWTSecret string
	Logger    zerolog.Logger
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(accessLog(cfg.Logger))
	e.Use(httpMetrics(cfg.Registry))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	clientHandler := handler.NewClientHandler(svc.Clients, svc.Lifecycle, svc.Contracts)
	contractHandler := handler.NewContractHandler(svc.Contracts)

	auth := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleClient)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, auth, adminOnly)

	// --- Client routes ---
	v1 := e.Group("/v1", auth)

	clients := v1.Group("/clients")
	clients.POST("/person", clientHandler.CreatePerson, adminOnly)
	clients.POST("/company", clientHandler.CreateCompany, adminOnly)
	clients.GET("", clientHandler.List, adminOnly)
	clients.GET("/:id", clientHandler.Get, anyRole)
	clients.PUT("/:id", clientHandler.Update, anyRole)
	clients.DELETE("/:id", clientHandler.Delete, adminOnly)
	clients.GET("/:id/contracts", clientHandler.ListContracts, anyRole)
	clients.GET("/:id/contracts/active", clientHandler.ListActiveContracts, anyRole)
	clients.GET("/:id/contracts/active/sum", clientHandler.SumActiveCost, anyRole)
	clients.GET("/:id/history", clientHandler.History, adminOnly)

	// --- Contract routes ---
	contracts := v1.Group("/contracts", adminOnly)
	contracts.POST("", contractHandler.Create)
	contracts.GET("/:id", contractHandler.Get)
	contracts.PUT("/:id", contractHandler.Update)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", metricsHandler(cfg.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func httpMetrics(reg *prometheus.Registry) echo.MiddlewareFunc {
	mwCfg := echoprometheus.MiddlewareConfig{
		Subsystem: "clientledger",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}
	if reg != nil {
		mwCfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(mwCfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// accessLog writes one zerolog line per request.
func accessLog(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
