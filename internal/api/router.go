package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/lunchorder/order-system/internal/api/cookie"
	"github.com/lunchorder/order-system/internal/api/handler"
	"github.com/lunchorder/order-system/internal/api/metrics"
	"github.com/lunchorder/order-system/internal/api/middleware"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
	"github.com/lunchorder/order-system/internal/core/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Sessions   ports.SessionService
	Orders     ports.OrderService
	Principals ports.PrincipalService
	Health     map[string]handler.Pinger
	Cookie     cookie.Options
	Log        zerolog.Logger
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(metrics.Middleware("/metrics", "/health", "/health/ready"))
	e.Use(cookie.Middleware(d.Cookie))

	orderer := middleware.RequirePermission(d.Sessions, domain.PermissionOrderer)
	manager := middleware.RequirePermission(d.Sessions, domain.PermissionManager)
	shop := middleware.RequirePermission(d.Sessions, domain.PermissionShop)
	admin := middleware.RequirePermission(d.Sessions, domain.PermissionAdmin)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	e.GET("/", sessionHandler.Root)
	e.POST("/login", sessionHandler.Login)
	e.GET("/logout", sessionHandler.Logout)

	// --- Role entry points ---
	e.GET(service.DestinationOrderEntry, handler.View(service.DestinationOrderEntry), orderer)
	e.GET(service.DestinationManager, handler.View(service.DestinationManager), manager)
	e.GET(service.DestinationShop, handler.View(service.DestinationShop), shop)

	// --- Orders ---
	orderHandler := handler.NewOrderHandler(d.Orders)
	orders := e.Group("/orders", orderer)
	orders.POST("", orderHandler.Submit)
	orders.POST("/cancel", orderHandler.Cancel)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(d.Principals)
	adminGroup := e.Group(service.DestinationAdmin, admin)
	adminGroup.GET("", handler.View(service.DestinationAdmin))
	adminGroup.POST("/users", adminHandler.Provision)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second
