// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/logplatform/backend/internal/config"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Engine   QueryEngine
	Peers    PeerClient
	Fleet    FleetQuerier
	Bindings BindingStore
	Logger   *zap.Logger
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Logs   LogHandler
	Config ConfigHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Bindings),
		Logs:   NewLogHandler(deps.Engine, deps.Peers, deps.Fleet, deps.Bindings, deps.Logger),
		Config: NewConfigHandler(deps.Bindings, deps.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Log queries
	logGroup := apiGroup.Group("/logs")
	logGroup.GET("/query", handlers.Logs.HandleQuery)
	logGroup.GET("/dates", handlers.Logs.HandleDates)
	logGroup.GET("/files/:date", handlers.Logs.HandleDateFiles)
	logGroup.GET("/remote/query", handlers.Logs.HandleRemoteQuery)
	logGroup.GET("/remote/dates", handlers.Logs.HandleRemoteDates)
	logGroup.GET("/remote/files/:date", handlers.Logs.HandleRemoteDateFiles)
	logGroup.GET("/fleet/query", handlers.Logs.HandleFleetQuery)

	// Server and app bindings
	configGroup := apiGroup.Group("/config")
	configGroup.GET("/servers", handlers.Config.HandleListServers)
	configGroup.POST("/servers", handlers.Config.HandleCreateServer)
	configGroup.GET("/servers/:id", handlers.Config.HandleGetServer)
	configGroup.PUT("/servers/:id", handlers.Config.HandleUpdateServer)
	configGroup.DELETE("/servers/:id", handlers.Config.HandleDeleteServer)
	configGroup.GET("/apps", handlers.Config.HandleListApps)
	configGroup.POST("/apps", handlers.Config.HandleCreateApp)
	configGroup.GET("/apps/server/:serverId", handlers.Config.HandleListAppsForServer)
	configGroup.GET("/apps/:id", handlers.Config.HandleGetApp)
	configGroup.PUT("/apps/:id", handlers.Config.HandleUpdateApp)
	configGroup.DELETE("/apps/:id", handlers.Config.HandleDeleteApp)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *zap.Logger) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Logging.EnableRequestLogging || c.Request().URL.Path == "/api/health"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("requestId", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Fleet queries wait on the slowest peer, so they get the peer deadline
	// on top of the regular request budget.
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout)*time.Second + cfg.RemoteTimeout(),
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		ErrorMessage: "Request timeout - query took too long",
	}))

	e.Use(middleware.Gzip())

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{HeaderPeerStatus, HeaderResultCapped, HeaderQueryWarnings, HeaderQueryFiles, echo.HeaderXRequestID},
		}))
	}
}
