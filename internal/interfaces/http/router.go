// Package http assembles the gin engine and the HTTP server of the resolver
// API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cgsmiles/internal/interfaces/http/handlers"
	"github.com/turtacn/cgsmiles/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure needed to build
// the route tree.
type RouterConfig struct {
	// Handlers
	ResolutionHandler *handlers.ResolutionHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the gin engine. Global middleware runs in the order
// request id, metrics, logging, recovery; a recovered panic reaches metrics
// and logging as a 500.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Metrics(cfg.Metrics),
		middleware.RequestLogging(cfg.Logger, cfg.Logging),
		middleware.Recovery(cfg.Logger),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1", middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.ResolutionHandler != nil {
		cfg.ResolutionHandler.RegisterRoutes(api)
	}

	r.NoRoute(handlers.NotFound)
	return r
}
