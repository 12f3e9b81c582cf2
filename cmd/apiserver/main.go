// Command apiserver serves the CGSmiles resolver over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/application/resolution"
	"github.com/turtacn/cgsmiles/internal/config"
	"github.com/turtacn/cgsmiles/internal/infrastructure/database/redis"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/cgsmiles/internal/interfaces/http"
	"github.com/turtacn/cgsmiles/internal/interfaces/http/handlers"
	"github.com/turtacn/cgsmiles/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	purge := flag.Bool("purge-cache", false, "drop cached results before serving (use after changing resolver settings)")
	flag.Parse()

	if err := run(*configPath, *port, *purge); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, purgeCache bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log.ToLogging())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("starting cgsmiles apiserver",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.Bool("redis", cfg.Redis.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	collector := prometheus.NewNopCollector()
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return err
		}
	}
	metrics := prometheus.NewAppMetrics(collector)

	// Resolution service and its optional result cache
	svcOpts := []resolution.Option{resolution.WithMetrics(metrics)}
	var checkers []handlers.HealthChecker
	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		cache := redis.NewResultCache(rc, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithTTL(cfg.Redis.ResultTTL),
			redis.WithObserver(func(hit bool) {
				prometheus.RecordCacheAccess(metrics, "result", hit)
			}),
		)
		if purgeCache {
			n, err := cache.Purge(ctx)
			if err != nil {
				return err
			}
			logger.Info("purged result cache", logging.Int64("keys", n))
		}
		svcOpts = append(svcOpts, resolution.WithResultCache(cache))
		checkers = append(checkers, handlers.NewPingChecker("redis", cache.Ping))
	}
	svc := resolution.NewService(resolution.NewResolver(cfg.Resolver, metrics), logger, svcOpts...)

	// HTTP
	gin.SetMode(cfg.Server.Mode)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		ResolutionHandler: handlers.NewResolutionHandler(svc),
		HealthHandler:     handlers.NewHealthHandler(version, metrics, checkers...),
		Logging:           middleware.DefaultLoggingConfig(),
		MaxBodySize:       cfg.Server.MaxBodySize,
		Logger:            logger,
		Metrics:           metrics,
		MetricsCollector:  collector,
		MetricsPath:       cfg.Metrics.Path,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// watchLogLevel applies log.level changes in the config file without a
// restart. Other settings need one.
func watchLogLevel(path string, logger logging.Logger) {
	err := config.Watch(path, func(cfg *config.Config) {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return
		}
		if logging.SetLevel(logger, level) {
			logger.Info("log level updated", logging.String("level", level.String()))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}
