// Package config defines the configuration structures for the cgsmiles
// resolver binaries. No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// ToLogging converts the section into the logger's own configuration type.
func (l LogConfig) ToLogging() logging.LogConfig {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.LogConfig{
		Level:       level,
		Format:      l.Format,
		OutputPaths: l.OutputPaths,
	}
}

// ResolverConfig bounds the work a single notation may request.
type ResolverConfig struct {
	// MaxNotationLength rejects notations longer than this many bytes. Zero disables the check.
	MaxNotationLength int `mapstructure:"max_notation_length"`
	// MaxRepeat is the largest accepted |N repeat count in the meta block.
	MaxRepeat int `mapstructure:"max_repeat"`
	// MaxInstances caps fragment instances after repeat expansion.
	MaxInstances int `mapstructure:"max_instances"`
	// MaxAtoms caps the resolved molecule, hydrogens included.
	MaxAtoms           int  `mapstructure:"max_atoms"`
	ShareTemplateCache bool `mapstructure:"share_template_cache"`
}

// RedisConfig holds Redis connection parameters for the resolved-result cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ResultTTL    time.Duration `mapstructure:"result_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MetricsConfig controls the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 0, got %d", c.Server.MaxBodySize)
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Resolver
	if c.Resolver.MaxNotationLength < 0 {
		return fmt.Errorf("config: resolver.max_notation_length must be ≥ 0, got %d", c.Resolver.MaxNotationLength)
	}
	if c.Resolver.MaxRepeat < 1 {
		return fmt.Errorf("config: resolver.max_repeat must be ≥ 1, got %d", c.Resolver.MaxRepeat)
	}
	if c.Resolver.MaxInstances < 1 {
		return fmt.Errorf("config: resolver.max_instances must be ≥ 1, got %d", c.Resolver.MaxInstances)
	}
	if c.Resolver.MaxAtoms < 1 {
		return fmt.Errorf("config: resolver.max_atoms must be ≥ 1, got %d", c.Resolver.MaxAtoms)
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
		if c.Redis.ResultTTL < 0 {
			return fmt.Errorf("config: redis.result_ttl must be ≥ 0, got %s", c.Redis.ResultTTL)
		}
	}

	// Metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with '/'", c.Metrics.Path)
	}

	return nil
}
