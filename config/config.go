// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Deploy   DeployConfig   `yaml:"deploy"`
	Staging  StagingConfig  `yaml:"staging"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	OpenAPI  OpenAPIConfig  `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	StaticDir    string        `yaml:"static_dir"`   // Document root for GET fallthrough
	CORSOrigins  []string      `yaml:"cors_origins"` // Allowed origins, default "*"
}

// DeployConfig configures the external deployment tool.
type DeployConfig struct {
	Bin         string        `yaml:"bin"`          // Executable, default "sf"
	WaitMinutes int           `yaml:"wait_minutes"` // Tool-side wait bound (--wait)
	Timeout     time.Duration `yaml:"timeout"`      // Process-level backstop, 0 = none
}

// StagingConfig configures scratch directories for generated descriptors.
type StagingConfig struct {
	Root string `yaml:"root"` // Parent of per-deployment directories
	Keep bool   `yaml:"keep"` // Keep staged files after the deployment settles
}

// DatabaseConfig configures the deployment history database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // Enable Swagger UI endpoints
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Every setting has a default, so this never requires any variable to be set.
//
// Environment variables:
//
//	METAGATE_SERVER_HOST          - Listen host (default: 0.0.0.0)
//	METAGATE_SERVER_PORT / PORT   - Listen port (default: 3000)
//	METAGATE_SERVER_STATIC_DIR    - Document root for static files (default: public)
//	METAGATE_DEPLOY_BIN           - Deployment CLI executable (default: sf)
//	METAGATE_DEPLOY_WAIT_MINUTES  - Tool-side wait bound (default: 10)
//	METAGATE_DEPLOY_TIMEOUT       - Subprocess backstop (default: 15m)
//	METAGATE_STAGING_ROOT         - Staging parent dir (default: $TMPDIR/metagate)
//	METAGATE_STAGING_KEEP         - Keep staged files (default: false)
//	METAGATE_DATABASE_DSN         - History database path (default: metagate.db)
//	METAGATE_LOG_LEVEL            - debug, info, warn, error (default: info)
//	METAGATE_LOG_FORMAT           - json or console (default: json)
//	METAGATE_METRICS_ENABLED      - Enable /metrics endpoint
//	METAGATE_OPENAPI_ENABLED      - Enable Swagger UI
//	METAGATE_CORS_ORIGINS         - Comma-separated allowed origins
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. This is the recommended method for container deployments.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies METAGATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("METAGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("METAGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	} else if v := os.Getenv("PORT"); v != "" {
		// Plain PORT is honored for platform-assigned listeners.
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("METAGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("METAGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("METAGATE_SERVER_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("METAGATE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}

	// Deploy configuration
	if v := os.Getenv("METAGATE_DEPLOY_BIN"); v != "" {
		cfg.Deploy.Bin = v
	}
	if v := os.Getenv("METAGATE_DEPLOY_WAIT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Deploy.WaitMinutes = n
		}
	}
	if v := os.Getenv("METAGATE_DEPLOY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Deploy.Timeout = d
		}
	}

	// Staging configuration
	if v := os.Getenv("METAGATE_STAGING_ROOT"); v != "" {
		cfg.Staging.Root = v
	}
	if v := os.Getenv("METAGATE_STAGING_KEEP"); v != "" {
		cfg.Staging.Keep = parseBool(v)
	}

	// Database configuration
	if v := os.Getenv("METAGATE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("METAGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("METAGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("METAGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("METAGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("METAGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// OpenAPI configuration
	if v := os.Getenv("METAGATE_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Responses wait for the deployment tool, so this must outlast
		// deploy.timeout.
		cfg.Server.WriteTimeout = 16 * time.Minute
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "public"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Deploy.Bin == "" {
		cfg.Deploy.Bin = "sf"
	}
	if cfg.Deploy.WaitMinutes == 0 {
		cfg.Deploy.WaitMinutes = 10
	}
	if cfg.Deploy.Timeout == 0 {
		cfg.Deploy.Timeout = 15 * time.Minute
	}

	if cfg.Staging.Root == "" {
		cfg.Staging.Root = filepath.Join(os.TempDir(), "metagate")
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "metagate.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Deploy.WaitMinutes < 0 {
		return fmt.Errorf("deploy.wait_minutes must not be negative, got %d", cfg.Deploy.WaitMinutes)
	}
	if cfg.Deploy.Timeout < 0 {
		return fmt.Errorf("deploy.timeout must not be negative, got %s", cfg.Deploy.Timeout)
	}

	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}
