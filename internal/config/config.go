// Package config manages the application configuration.
//
// It reads configuration from three layers, each overriding the previous one:
//   - built-in defaults (so a bare `pydigger serve` works against a local MongoDB)
//   - an optional YAML file (passed with --config)
//   - environment variables prefixed with PYDIGGER_ (optionally from a `.env` file)
//
// The result is unmarshalled into structured Go types and validated so the app
// fails fast on bad or missing config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the process
	// environment before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the PYDIGGER_ prefix. The prefix is removed, the
	rest is lowercased and a double underscore marks one level of nesting:

	  PYDIGGER_SERVER__PORT             -> server.port
	  PYDIGGER_DATABASE__URI            -> database.uri
	  PYDIGGER_CATALOG__DEFAULT_LIMIT   -> catalog.default_limit

	A single underscore stays part of the key, so snake_case keys keep working.
*/

// EnvPrefix is the prefix every environment variable must carry to be read.
const EnvPrefix = "PYDIGGER_"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Catalog       CatalogConfig        `koanf:"catalog" validate:"required"`
	Jobs          JobsConfig           `koanf:"jobs"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and switch behaviour (e.g. verbose store logging in "local").
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	ShutdownTimeout    int      `koanf:"shutdown_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains MongoDB connection parameters and pool tuning.
type DatabaseConfig struct {
	URI            string `koanf:"uri" validate:"required,startswith=mongodb"`
	Name           string `koanf:"name" validate:"required"`
	Collection     string `koanf:"collection" validate:"required"`
	ConnectTimeout int    `koanf:"connect_timeout" validate:"required,min=1"`
	MaxPoolSize    uint64 `koanf:"max_pool_size" validate:"required,min=1"`
}

// RedisConfig contains Redis connection details for the stats cache and the
// background job queue. An empty Address disables both.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
	StatsKey string `koanf:"stats_key" validate:"required"`
}

// CatalogConfig holds the knobs of the catalog pages themselves.
type CatalogConfig struct {
	SiteName string `koanf:"site_name" validate:"required"`

	// DefaultLimit is the page size used when `limit` is missing, malformed or 0.
	DefaultLimit int `koanf:"default_limit" validate:"required,min=1"`

	// MaxLimit caps the `limit` query parameter.
	MaxLimit int `koanf:"max_limit" validate:"required,min=1,max=10000,gtefield=DefaultLimit"`

	// RecentLimit is the number of entries served by /api/0/recent.
	RecentLimit int `koanf:"recent_limit" validate:"required,min=1"`

	// MaxLicenseLength is the length above which a license string is "long".
	MaxLicenseLength int `koanf:"max_license_length" validate:"required,min=1"`
}

// JobsConfig controls the asynq worker that refreshes the stats cache.
type JobsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	StatsRefresh string `koanf:"stats_refresh" validate:"required"`
	Concurrency  int    `koanf:"concurrency" validate:"required,min=1"`
}

// RateLimitConfig controls the per-IP limiter in front of the JSON API.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int     `koanf:"burst" validate:"min=1"`
}

// defaults returns the built-in configuration layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env": "development",

		"server.port":                 "8080",
		"server.read_timeout":         10,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.shutdown_timeout":     10,
		"server.cors_allowed_origins": []string{"*"},

		"database.uri":             "mongodb://localhost:27017",
		"database.name":            "pydigger",
		"database.collection":      "packages",
		"database.connect_timeout": 10,
		"database.max_pool_size":   50,

		"redis.address":   "",
		"redis.db":        0,
		"redis.stats_key": "pydigger:stats",

		"catalog.site_name":          "PyDigger",
		"catalog.default_limit":      20,
		"catalog.max_limit":          1000,
		"catalog.recent_limit":       20,
		"catalog.max_license_length": 50,

		"jobs.enabled":       false,
		"jobs.stats_refresh": "@every 1h",
		"jobs.concurrency":   2,

		"rate_limit.enabled":             false,
		"rate_limit.requests_per_second": 5.0,
		"rate_limit.burst":               20,

		"observability.logging.level":                         "info",
		"observability.logging.format":                        "json",
		"observability.logging.slow_query_threshold":          "100ms",
		"observability.new_relic.license_key":                 "",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.new_relic.debug_logging":               false,
		"observability.health_checks.enabled":                 true,
		"observability.health_checks.timeout":                 "5s",
		"observability.health_checks.checks":                  []string{"database", "redis"},
	}
}

// envKey converts PYDIGGER_SERVER__PORT into server.port.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads configuration from defaults, the optional YAML file at path
// and the environment, unmarshals it into Config and validates it.
//
// Behavior summary:
//   - Loads built-in defaults
//   - Loads path (if non-empty) as YAML
//   - Loads env vars with prefix PYDIGGER_
//   - Validates required config blocks/fields
//   - Sets default observability if missing and forces service name + environment
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// If observability config wasn't provided, inject a default.
	// It's a pointer field, so nil means "missing".
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Force service name and environment so logs and traces see consistent naming.
	mainConfig.Observability.ServiceName = "pydigger"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// RedisEnabled reports whether a Redis address has been configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != ""
}
