package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	ServiceName string
	Environment string
	Port        string

	Database DatabaseConfig

	// MutationDelay is waited before create and delete; zero disables it.
	MutationDelay time.Duration

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool

	MetricsPort  string
	OTLPEndpoint string
	LokiURL      string
}

type DatabaseConfig struct {
	Driver string
	Path   string
	URL    string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		ServiceName: "userapp",
		Environment: "development",
		Port:        "8080",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "database.db",
		},
		MutationDelay:    2500 * time.Millisecond,
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /users": {
				Requests: 30,
				Window:   time.Minute,
			},
			"POST /users/:userId": {
				Requests: 30,
				Window:   time.Minute,
			},
			"default": {
				Requests: 120,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,
		MetricsPort:  "9091",
	}
}

// Load returns the default configuration overridden by environment variables.
func Load() (*AppConfig, error) {
	return LoadFrom(os.Getenv)
}

func LoadFrom(getenv func(string) string) (*AppConfig, error) {
	config := GetDefaultConfig()

	setString(getenv, "SERVICE_NAME", &config.ServiceName)
	setString(getenv, "PORT", &config.Port)
	setString(getenv, "DATABASE_DRIVER", &config.Database.Driver)
	setString(getenv, "DATABASE_PATH", &config.Database.Path)
	setString(getenv, "DATABASE_URL", &config.Database.URL)
	setString(getenv, "METRICS_PORT", &config.MetricsPort)
	setString(getenv, "OTLP_ENDPOINT", &config.OTLPEndpoint)
	setString(getenv, "LOKI_URL", &config.LokiURL)

	if getenv("GIN_MODE") == "release" {
		config.Environment = "production"
		config.EnforceHTTPS = true
	}

	if v := getenv("ENFORCE_HTTPS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: ENFORCE_HTTPS: %w", err)
		}
		config.EnforceHTTPS = enabled
	}

	if v := getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: RATE_LIMIT_ENABLED: %w", err)
		}
		config.RateLimitEnabled = enabled
	}

	if v := getenv("MUTATION_DELAY"); v != "" {
		delay, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: MUTATION_DELAY: %w", err)
		}
		if delay < 0 {
			return nil, fmt.Errorf("config: MUTATION_DELAY must not be negative, got %s", delay)
		}
		config.MutationDelay = delay
	}

	switch config.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if config.Database.URL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("config: unknown DATABASE_DRIVER %q", config.Database.Driver)
	}

	return config, nil
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}
