package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Backend selection (memory or sqlite)
	DataBackend string

	// Dashboard metrics cache
	MetricsCacheTTL time.Duration

	// Seed sample data when no snapshot exists
	SeedSampleData bool
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8082"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/sanko.db"),
		DataBackend:     getEnv("DATA_BACKEND", "sqlite"),
		MetricsCacheTTL: getEnvDuration("METRICS_CACHE_TTL", 5*time.Minute),
		SeedSampleData:  getEnvBool("SEED_SAMPLE_DATA", true),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	if c.MetricsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid metrics cache TTL %v: must be at least 1 second", c.MetricsCacheTTL))
	} else if c.MetricsCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid metrics cache TTL %v: must be at most 24 hours", c.MetricsCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
