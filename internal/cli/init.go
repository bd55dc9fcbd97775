// Package cli provides common process initialization utilities shared
// by the sanko entrypoint.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"sanko/internal/backend"
	"sanko/internal/config"
	"sanko/internal/log"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the slog default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting
// the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the configured snapshot store, exiting the process on
// failure.
func InitStore(logger *log.Logger, cfg *config.Config) *backend.Result {
	res, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize snapshot store",
			log.FieldError, err,
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	return res
}
