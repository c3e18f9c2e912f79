// Package cli provides common initialization shared by cmd/budget and
// cmd/budget-export.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/thechaz2/budget-app/internal/config"
	applog "github.com/thechaz2/budget-app/internal/log"
	"github.com/thechaz2/budget-app/internal/storage"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging for the given component and
// installs it as the process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it, exiting
// the process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the SQLite store, running migrations, exiting the
// process on failure.
func OpenStore(logger *applog.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open store", applog.FieldError, err, applog.FieldPath, dbPath)
		os.Exit(1)
	}
	return store
}
