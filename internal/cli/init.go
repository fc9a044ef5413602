// Package cli consolidates the initialization steps shared by cmd/centime,
// cmd/recurring-worker, and cmd/notify-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"centime/internal/amqp"
	"centime/internal/config"
	"centime/internal/log"
	"centime/internal/storage"
)

// SetupLogger initializes structured logging for the named component and
// installs it as the process default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository, running pending migrations.
// Exits the process on failure: nothing works without storage.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitAMQP connects to the broker when an URL is configured. Returns nil
// when AMQP is disabled or unreachable; callers treat a nil client as
// "alerts computed but not delivered".
func InitAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, alerts will not be delivered")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, alerts will not be delivered", log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
