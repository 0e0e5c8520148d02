// Package cli holds the shared start-up steps and terminal rendering used
// by the fintrack commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// SetupLogger builds the process logger and installs it as the slog
// default. debug wins over level.
func SetupLogger(level string, debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	if debug {
		cfg.Level = slog.LevelDebug
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file from the working directory if there is one.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from path (or the default
// location) and validates it.
func LoadAndValidateConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the ledger database, creating and migrating it if needed.
func OpenStore(ctx context.Context, logger *log.Logger, dbPath string) (*storage.Store, error) {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		logger.WithComponent(log.ComponentStorage).LogError(ctx, "Failed to open store", err, log.OpRead,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		return nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}
	return store, nil
}

// ConnectAMQP returns a publisher for ledger events, or nil when AMQP is
// not configured or the broker cannot be reached. The ledger works without
// it.
func ConnectAMQP(ctx context.Context, logger *log.Logger, cfg config.AMQPConfig) *amqp.Client {
	if cfg.URL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.URL, cfg.Exchange, cfg.Queue)
	if err != nil {
		logger.WithComponent(log.ComponentAMQP).WarnContext(ctx, "AMQP unavailable, ledger events disabled",
			log.FieldError, err.Error())
		return nil
	}
	return client
}

// SignalContext returns a context tagged with a fresh run id and cancelled
// on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(log.WithRunID(context.Background()), os.Interrupt, syscall.SIGTERM)
}
