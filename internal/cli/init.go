// Package cli provides the process setup shared by the commands and the
// interactive debt tracker that runs on a terminal.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"debts/internal/config"
	applog "debts/internal/log"
)

// SetupLogger builds the application logger from configuration and installs
// it as the default. Logs go to stderr so stdout stays readable.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	if cfg != nil {
		lc.Level = applog.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. A
// blocked terminal read cannot observe the cancellation, so after a signal
// cleanup runs and the process exits with status 130.
func GracefulShutdown(logger *applog.Logger, cleanup func() error) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			if cleanup != nil {
				if err := cleanup(); err != nil {
					logger.Error("Shutdown cleanup failed",
						applog.FieldOperation, applog.OpShutdown,
						applog.FieldError, err)
				}
			}
			os.Exit(130)
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
