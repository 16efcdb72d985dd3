// Command debts-worker keeps a secondary ledger backend in step with the
// debt tracker by replaying the ledger updates it publishes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"debts/internal/amqp"
	"debts/internal/backend"
	"debts/internal/cli"
	"debts/internal/config"
	applog "debts/internal/log"
	"debts/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentAMQP)
	logger.Info("Starting debts-worker", "target", cfg.WorkerTarget)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	bcfg.Type = backend.BackendType(cfg.WorkerTarget)
	bcfg.Mirrors = nil

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateStore(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize target backend",
			applog.FieldError, err,
			applog.FieldBackend, bcfg.Type)
		os.Exit(1)
	}
	defer target.Cleanup()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	replicator := worker.NewReplicator(target.Store, bcfg.Roster, logger.Logger)
	err = client.ConsumeLedgerUpdates(ctx, replicator.HandleLedgerUpdate)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		client.Close()
		target.Cleanup()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
