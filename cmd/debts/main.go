package main

import (
	"context"
	"os"

	"debts/internal/backend"
	"debts/internal/cli"
	applog "debts/internal/log"
	"debts/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateStore(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			applog.FieldError, err,
			applog.FieldBackend, bcfg.Type)
		os.Exit(1)
	}

	var publisher services.LedgerPublisher
	client := factory.CreatePublisher(bcfg)
	if client != nil {
		publisher = client
	}

	svc := services.NewDebtService(result.Store, publisher, bcfg.Roster,
		logger.WithComponent(applog.ComponentService).Logger)
	svc.OnClose(result.Cleanup)
	if client != nil {
		svc.OnClose(client.Close)
	}

	ctx, cancel := cli.GracefulShutdown(logger, svc.Close)
	app := cli.NewApp(svc, os.Stdin, os.Stdout, logger.WithComponent(applog.ComponentCLI).Logger)
	runErr := app.Run(ctx)
	cancel()

	if err := svc.Close(); err != nil {
		logger.Error("Shutdown cleanup failed",
			applog.FieldOperation, applog.OpShutdown,
			applog.FieldError, err)
	}
	if runErr != nil {
		logger.Error("Debt tracker stopped", applog.FieldError, runErr)
		os.Exit(1)
	}
}
