package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"debts/internal/amqp"
	"debts/internal/ledger"
	"debts/internal/ledger/csvfile"
	"debts/internal/ledger/memory"
	gsheet "debts/internal/sheets/google"
	"debts/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the ledger store and the cleanup releasing it
type StoreResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore builds the primary store and wraps it with the configured
// mirrors. Cleanup releases every store that was opened.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	primary, closeFn, err := f.createOne(ctx, config.Type, config)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		cleanups = append(cleanups, closeFn)
	}
	if len(config.Mirrors) == 0 {
		return &StoreResult{Store: primary, Cleanup: cleanup}, nil
	}

	mirror := ledger.NewMirror(primary, f.logger)
	for _, t := range config.Mirrors {
		s, closeFn, err := f.createOne(ctx, t, config)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("mirror %s: %w", t, err)
		}
		if closeFn != nil {
			cleanups = append(cleanups, closeFn)
		}
		mirror.With(t.String(), s)
	}
	f.logger.Info("Ledger mirrors enabled", "primary", config.Type, "mirrors", config.Mirrors)

	return &StoreResult{Store: mirror, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createOne(ctx context.Context, t BackendType, config Config) (ledger.Store, CleanupFunc, error) {
	switch t {
	case CSVBackend:
		s := csvfile.New(config.CSVPath, config.Roster, config.Strict, f.logger)
		if err := s.EnsureFile(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize CSV ledger: %w", err)
		}
		f.logger.Info("Initialized CSV backend", "path", config.CSVPath)
		return s, nil, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.Roster, config.Strict)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case SheetsBackend:
		cli, err := gsheet.Open(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName, config.Roster, config.Strict)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", cli.SheetName())
		return cli, nil, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}

// CreatePublisher connects to AMQP when configured. A connection failure is
// logged and yields a nil client: the ledger works without notifications.
func (f *DefaultFactory) CreatePublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
