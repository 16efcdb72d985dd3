package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"debts/internal/core"
	"debts/internal/ledger"
	applog "debts/internal/log"
)

// LedgerPublisher announces the result of a netting pass.
type LedgerPublisher interface {
	PublishLedgerUpdate(ctx context.Context, result core.NettingResult) error
}

// DebtService orchestrates loading, netting, saving and publishing the ledger.
type DebtService struct {
	store     ledger.Store
	publisher LedgerPublisher
	roster    core.Roster
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	closers []func() error
}

// NewDebtService wires the service. publisher may be nil.
func NewDebtService(store ledger.Store, publisher LedgerPublisher, roster core.Roster, logger *slog.Logger) *DebtService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebtService{
		store:     store,
		publisher: publisher,
		roster:    roster,
		logger:    logger,
		now:       time.Now,
	}
}

// Roster returns the participants the service accepts.
func (s *DebtService) Roster() core.Roster {
	return s.roster
}

// Now returns the service clock reading.
func (s *DebtService) Now() time.Time {
	return s.now()
}

// OnClose registers a cleanup run by Close, in registration order.
func (s *DebtService) OnClose(fn func() error) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// Status projects the stored ledger per debtor.
func (s *DebtService) Status(ctx context.Context) ([]core.DebtorStatus, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return core.ProjectStatus(s.roster, entries, s.now()), nil
}

// Record nets the batch against the stored ledger and replaces it with the
// canonical result. Publishing is best effort: a failure is logged and the
// saved ledger stands.
func (s *DebtService) Record(ctx context.Context, batch *core.Batch) (core.NettingResult, error) {
	if batch == nil || batch.Len() == 0 {
		return core.NettingResult{}, errors.New("empty batch")
	}

	existing, err := s.store.Load(ctx)
	if err != nil {
		return core.NettingResult{}, fmt.Errorf("load ledger: %w", err)
	}

	result := core.NetAll(existing, batch.Entries(), s.now())
	for _, sk := range result.Skipped {
		s.logger.WarnContext(ctx, "Entry left out of netting",
			applog.NewFields().
				WithOperation(applog.OpNet).
				WithDebt(string(sk.Entry.Debtor), string(sk.Entry.Creditor), sk.Entry.Amount.Cents).
				WithError(sk.Err).
				ToSlice()...)
	}

	if err := s.store.Save(ctx, result.Entries); err != nil {
		return core.NettingResult{}, fmt.Errorf("save ledger: %w", err)
	}

	settled := 0
	for _, o := range result.Outcomes {
		if o.Settled {
			settled++
		}
	}
	s.logger.InfoContext(ctx, "Ledger recalculated",
		applog.FieldOperation, applog.OpSave,
		applog.FieldEntries, len(result.Entries),
		applog.FieldPairs, len(result.Outcomes),
		applog.FieldSettled, settled,
		applog.FieldSkipped, len(result.Skipped))

	s.publish(ctx, result)
	return result, nil
}

func (s *DebtService) publish(ctx context.Context, result core.NettingResult) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping ledger update message")
		return
	}
	if err := s.publisher.PublishLedgerUpdate(ctx, result); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger update",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err)
	}
}

// Close runs the registered cleanups once and reports every failure.
func (s *DebtService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("close debt service: %w", errors.Join(errs...))
	}
	return nil
}
