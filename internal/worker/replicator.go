package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"debts/internal/amqp"
	"debts/internal/core"
	"debts/internal/ledger"
	applog "debts/internal/log"
)

// Replicator copies every published ledger into a target store, so a
// secondary backend follows the primary without sharing its process.
type Replicator struct {
	target ledger.Store
	roster core.Roster
	logger *slog.Logger

	mu      sync.Mutex
	applied time.Time
}

func NewReplicator(target ledger.Store, roster core.Roster, logger *slog.Logger) *Replicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replicator{target: target, roster: roster, logger: logger}
}

// HandleLedgerUpdate saves the ledger carried by msg. An update older than
// the last one applied is acknowledged without writing, since each message
// holds the whole ledger and the newer one already superseded it.
func (r *Replicator) HandleLedgerUpdate(ctx context.Context, msg *amqp.LedgerUpdateMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.applied.IsZero() && msg.Timestamp.Before(r.applied) {
		r.logger.InfoContext(ctx, "Skipping stale ledger update",
			"timestamp", msg.Timestamp,
			"applied", r.applied)
		return nil
	}

	entries, err := msg.DebtEntries(r.roster)
	if err != nil {
		// A ledger that does not fit the roster never will; drop it.
		r.logger.ErrorContext(ctx, "Discarding invalid ledger update",
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err)
		return nil
	}

	if err := r.target.Save(ctx, entries); err != nil {
		return fmt.Errorf("replicate ledger: %w", err)
	}
	r.applied = msg.Timestamp
	r.logger.InfoContext(ctx, "Ledger replicated",
		applog.FieldOperation, applog.OpSave,
		applog.FieldEntries, len(entries))
	return nil
}

// Applied returns the timestamp of the last replicated update.
func (r *Replicator) Applied() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}
