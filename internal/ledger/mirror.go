package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"debts/internal/core"
)

// Mirror reads from a primary store and copies every successful save to a
// set of secondary stores. Mirror failures are logged and never fail a save:
// the primary is the source of truth.
type Mirror struct {
	primary Store
	mirrors []namedStore
	logger  *slog.Logger
}

type namedStore struct {
	name  string
	store Store
}

// NewMirror wraps primary. Add secondaries with With.
func NewMirror(primary Store, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{primary: primary, logger: logger}
}

// With registers a secondary store under name (used in logs).
func (m *Mirror) With(name string, s Store) *Mirror {
	m.mirrors = append(m.mirrors, namedStore{name: name, store: s})
	return m
}

func (m *Mirror) Load(ctx context.Context) ([]core.DebtEntry, error) {
	return m.primary.Load(ctx)
}

func (m *Mirror) Save(ctx context.Context, entries []core.DebtEntry) error {
	if err := m.primary.Save(ctx, entries); err != nil {
		return err
	}
	if err := m.replicate(ctx, entries); err != nil {
		m.logger.WarnContext(ctx, "Ledger mirror out of date", "error", err)
	}
	return nil
}

func (m *Mirror) replicate(ctx context.Context, entries []core.DebtEntry) error {
	// A failing mirror must not cancel the others.
	var g errgroup.Group
	for _, ns := range m.mirrors {
		ns := ns
		g.Go(func() error {
			if err := ns.store.Save(ctx, entries); err != nil {
				return fmt.Errorf("mirror %s: %w", ns.name, err)
			}
			m.logger.DebugContext(ctx, "Ledger mirrored", "mirror", ns.name, "entries", len(entries))
			return nil
		})
	}
	return g.Wait()
}
