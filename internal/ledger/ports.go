// Package ledger defines the persistence port for the debt ledger and the
// table codec shared by the file, database and spreadsheet backends.
package ledger

import (
	"context"

	"debts/internal/core"
)

// Store persists the whole ledger. Load returns every entry in stored order;
// Save replaces the stored ledger with entries, or leaves the previous one
// intact when it fails.
type Store interface {
	Load(ctx context.Context) ([]core.DebtEntry, error)
	Save(ctx context.Context, entries []core.DebtEntry) error
}
