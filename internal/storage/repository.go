package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"debts/internal/core"
	"debts/internal/ledger"

	_ "modernc.org/sqlite"
)

const (
	selectDebts = `SELECT debtor, creditor, amount_cents, recorded_at FROM debts ORDER BY id`
	deleteDebts = `DELETE FROM debts`
	insertDebt  = `INSERT INTO debts (debtor, creditor, amount_cents, recorded_at) VALUES (?, ?, ?, ?)`
)

// SQLiteRepository keeps the canonical ledger in a SQLite table. Saves
// replace the table content inside a single transaction.
type SQLiteRepository struct {
	db      *sql.DB
	decoder ledger.Decoder
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, roster core.Roster, strict bool) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite ledger ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		decoder: ledger.Decoder{Roster: roster, Strict: strict},
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements ledger.Store. Rows go through the shared decoder so the
// corrupt-row policy matches the file backends.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.DebtEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectDebts)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var (
			debtor, creditor, recordedAt string
			cents                        int64
		)
		if err := rows.Scan(&debtor, &creditor, &cents, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		records = append(records, []string{debtor, creditor, core.Money{Cents: cents}.String(), recordedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}

	return r.decoder.Decode(ctx, records, 1)
}

// Save implements ledger.Store.
func (r *SQLiteRepository) Save(ctx context.Context, entries []core.DebtEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, deleteDebts); err != nil {
		return fmt.Errorf("clear debts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertDebt)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("debt %s owes %s: %w", e.Debtor, e.Creditor, err)
		}
		if _, err := stmt.ExecContext(ctx,
			string(e.Debtor),
			string(e.Creditor),
			e.Amount.Cents,
			e.Timestamp.Format(core.TimeLayout),
		); err != nil {
			return fmt.Errorf("insert debt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit debts: %w", err)
	}

	slog.InfoContext(ctx, "Ledger saved to SQLite", "entries", len(entries))
	return nil
}
