package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"debts/internal/core"
	"debts/internal/ledger"
)

func newTestRepo(t *testing.T, strict bool) *SQLiteRepository {
	t.Helper()
	roster, err := core.NewRoster("A", "M", "S")
	if err != nil {
		t.Fatal(err)
	}
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "debts.db"), roster, strict)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositorySaveLoad(t *testing.T) {
	repo := newTestRepo(t, true)
	ctx := context.Background()

	got, err := repo.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh database should be empty: %v %v", got, err)
	}

	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local)
	first := []core.DebtEntry{
		{Debtor: "A", Creditor: "M", Amount: core.Money{Cents: 3000}, Timestamp: ts},
		{Debtor: "S", Creditor: "M", Amount: core.Money{Cents: 1000}, Timestamp: ts},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first[1:]
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Debtor != "S" || got[0].Amount.Cents != 1000 || !got[0].Timestamp.Equal(ts) {
		t.Fatalf("save must replace the ledger, got %+v", got)
	}
}

func TestSQLiteRepositoryRejectedSaveKeepsLedger(t *testing.T) {
	repo := newTestRepo(t, true)
	ctx := context.Background()
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local)

	good := []core.DebtEntry{{Debtor: "A", Creditor: "M", Amount: core.Money{Cents: 500}, Timestamp: ts}}
	if err := repo.Save(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	bad := []core.DebtEntry{
		{Debtor: "S", Creditor: "M", Amount: core.Money{Cents: 100}, Timestamp: ts},
		{Debtor: "M", Creditor: "M", Amount: core.Money{Cents: 100}, Timestamp: ts},
	}
	if err := repo.Save(ctx, bad); !errors.Is(err, core.ErrSelfDebt) {
		t.Fatalf("expected ErrSelfDebt, got %v", err)
	}

	got, _ := repo.Load(ctx)
	if len(got) != 1 || got[0].Debtor != "A" {
		t.Fatalf("rolled back save changed the ledger: %+v", got)
	}
}

func TestSQLiteRepositoryCorruptRows(t *testing.T) {
	ctx := context.Background()
	for _, strict := range []bool{false, true} {
		repo := newTestRepo(t, strict)
		if _, err := repo.db.ExecContext(ctx, insertDebt, "A", "M", 100, "2025-01-01 10:00:00"); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.db.ExecContext(ctx, insertDebt, "Z", "M", 100, "2025-01-01 10:00:00"); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Load(ctx)
		if strict {
			if !errors.Is(err, ledger.ErrCorruptRow) {
				t.Fatalf("strict load: expected ErrCorruptRow, got %v", err)
			}
			continue
		}
		if err != nil || len(got) != 1 {
			t.Fatalf("lenient load should skip the unknown participant: %v %v", got, err)
		}
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debts.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != v1 {
		t.Fatalf("unexpected versions %d, %d", v1, v2)
	}
}

func TestSQLiteRepositoryKeepsUntrackedTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "debts.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE debts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debtor TEXT NOT NULL,
		creditor TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	)`)
	if err == nil {
		_, err = db.Exec(`INSERT INTO debts (debtor, creditor, amount_cents, recorded_at)
			VALUES ('M', 'S', 2500, '2025-03-01 10:00:00')`)
	}
	db.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	roster, err := core.NewRoster("A", "M", "S")
	if err != nil {
		t.Fatal(err)
	}
	repo, err := NewSQLiteRepository(dbPath, roster, true)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	defer repo.Close()

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Debtor != "M" || got[0].Amount.Cents != 2500 {
		t.Fatalf("migration must not drop existing rows, got %+v", got)
	}
}
