// Package csvfile stores the ledger as a CSV file with a from,to,amount,date
// header. A missing file is created empty on first access; saves go through a
// temporary file that replaces the ledger only once fully written.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"debts/internal/core"
	"debts/internal/ledger"
)

type Store struct {
	path    string
	decoder ledger.Decoder
	logger  *slog.Logger
}

var _ ledger.Store = (*Store)(nil)

// New returns a store for the CSV file at path. Corrupt rows are skipped with
// a warning unless strict is set.
func New(path string, roster core.Roster, strict bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path: path,
		decoder: ledger.Decoder{
			Roster: roster,
			Strict: strict,
			Logger: logger,
		},
		logger: logger,
	}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// EnsureFile creates the directory and a header-only ledger when the file
// does not exist yet.
func (s *Store) EnsureFile(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat ledger: %w", err)
	}
	if err := s.write(nil); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Created empty ledger", "path", s.path)
	return nil
}

func (s *Store) Load(ctx context.Context) ([]core.DebtEntry, error) {
	if err := s.EnsureFile(ctx); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Column count is checked per row by the decoder.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	first := 1
	if ledger.IsHeader(records[0]) {
		records = records[1:]
		first = 2
	} else {
		s.logger.WarnContext(ctx, "Ledger has no header row", "path", s.path)
	}
	return s.decoder.Decode(ctx, records, first)
}

func (s *Store) Save(ctx context.Context, entries []core.DebtEntry) error {
	if err := s.write(entries); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Ledger saved", "path", s.path, "entries", len(entries))
	return nil
}

// write renders the ledger into a temp file next to the target and renames it
// into place, so a failure leaves the previous file untouched.
func (s *Store) write(entries []core.DebtEntry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(ledger.EncodeRows(entries)); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
