package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"debts/internal/core"
)

// Header is the column row of every tabular ledger.
var Header = []string{"from", "to", "amount", "date"}

// ErrCorruptRow marks a stored row that cannot be turned into a valid entry.
var ErrCorruptRow = errors.New("corrupt ledger row")

// RowError reports which row failed to decode and why.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrCorruptRow, e.Err}
}

// EncodeRow renders an entry as from,to,amount,date.
func EncodeRow(e core.DebtEntry) []string {
	return []string{
		string(e.Debtor),
		string(e.Creditor),
		e.Amount.String(),
		e.Timestamp.Format(core.TimeLayout),
	}
}

// EncodeRows renders the header followed by one row per entry.
func EncodeRows(entries []core.DebtEntry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, e := range entries {
		rows = append(rows, EncodeRow(e))
	}
	return rows
}

// Decoder turns stored rows into entries. With Strict set the first corrupt
// row aborts decoding; otherwise corrupt rows are skipped with a warning.
type Decoder struct {
	Roster   core.Roster
	Strict   bool
	Location *time.Location
	Logger   *slog.Logger
}

// DecodeRow parses a single from,to,amount,date record.
func (d Decoder) DecodeRow(rec []string) (core.DebtEntry, error) {
	if len(rec) != len(Header) {
		return core.DebtEntry{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(rec))
	}
	debtor, err := d.Roster.Parse(rec[0])
	if err != nil {
		return core.DebtEntry{}, fmt.Errorf("from: %w", err)
	}
	creditor, err := d.Roster.Parse(rec[1])
	if err != nil {
		return core.DebtEntry{}, fmt.Errorf("to: %w", err)
	}
	amount, err := core.ParseAmount(rec[2])
	if err != nil {
		return core.DebtEntry{}, fmt.Errorf("amount %q: %w", rec[2], err)
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(core.TimeLayout, strings.TrimSpace(rec[3]), loc)
	if err != nil {
		return core.DebtEntry{}, fmt.Errorf("date %q: %w", rec[3], core.ErrInvalidTimestamp)
	}
	return core.NewDebtEntry(d.Roster, debtor, creditor, amount, ts)
}

// Decode parses records that follow the header. firstLine is the 1-based
// line number of records[0], used in warnings and errors.
func (d Decoder) Decode(ctx context.Context, records [][]string, firstLine int) ([]core.DebtEntry, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	entries := make([]core.DebtEntry, 0, len(records))
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		e, err := d.DecodeRow(rec)
		if err != nil {
			rowErr := &RowError{Line: firstLine + i, Err: err}
			if d.Strict {
				return nil, rowErr
			}
			logger.WarnContext(ctx, "Skipping corrupt ledger row",
				"line", rowErr.Line,
				"error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// IsHeader reports whether rec is the column row.
func IsHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i, h := range Header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), h) {
			return false
		}
	}
	return true
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
