package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"debts/internal/core"
	applog "debts/internal/log"
)

// Ledger is what the interactive tool needs from the debt service.
type Ledger interface {
	Roster() core.Roster
	Now() time.Time
	Status(ctx context.Context) ([]core.DebtorStatus, error)
	Record(ctx context.Context, batch *core.Batch) (core.NettingResult, error)
}

// App runs the menu loop of the debt tracker.
type App struct {
	ledger Ledger
	prompt *Prompter
	out    io.Writer
	logger *slog.Logger
}

func NewApp(ledger Ledger, in io.Reader, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		ledger: ledger,
		prompt: NewPrompter(in, out, ledger.Roster()),
		out:    out,
		logger: logger,
	}
}

// Run shows the menu until the user exits, the input ends or ctx is done.
// Failures of a single action are reported and the menu is shown again.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "💰 DEBT TRACKER")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "\n--- MENU ---")
		fmt.Fprintln(a.out, "1. Add new debt ➕")
		fmt.Fprintln(a.out, "2. View debt status 📊")
		fmt.Fprintln(a.out, "3. Exit 🚪")

		opt, err := a.prompt.Line("→ ")
		if err != nil {
			return quit(err)
		}

		switch opt {
		case "1":
			err = a.addDebt(ctx)
		case "2":
			err = a.showStatus(ctx)
		case "3":
			fmt.Fprintln(a.out, "👋 Bye!")
			return nil
		default:
			fmt.Fprintln(a.out, "❌ Invalid option, try again.")
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			a.logger.ErrorContext(ctx, "Action failed", applog.FieldError, err)
			fmt.Fprintf(a.out, "❌ %v\n", err)
		}
	}
}

func quit(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (a *App) addDebt(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n--- Add new debt ---")
	creditor, err := a.prompt.Person("Who is owed? (creditor): ")
	if err != nil {
		return err
	}
	batch, err := core.NewBatch(a.ledger.Roster(), creditor)
	if err != nil {
		return err
	}

	for {
		debtor, err := a.prompt.Person("Who owes? (debtor): ")
		if err != nil {
			return err
		}
		if debtor == creditor {
			fmt.Fprintln(a.out, "❌ Debtor cannot be the same as creditor.")
			continue
		}
		amount, err := a.prompt.Amount("Amount (€): ")
		if err != nil {
			return err
		}
		if err := batch.Add(debtor, amount, a.ledger.Now()); err != nil {
			return err
		}

		again, err := a.prompt.Confirm("Add another debt to same creditor? (y/n): ")
		if err != nil {
			return err
		}
		if !again {
			break
		}
	}

	fmt.Fprintf(a.out, "\n🧮 Total new debt to %s: €%s\n", creditor, batch.Total())
	ok, err := a.prompt.Confirm("Confirm and save? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "❌ Cancelled.")
		return nil
	}

	result, err := a.ledger.Record(ctx, batch)
	if err != nil {
		return fmt.Errorf("saving debts: %w", err)
	}
	RenderOutcomes(a.out, result.Outcomes)
	fmt.Fprintln(a.out, "✅ Debts saved and recalculated correctly.")
	return nil
}

func (a *App) showStatus(ctx context.Context) error {
	statuses, err := a.ledger.Status(ctx)
	if err != nil {
		return fmt.Errorf("loading debts: %w", err)
	}
	RenderStatus(a.out, statuses)
	return nil
}
