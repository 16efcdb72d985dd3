package cli

import (
	"fmt"
	"io"

	"debts/internal/core"
)

// OverdueAfterDays is the age from which a debt is flagged as late.
const OverdueAfterDays = 3

// RenderStatus writes one line per clear member and one per debt.
func RenderStatus(w io.Writer, statuses []core.DebtorStatus) {
	fmt.Fprintln(w, "\n📊 Current debt status:")
	anyDebt := false
	for _, s := range statuses {
		if s.Clear() {
			fmt.Fprintf(w, "%s 🟢\n", s.Debtor)
			continue
		}
		anyDebt = true
		for _, d := range s.Debts {
			fmt.Fprintf(w, "%s owes %s €%s (%s)\n", s.Debtor, d.Creditor, d.Amount, ageMarker(d.AgeDays))
		}
	}
	if !anyDebt {
		fmt.Fprintln(w, "\n✅ No debts, all clear 🟢")
	}
}

func ageMarker(days int) string {
	if days < OverdueAfterDays {
		return "🟡"
	}
	return fmt.Sprintf("🔴 %dd delay ‼️", days)
}

// RenderOutcomes writes the netting result of every pair touched by a batch.
func RenderOutcomes(w io.Writer, outcomes []core.Outcome) {
	for _, o := range outcomes {
		if o.Settled {
			fmt.Fprintf(w, "✅ Full cancellation between %s and %s\n", o.Pair.Lo, o.Pair.Hi)
			continue
		}
		fmt.Fprintf(w, "📘 %s owes %s €%s\n", o.Debtor, o.Creditor, o.Amount)
	}
}
