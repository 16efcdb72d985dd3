package core

import "time"

// OwedDebt is one outgoing debt of a participant.
type OwedDebt struct {
	Creditor Participant
	Amount   Money
	AgeDays  int
}

// DebtorStatus lists what a roster member currently owes.
type DebtorStatus struct {
	Debtor Participant
	Debts  []OwedDebt
}

// Clear reports whether the participant owes nothing.
func (s DebtorStatus) Clear() bool {
	return len(s.Debts) == 0
}

// ProjectStatus groups entries by debtor, one DebtorStatus per roster member
// in roster order. Entries of debtors outside the roster are ignored.
func ProjectStatus(roster Roster, entries []DebtEntry, now time.Time) []DebtorStatus {
	members := roster.Members()
	index := make(map[Participant]int, len(members))
	out := make([]DebtorStatus, len(members))
	for i, m := range members {
		index[m] = i
		out[i] = DebtorStatus{Debtor: m}
	}
	for _, e := range entries {
		i, ok := index[e.Debtor]
		if !ok {
			continue
		}
		out[i].Debts = append(out[i].Debts, OwedDebt{
			Creditor: e.Creditor,
			Amount:   e.Amount,
			AgeDays:  AgeDays(e.Timestamp, now),
		})
	}
	return out
}

// AgeDays returns the whole days elapsed from since to now; never negative.
func AgeDays(since, now time.Time) int {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
