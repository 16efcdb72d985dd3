package core

import (
	"fmt"
	"time"
)

// Batch collects new debts owed to a single creditor before they are netted
// in one pass.
type Batch struct {
	roster   Roster
	creditor Participant
	entries  []DebtEntry
}

// NewBatch starts a batch for creditor, who must belong to the roster.
func NewBatch(roster Roster, creditor Participant) (*Batch, error) {
	if !roster.Contains(creditor) {
		return nil, fmt.Errorf("creditor: %w: %q", ErrUnknownParticipant, creditor)
	}
	return &Batch{roster: roster, creditor: creditor}, nil
}

// Creditor returns the participant every entry of the batch is owed to.
func (b *Batch) Creditor() Participant {
	return b.creditor
}

// Add validates and appends a debt of amount from debtor to the creditor.
// The batch is unchanged when an error is returned.
func (b *Batch) Add(debtor Participant, amount Money, at time.Time) error {
	e, err := NewDebtEntry(b.roster, debtor, b.creditor, amount, at)
	if err != nil {
		return err
	}
	b.entries = append(b.entries, e)
	return nil
}

// Entries returns a copy of the collected entries.
func (b *Batch) Entries() []DebtEntry {
	return append([]DebtEntry(nil), b.entries...)
}

func (b *Batch) Len() int {
	return len(b.entries)
}

// Total sums the amounts of the batch.
func (b *Batch) Total() Money {
	var total Money
	for _, e := range b.entries {
		total.Cents += e.Amount.Cents
	}
	return total
}
