// Package core holds the debt tracker domain: the roster of participants,
// money in cents, debt entries, the netting engine that collapses them into
// one entry per pair and the status projection shown to users.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the persisted timestamp format; entries keep second precision.
const TimeLayout = "2006-01-02 15:04:05"

type (
	// Participant identifies one member of the roster.
	Participant string

	// Roster is the fixed, closed set of participants known at startup.
	Roster struct {
		members []Participant
	}

	Money struct {
		Cents int64
	}

	// DebtEntry records that Debtor owes Creditor Amount as of Timestamp.
	DebtEntry struct {
		Debtor    Participant
		Creditor  Participant
		Amount    Money
		Timestamp time.Time
	}

	// Pair is an unordered pair of participants stored in canonical order (Lo < Hi).
	Pair struct {
		Lo Participant
		Hi Participant
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrSelfDebt           = errors.New("debtor and creditor must differ")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrEmptyParticipant   = errors.New("empty participant")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrInvalidRoster      = errors.New("invalid roster")
)

// NewRoster builds a roster from at least two distinct, non-empty ids.
// Ids are trimmed; their order is kept for display.
func NewRoster(ids ...string) (Roster, error) {
	seen := make(map[Participant]struct{}, len(ids))
	members := make([]Participant, 0, len(ids))
	for _, id := range ids {
		p := Participant(strings.TrimSpace(id))
		if p == "" {
			return Roster{}, fmt.Errorf("%w: %w", ErrInvalidRoster, ErrEmptyParticipant)
		}
		if _, dup := seen[p]; dup {
			return Roster{}, fmt.Errorf("%w: duplicate participant %q", ErrInvalidRoster, p)
		}
		// Parse matches case-insensitively, so ids differing only by case are ambiguous.
		for q := range seen {
			if strings.EqualFold(string(q), string(p)) {
				return Roster{}, fmt.Errorf("%w: %q and %q differ only by case", ErrInvalidRoster, q, p)
			}
		}
		seen[p] = struct{}{}
		members = append(members, p)
	}
	if len(members) < 2 {
		return Roster{}, fmt.Errorf("%w: need at least 2 participants, got %d", ErrInvalidRoster, len(members))
	}
	return Roster{members: members}, nil
}

// ParseRoster builds a roster from a comma separated list such as "A,M,S".
func ParseRoster(s string) (Roster, error) {
	return NewRoster(strings.Split(s, ",")...)
}

// Members returns a copy of the roster in configuration order.
func (r Roster) Members() []Participant {
	return append([]Participant(nil), r.members...)
}

// Contains reports whether p belongs to the roster.
func (r Roster) Contains(p Participant) bool {
	for _, m := range r.members {
		if m == p {
			return true
		}
	}
	return false
}

// Parse resolves user input to a roster member, ignoring case and surrounding space.
func (r Roster) Parse(s string) (Participant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyParticipant
	}
	for _, m := range r.members {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParticipant, s)
}

// String lists the members as "A, M or S".
func (r Roster) String() string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = string(m)
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// NewPair returns the canonical pair for two participants.
func NewPair(a, b Participant) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

func (p Pair) String() string {
	return string(p.Lo) + "-" + string(p.Hi)
}

// NewDebtEntry validates a proposed entry against the roster.
func NewDebtEntry(roster Roster, debtor, creditor Participant, amount Money, at time.Time) (DebtEntry, error) {
	if !roster.Contains(debtor) {
		return DebtEntry{}, fmt.Errorf("debtor: %w: %q", ErrUnknownParticipant, debtor)
	}
	if !roster.Contains(creditor) {
		return DebtEntry{}, fmt.Errorf("creditor: %w: %q", ErrUnknownParticipant, creditor)
	}
	e := DebtEntry{
		Debtor:    debtor,
		Creditor:  creditor,
		Amount:    amount,
		Timestamp: at.Truncate(time.Second),
	}
	if err := e.Validate(); err != nil {
		return DebtEntry{}, err
	}
	return e, nil
}

// Validate checks the structural invariants of an entry. Roster membership
// is checked by NewDebtEntry and by the ledger decoders.
func (e DebtEntry) Validate() error {
	if e.Debtor == "" || e.Creditor == "" {
		return ErrEmptyParticipant
	}
	if e.Debtor == e.Creditor {
		return ErrSelfDebt
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

// Pair returns the canonical pair the entry belongs to.
func (e DebtEntry) Pair() Pair {
	return NewPair(e.Debtor, e.Creditor)
}
