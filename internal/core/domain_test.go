package core

import (
	"errors"
	"testing"
	"time"
)

func mustRoster(t *testing.T, ids ...string) Roster {
	t.Helper()
	r, err := NewRoster(ids...)
	if err != nil {
		t.Fatalf("roster %v: %v", ids, err)
	}
	return r
}

func TestNewRoster(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		ok   bool
	}{
		{"reference roster", []string{"A", "M", "S"}, true},
		{"two members", []string{"Anna", "Bob"}, true},
		{"trimmed", []string{" A ", "M"}, true},
		{"single member", []string{"A"}, false},
		{"empty", nil, false},
		{"duplicate", []string{"A", "M", "A"}, false},
		{"case duplicate", []string{"a", "A"}, false},
		{"blank member", []string{"A", ""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRoster(tc.ids...)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidRoster) {
				t.Fatalf("expected ErrInvalidRoster, got %v", err)
			}
		})
	}
}

func TestRosterParse(t *testing.T) {
	r := mustRoster(t, "A", "M", "S")

	for in, want := range map[string]Participant{"a": "A", " M ": "M", "S": "S"} {
		got, err := r.Parse(in)
		if err != nil || got != want {
			t.Errorf("Parse(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := r.Parse("X"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("expected ErrUnknownParticipant, got %v", err)
	}
	if _, err := r.Parse("  "); !errors.Is(err, ErrEmptyParticipant) {
		t.Errorf("expected ErrEmptyParticipant, got %v", err)
	}
	if got := r.String(); got != "A, M or S" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewPairIsOrderIndependent(t *testing.T) {
	if NewPair("M", "A") != NewPair("A", "M") {
		t.Fatal("pair must not depend on argument order")
	}
	p := NewPair("S", "A")
	if p.Lo != "A" || p.Hi != "S" {
		t.Fatalf("unexpected canonical order: %+v", p)
	}
}

func TestNewDebtEntry(t *testing.T) {
	r := mustRoster(t, "A", "M", "S")
	at := time.Date(2025, 3, 1, 10, 30, 15, 500, time.UTC)

	e, err := NewDebtEntry(r, "A", "M", Money{Cents: 1000}, at)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Timestamp.Nanosecond() != 0 {
		t.Errorf("timestamp should be truncated to the second, got %v", e.Timestamp)
	}

	bads := []struct {
		name             string
		debtor, creditor Participant
		amount           Money
		at               time.Time
		want             error
	}{
		{"self debt", "A", "A", Money{Cents: 1}, at, ErrSelfDebt},
		{"zero amount", "A", "M", Money{}, at, ErrInvalidAmount},
		{"negative amount", "A", "M", Money{Cents: -1}, at, ErrInvalidAmount},
		{"unknown debtor", "X", "M", Money{Cents: 1}, at, ErrUnknownParticipant},
		{"unknown creditor", "A", "X", Money{Cents: 1}, at, ErrUnknownParticipant},
		{"zero time", "A", "M", Money{Cents: 1}, time.Time{}, ErrInvalidTimestamp},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDebtEntry(r, tc.debtor, tc.creditor, tc.amount, tc.at)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
