package core

import (
	"errors"
	"testing"
	"time"
)

func TestProjectStatus(t *testing.T) {
	r := mustRoster(t, "A", "M", "S")
	entries := []DebtEntry{
		{Debtor: "A", Creditor: "M", Amount: Money{Cents: 1000}, Timestamp: now.Add(-36 * time.Hour)},
		{Debtor: "A", Creditor: "S", Amount: Money{Cents: 250}, Timestamp: now.Add(-5*24*time.Hour - time.Minute)},
		{Debtor: "X", Creditor: "S", Amount: Money{Cents: 250}, Timestamp: now},
		{Debtor: "S", Creditor: "M", Amount: Money{Cents: 99}, Timestamp: now.Add(time.Hour)},
	}

	got := ProjectStatus(r, entries, now)
	if len(got) != 3 {
		t.Fatalf("expected one status per roster member, got %d", len(got))
	}
	if got[0].Debtor != "A" || got[1].Debtor != "M" || got[2].Debtor != "S" {
		t.Fatalf("statuses not in roster order: %+v", got)
	}

	a := got[0]
	if a.Clear() || len(a.Debts) != 2 {
		t.Fatalf("unexpected debts for A: %+v", a.Debts)
	}
	if a.Debts[0].Creditor != "M" || a.Debts[0].AgeDays != 1 {
		t.Errorf("first debt = %+v, want creditor M age 1", a.Debts[0])
	}
	if a.Debts[1].Creditor != "S" || a.Debts[1].AgeDays != 5 {
		t.Errorf("second debt = %+v, want creditor S age 5", a.Debts[1])
	}

	if !got[1].Clear() {
		t.Errorf("M should be clear, got %+v", got[1].Debts)
	}
	if got[2].Debts[0].AgeDays != 0 {
		t.Errorf("future timestamp should have age 0, got %d", got[2].Debts[0].AgeDays)
	}
}

func TestAgeDays(t *testing.T) {
	cases := []struct {
		since time.Time
		want  int
	}{
		{now, 0},
		{now.Add(-23 * time.Hour), 0},
		{now.Add(-24 * time.Hour), 1},
		{now.Add(-72*time.Hour - time.Second), 3},
		{now.Add(48 * time.Hour), 0},
	}
	for i, tc := range cases {
		if got := AgeDays(tc.since, now); got != tc.want {
			t.Errorf("case %d: AgeDays = %d, want %d", i, got, tc.want)
		}
	}
}

func TestBatch(t *testing.T) {
	r := mustRoster(t, "A", "M", "S")

	if _, err := NewBatch(r, "X"); !errors.Is(err, ErrUnknownParticipant) {
		t.Fatalf("expected ErrUnknownParticipant, got %v", err)
	}

	b, err := NewBatch(r, "M")
	if err != nil {
		t.Fatalf("new batch: %v", err)
	}
	if err := b.Add("A", Money{Cents: 1050}, now); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := b.Add("S", Money{Cents: 200}, now); err != nil {
		t.Fatalf("add S: %v", err)
	}
	if err := b.Add("M", Money{Cents: 200}, now); !errors.Is(err, ErrSelfDebt) {
		t.Fatalf("expected ErrSelfDebt, got %v", err)
	}
	if err := b.Add("A", Money{}, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if b.Len() != 2 {
		t.Fatalf("rejected entries must not be added, len=%d", b.Len())
	}
	if b.Total().Cents != 1250 {
		t.Errorf("total = %d, want 1250", b.Total().Cents)
	}
	for _, e := range b.Entries() {
		if e.Creditor != "M" {
			t.Errorf("entry %+v not owed to batch creditor", e)
		}
	}
}
