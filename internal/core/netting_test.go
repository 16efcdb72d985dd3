package core

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

var (
	t0  = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now = time.Date(2025, 6, 10, 18, 45, 30, 0, time.UTC)
)

func entry(debtor, creditor Participant, cents int64) DebtEntry {
	return DebtEntry{Debtor: debtor, Creditor: creditor, Amount: Money{Cents: cents}, Timestamp: t0}
}

func TestNetAll(t *testing.T) {
	tests := []struct {
		name     string
		existing []DebtEntry
		proposed []DebtEntry
		want     []DebtEntry
		settled  []Pair
	}{
		{
			name:     "opposite debts net against each other",
			proposed: []DebtEntry{entry("A", "M", 5000), entry("M", "A", 2000)},
			want:     []DebtEntry{{Debtor: "A", Creditor: "M", Amount: Money{Cents: 3000}, Timestamp: now}},
		},
		{
			name:     "direction follows the larger side for the later participant",
			proposed: []DebtEntry{entry("A", "M", 2000), entry("M", "A", 5000)},
			want:     []DebtEntry{{Debtor: "M", Creditor: "A", Amount: Money{Cents: 3000}, Timestamp: now}},
		},
		{
			name:     "equal and opposite cancel",
			existing: []DebtEntry{entry("A", "M", 1000)},
			proposed: []DebtEntry{entry("M", "A", 1000)},
			settled:  []Pair{{Lo: "A", Hi: "M"}},
		},
		{
			name:     "independent pairs stay independent",
			proposed: []DebtEntry{entry("A", "M", 1000), entry("S", "M", 1000)},
			want: []DebtEntry{
				{Debtor: "A", Creditor: "M", Amount: Money{Cents: 1000}, Timestamp: now},
				{Debtor: "S", Creditor: "M", Amount: Money{Cents: 1000}, Timestamp: now},
			},
		},
		{
			name:     "same direction accumulates",
			existing: []DebtEntry{entry("S", "A", 1250)},
			proposed: []DebtEntry{entry("S", "A", 750), entry("S", "A", 1)},
			want:     []DebtEntry{{Debtor: "S", Creditor: "A", Amount: Money{Cents: 2001}, Timestamp: now}},
		},
		{
			name: "empty input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetAll(tt.existing, tt.proposed, now)
			if !reflect.DeepEqual(got.Entries, tt.want) {
				t.Fatalf("entries = %+v, want %+v", got.Entries, tt.want)
			}
			var settled []Pair
			for _, o := range got.Outcomes {
				if o.Settled {
					settled = append(settled, o.Pair)
				}
			}
			if !reflect.DeepEqual(settled, tt.settled) {
				t.Fatalf("settled = %v, want %v", settled, tt.settled)
			}
			if len(got.Skipped) != 0 {
				t.Fatalf("unexpected skipped entries: %+v", got.Skipped)
			}
		})
	}
}

func TestNetAllOutcomes(t *testing.T) {
	got := NetAll(nil, []DebtEntry{
		entry("M", "S", 400),
		entry("A", "M", 100),
		entry("M", "A", 100),
	}, now)

	want := []Outcome{
		{Pair: Pair{Lo: "A", Hi: "M"}, Settled: true},
		{Pair: Pair{Lo: "M", Hi: "S"}, Debtor: "M", Creditor: "S", Amount: Money{Cents: 400}},
	}
	if !reflect.DeepEqual(got.Outcomes, want) {
		t.Fatalf("outcomes = %+v, want %+v", got.Outcomes, want)
	}
}

func TestNetAllSkipsMalformedEntries(t *testing.T) {
	bad := []DebtEntry{
		entry("A", "A", 100),
		entry("A", "M", 0),
		entry("A", "M", -500),
		{Debtor: "A", Creditor: "M", Amount: Money{Cents: 100}},
		entry("", "M", 100),
	}
	got := NetAll([]DebtEntry{entry("A", "M", 300)}, bad, now)

	if len(got.Skipped) != len(bad) {
		t.Fatalf("skipped %d entries, want %d", len(got.Skipped), len(bad))
	}
	if !errors.Is(got.Skipped[0].Err, ErrSelfDebt) {
		t.Errorf("expected ErrSelfDebt, got %v", got.Skipped[0].Err)
	}
	want := []DebtEntry{{Debtor: "A", Creditor: "M", Amount: Money{Cents: 300}, Timestamp: now}}
	if !reflect.DeepEqual(got.Entries, want) {
		t.Fatalf("malformed entries changed the balance: %+v", got.Entries)
	}
}

func TestNetAllLargeAmounts(t *testing.T) {
	t.Run("over the cap is skipped, never cancels", func(t *testing.T) {
		huge := entry("A", "M", 9223372036854775807)
		got := NetAll([]DebtEntry{huge}, []DebtEntry{entry("A", "M", 1)}, now)

		if len(got.Skipped) != 1 || !errors.Is(got.Skipped[0].Err, ErrAmountTooLarge) {
			t.Fatalf("expected the huge entry to be skipped, got %+v", got.Skipped)
		}
		want := []DebtEntry{{Debtor: "A", Creditor: "M", Amount: Money{Cents: 1}, Timestamp: now}}
		if !reflect.DeepEqual(got.Entries, want) {
			t.Fatalf("entries = %+v, want %+v", got.Entries, want)
		}
		if got.Outcomes[0].Settled {
			t.Fatal("a pair where every entry says A owes M must not settle")
		}
	})

	t.Run("sums at the cap keep their sign", func(t *testing.T) {
		var existing []DebtEntry
		for i := 0; i < 1000; i++ {
			existing = append(existing, entry("M", "A", MaxAmount.Cents))
		}
		got := NetAll(existing, []DebtEntry{entry("A", "M", MaxAmount.Cents)}, now)

		if len(got.Skipped) != 0 || len(got.Entries) != 1 {
			t.Fatalf("unexpected result %+v", got)
		}
		e := got.Entries[0]
		if e.Debtor != "M" || e.Creditor != "A" || e.Amount.Cents != 999*MaxAmount.Cents {
			t.Fatalf("entry = %+v", e)
		}
	})
}

func TestAddCents(t *testing.T) {
	tests := []struct {
		bal, delta int64
		want       int64
		ok         bool
	}{
		{10, 5, 15, true},
		{10, -15, -5, true},
		{math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{math.MaxInt64, 1, math.MaxInt64, false},
		{-math.MaxInt64 + 1, -1, -math.MaxInt64, true},
		{-math.MaxInt64, -1, -math.MaxInt64, false},
	}
	for _, tt := range tests {
		got, ok := addCents(tt.bal, tt.delta)
		if got != tt.want || ok != tt.ok {
			t.Errorf("addCents(%d, %d) = %d, %v; want %d, %v", tt.bal, tt.delta, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNetAllTruncatesTimestamp(t *testing.T) {
	got := NetAll(nil, []DebtEntry{entry("A", "M", 100)}, now.Add(750*time.Millisecond))
	if !got.Entries[0].Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", got.Entries[0].Timestamp, now)
	}
}

func randomEntries(rng *rand.Rand, n int) []DebtEntry {
	people := []Participant{"A", "M", "S", "Z"}
	out := make([]DebtEntry, n)
	for i := range out {
		d := people[rng.Intn(len(people))]
		c := d
		for c == d {
			c = people[rng.Intn(len(people))]
		}
		out[i] = entry(d, c, 1+rng.Int63n(10000))
	}
	return out
}

func TestNetAllProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		existing := randomEntries(rng, rng.Intn(8))
		proposed := randomEntries(rng, rng.Intn(8))
		got := NetAll(existing, proposed, now)

		seen := map[Pair]bool{}
		for _, e := range got.Entries {
			if e.Debtor == e.Creditor {
				t.Fatalf("self debt emitted: %+v", e)
			}
			if e.Amount.Cents <= 0 {
				t.Fatalf("non-positive amount emitted: %+v", e)
			}
			if seen[e.Pair()] {
				t.Fatalf("pair %v emitted twice", e.Pair())
			}
			seen[e.Pair()] = true
		}

		// Re-netting a canonical ledger is a no-op.
		again := NetAll(got.Entries, nil, now)
		if !reflect.DeepEqual(again.Entries, got.Entries) {
			t.Fatalf("not idempotent:\n%+v\n%+v", got.Entries, again.Entries)
		}

		// Only the multiset of proposed entries matters.
		shuffled := append([]DebtEntry(nil), proposed...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		permuted := NetAll(existing, shuffled, now)
		if !reflect.DeepEqual(permuted, got) {
			t.Fatalf("result depends on entry order:\n%+v\n%+v", got, permuted)
		}

		// Moving entries between existing and proposed does not matter either.
		merged := NetAll(append(append([]DebtEntry(nil), existing...), proposed...), nil, now)
		if !reflect.DeepEqual(merged, got) {
			t.Fatalf("result depends on input split:\n%+v\n%+v", got, merged)
		}
	}
}

func TestNetAllPairwiseConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := randomEntries(rng, 50)
	got := NetAll(in, nil, now)

	// Signed sum per pair, in Lo-owes-Hi direction, must match before and after.
	signed := func(entries []DebtEntry) map[Pair]int64 {
		m := map[Pair]int64{}
		for _, e := range entries {
			p := e.Pair()
			if e.Debtor == p.Lo {
				m[p] += e.Amount.Cents
			} else {
				m[p] -= e.Amount.Cents
			}
		}
		for p, v := range m {
			if v == 0 {
				delete(m, p)
			}
		}
		return m
	}
	if !reflect.DeepEqual(signed(in), signed(got.Entries)) {
		t.Fatalf("net balances changed:\n%v\n%v", signed(in), signed(got.Entries))
	}
}
