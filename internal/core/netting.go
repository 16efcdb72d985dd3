package core

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrBalanceOverflow reports an entry that would push a pair balance out of
// the int64 range.
var ErrBalanceOverflow = errors.New("pair balance overflow")

type (
	// Outcome describes the net position of one pair after netting.
	// When Settled is true the pair cancelled out and Debtor, Creditor
	// and Amount are zero values.
	Outcome struct {
		Pair     Pair
		Settled  bool
		Debtor   Participant
		Creditor Participant
		Amount   Money
	}

	// SkippedEntry is an input entry that failed validation and was left
	// out of the balance.
	SkippedEntry struct {
		Entry DebtEntry
		Err   error
	}

	// NettingResult is the canonical ledger produced by NetAll together with
	// the per-pair outcomes it was derived from.
	NettingResult struct {
		Entries  []DebtEntry
		Outcomes []Outcome
		Skipped  []SkippedEntry
	}
)

// NetAll collapses existing and proposed entries into the canonical ledger:
// at most one entry per unordered pair, holding the net amount owed.
//
// Per pair the balance is signed against the canonical order: positive means
// Lo owes Hi, negative means Hi owes Lo. Direction is derived only from that
// sign, never from the order of the inputs. Pairs whose absolute balance is
// below SettleThreshold produce no entry and a Settled outcome. Every emitted
// entry carries now (truncated to the second) as its timestamp.
//
// Invalid entries and entries that would overflow a pair balance are
// reported in Skipped and never touch the balance.
// Entries and Outcomes are sorted by pair, so the result depends only on the
// multiset of inputs.
func NetAll(existing, proposed []DebtEntry, now time.Time) NettingResult {
	var result NettingResult
	balances := make(map[Pair]int64)

	accumulate := func(entries []DebtEntry) {
		for _, e := range entries {
			if err := e.Validate(); err != nil {
				result.Skipped = append(result.Skipped, SkippedEntry{Entry: e, Err: err})
				continue
			}
			pair := e.Pair()
			delta := e.Amount.Cents
			if e.Debtor == pair.Hi {
				delta = -delta
			}
			next, ok := addCents(balances[pair], delta)
			if !ok {
				result.Skipped = append(result.Skipped, SkippedEntry{Entry: e, Err: ErrBalanceOverflow})
				continue
			}
			balances[pair] = next
		}
	}
	accumulate(existing)
	accumulate(proposed)

	pairs := make([]Pair, 0, len(balances))
	for p := range balances {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Lo != pairs[j].Lo {
			return pairs[i].Lo < pairs[j].Lo
		}
		return pairs[i].Hi < pairs[j].Hi
	})

	stamp := now.Truncate(time.Second)
	for _, p := range pairs {
		net := balances[p]
		if abs(net) < SettleThreshold.Cents {
			result.Outcomes = append(result.Outcomes, Outcome{Pair: p, Settled: true})
			continue
		}
		entry := DebtEntry{Debtor: p.Lo, Creditor: p.Hi, Amount: Money{Cents: net}, Timestamp: stamp}
		if net < 0 {
			entry = DebtEntry{Debtor: p.Hi, Creditor: p.Lo, Amount: Money{Cents: -net}, Timestamp: stamp}
		}
		result.Entries = append(result.Entries, entry)
		result.Outcomes = append(result.Outcomes, Outcome{
			Pair:     p,
			Debtor:   entry.Debtor,
			Creditor: entry.Creditor,
			Amount:   entry.Amount,
		})
	}
	return result
}

// addCents adds delta to bal, refusing results outside
// [-math.MaxInt64, math.MaxInt64] so that negating a balance never wraps.
func addCents(bal, delta int64) (int64, bool) {
	if delta > 0 && bal > math.MaxInt64-delta {
		return bal, false
	}
	if delta < 0 && bal < -math.MaxInt64-delta {
		return bal, false
	}
	return bal + delta, true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
