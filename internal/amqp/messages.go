package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"debts/internal/core"
)

// LedgerUpdateMessage announces a new canonical ledger after a netting pass.
type LedgerUpdateMessage struct {
	Timestamp time.Time        `json:"timestamp"`
	Entries   []EntryMessage   `json:"entries"`
	Outcomes  []OutcomeMessage `json:"outcomes"`
}

// EntryMessage is one canonical debt. Amounts travel as integer cents.
type EntryMessage struct {
	Debtor      string    `json:"debtor"`
	Creditor    string    `json:"creditor"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
}

// OutcomeMessage is the net position of one pair.
type OutcomeMessage struct {
	Pair        [2]string `json:"pair"`
	Settled     bool      `json:"settled"`
	Debtor      string    `json:"debtor,omitempty"`
	Creditor    string    `json:"creditor,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
}

// NewLedgerUpdateMessage builds the message for a netting result.
func NewLedgerUpdateMessage(result core.NettingResult, at time.Time) *LedgerUpdateMessage {
	msg := &LedgerUpdateMessage{
		Timestamp: at,
		Entries:   make([]EntryMessage, 0, len(result.Entries)),
		Outcomes:  make([]OutcomeMessage, 0, len(result.Outcomes)),
	}
	for _, e := range result.Entries {
		msg.Entries = append(msg.Entries, EntryMessage{
			Debtor:      string(e.Debtor),
			Creditor:    string(e.Creditor),
			AmountCents: e.Amount.Cents,
			Date:        e.Timestamp,
		})
	}
	for _, o := range result.Outcomes {
		msg.Outcomes = append(msg.Outcomes, OutcomeMessage{
			Pair:        [2]string{string(o.Pair.Lo), string(o.Pair.Hi)},
			Settled:     o.Settled,
			Debtor:      string(o.Debtor),
			Creditor:    string(o.Creditor),
			AmountCents: o.Amount.Cents,
		})
	}
	return msg
}

// DebtEntries rebuilds the canonical ledger carried by the message. Every
// entry is checked against roster; the first invalid one fails the message.
func (m *LedgerUpdateMessage) DebtEntries(roster core.Roster) ([]core.DebtEntry, error) {
	out := make([]core.DebtEntry, 0, len(m.Entries))
	for i, e := range m.Entries {
		entry, err := core.NewDebtEntry(roster,
			core.Participant(e.Debtor),
			core.Participant(e.Creditor),
			core.Money{Cents: e.AmountCents},
			e.Date.Local())
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerUpdateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerUpdateMessageFromJSON creates a message from JSON bytes
func LedgerUpdateMessageFromJSON(data []byte) (*LedgerUpdateMessage, error) {
	var msg LedgerUpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
