package memory

import (
	"context"
	"sync"

	"debts/internal/core"
)

// Store keeps the ledger in process memory. Nothing survives a restart.
type Store struct {
	mu    sync.Mutex
	items []core.DebtEntry
	saves int
}

func New(seed ...core.DebtEntry) *Store {
	return &Store{items: append([]core.DebtEntry(nil), seed...)}
}

// Load returns a copy of the stored entries.
func (s *Store) Load(_ context.Context) ([]core.DebtEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DebtEntry(nil), s.items...), nil
}

// Save replaces the stored entries after validating every one of them.
func (s *Store) Save(_ context.Context, entries []core.DebtEntry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.DebtEntry(nil), entries...)
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
