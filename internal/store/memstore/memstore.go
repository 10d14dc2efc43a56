// Package memstore is an in-memory implementation of the durable store's
// contract, used by engine tests and DEV_MODE runs. A single mutex stands in
// for the row locks: every mutating call is serialized, which preserves the
// same atomicity guarantees the Postgres store gets from its transactions.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"nexus-points/internal/store"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]*store.Account
	entries      []store.LedgerEntry
	eventIDs     map[string]bool
	wagers       map[string]*store.Wager
	participants map[string][]store.WagerParticipant
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]*store.Account),
		eventIDs:     make(map[string]bool),
		wagers:       make(map[string]*store.Wager),
		participants: make(map[string][]store.WagerParticipant),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) Credit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(accountID, amount, reason, wagerID, eventID)
}

func (s *Store) Debit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyDebit(accountID, amount, reason, wagerID, eventID)
}

func (s *Store) Transfer(ctx context.Context, from, to string, amount int64, eventID string) error {
	if amount <= 0 {
		return store.ErrInvalidAmount
	}
	if from == to {
		return store.ErrConflict
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.applyDebit(from, amount, store.ReasonTransferOut, "", eventID); err != nil {
		return err
	}
	if _, err := s.apply(to, amount, store.ReasonTransferIn, "", ""); err != nil {
		return err
	}
	return nil
}

func (s *Store) Accrue(ctx context.Context, accountID string, amount int64, eventID string, cooldown time.Duration) (*store.LedgerEntry, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if eventID != "" && s.eventIDs[eventID] {
		return nil, store.ErrDuplicateEvent
	}
	if cooldown > 0 {
		for i := len(s.entries) - 1; i >= 0; i-- {
			e := s.entries[i]
			if e.AccountID == accountID && e.Reason == store.ReasonAccrual {
				if time.Since(e.CreatedAt) < cooldown {
					return nil, store.ErrCooldown
				}
				break
			}
		}
	}
	return s.apply(accountID, amount, store.ReasonAccrual, "", eventID)
}

func (s *Store) Balance(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[accountID]; ok {
		return a.Balance, nil
	}
	return 0, nil
}

func (s *Store) History(ctx context.Context, accountID string, limit int, before string) ([]store.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []store.LedgerEntry{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if e.AccountID != accountID {
			continue
		}
		if before != "" && e.ID >= before {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, f store.LedgerFilter, limit, offset int) ([]store.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []store.LedgerEntry{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if f.AccountID != "" && e.AccountID != f.AccountID {
			continue
		}
		if f.WagerID != "" && e.WagerID != f.WagerID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, e)
	}
	return page(matched, limit, offset), nil
}

func (s *Store) ListAccounts(ctx context.Context, limit, offset int) ([]store.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, limit, offset), nil
}

func (s *Store) Leaderboard(ctx context.Context, limit, offset int) ([]store.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

// apply credits under the held lock, creating the account lazily.
func (s *Store) apply(accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error) {
	if eventID != "" && s.eventIDs[eventID] {
		return nil, store.ErrDuplicateEvent
	}
	now := time.Now()
	a, ok := s.accounts[accountID]
	if !ok {
		a = &store.Account{ID: accountID, CreatedAt: now}
		s.accounts[accountID] = a
	}
	a.Balance += amount
	a.UpdatedAt = now
	return s.append(accountID, amount, reason, wagerID, eventID, now), nil
}

func (s *Store) applyDebit(accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error) {
	if eventID != "" && s.eventIDs[eventID] {
		return nil, store.ErrDuplicateEvent
	}
	a, ok := s.accounts[accountID]
	if !ok || a.Balance < amount {
		return nil, store.ErrInsufficientFunds
	}
	now := time.Now()
	a.Balance -= amount
	a.UpdatedAt = now
	return s.append(accountID, -amount, reason, wagerID, eventID, now), nil
}

func (s *Store) append(accountID string, delta int64, reason, wagerID, eventID string, now time.Time) *store.LedgerEntry {
	e := store.LedgerEntry{
		ID:        store.NewID(),
		AccountID: accountID,
		Delta:     delta,
		Reason:    reason,
		WagerID:   wagerID,
		EventID:   eventID,
		CreatedAt: now,
	}
	s.entries = append(s.entries, e)
	if eventID != "" {
		s.eventIDs[eventID] = true
	}
	return &e
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end:end]
}
