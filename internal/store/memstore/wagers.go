package memstore

import (
	"context"
	"sort"
	"time"

	"nexus-points/internal/store"
)

func (s *Store) CreateWager(ctx context.Context, creatorID, terms string) (*store.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &store.Wager{
		ID:        store.NewID(),
		CreatorID: creatorID,
		Terms:     terms,
		Status:    store.WagerOpen,
		CreatedAt: time.Now(),
	}
	s.wagers[w.ID] = w
	return s.snapshot(w), nil
}

func (s *Store) GetWager(ctx context.Context, wagerID string) (*store.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.snapshot(w), nil
}

func (s *Store) JoinWager(ctx context.Context, wagerID, accountID string, stake int64, eventID string) (*store.LedgerEntry, error) {
	if stake <= 0 {
		return nil, store.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if w.Status != store.WagerOpen {
		return nil, store.ErrInvalidState
	}
	for _, p := range s.participants[wagerID] {
		if p.AccountID == accountID {
			return nil, store.ErrConflict
		}
	}
	entry, err := s.applyDebit(accountID, stake, store.ReasonWagerEscrow, wagerID, eventID)
	if err != nil {
		return nil, err
	}
	s.participants[wagerID] = append(s.participants[wagerID], store.WagerParticipant{
		WagerID:   wagerID,
		AccountID: accountID,
		Stake:     stake,
		JoinedAt:  time.Now(),
	})
	return entry, nil
}

func (s *Store) LockWager(ctx context.Context, wagerID string) (*store.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	switch w.Status {
	case store.WagerOpen:
		now := time.Now()
		w.Status = store.WagerLocked
		w.LockedAt = &now
	case store.WagerLocked:
		// idempotent
	default:
		return nil, store.ErrInvalidState
	}
	return s.snapshot(w), nil
}

func (s *Store) SettleWager(ctx context.Context, wagerID, resolution string, payouts []store.Payout) (*store.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if w.Status != store.WagerLocked {
		return nil, store.ErrInvalidState
	}
	for _, p := range payouts {
		if p.Amount <= 0 {
			continue
		}
		if _, err := s.apply(p.AccountID, p.Amount, p.Reason, wagerID, ""); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	w.Status = store.WagerSettled
	w.Resolution = resolution
	w.ResolvedAt = &now
	return s.snapshot(w), nil
}

func (s *Store) CancelWager(ctx context.Context, wagerID string) (*store.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	switch w.Status {
	case store.WagerCancelled:
		// idempotent, already refunded
	case store.WagerOpen, store.WagerLocked:
		for _, p := range s.participants[wagerID] {
			if _, err := s.apply(p.AccountID, p.Stake, store.ReasonWagerRefund, wagerID, ""); err != nil {
				return nil, err
			}
		}
		w.Status = store.WagerCancelled
	default:
		return nil, store.ErrInvalidState
	}
	return s.snapshot(w), nil
}

func (s *Store) ListWagers(ctx context.Context, status string, limit, offset int) ([]store.Wager, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []store.Wager{}
	for _, w := range s.wagers {
		if status != "" && w.Status != status {
			continue
		}
		out = append(out, *s.snapshot(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// snapshot copies the wager with its participants so callers never alias
// internal state.
func (s *Store) snapshot(w *store.Wager) *store.Wager {
	cp := *w
	cp.Participants = append([]store.WagerParticipant{}, s.participants[w.ID]...)
	return &cp
}
