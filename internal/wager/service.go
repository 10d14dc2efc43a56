// Package wager runs the stake/settle state machine over escrowed points.
package wager

import (
	"context"
	"strings"

	"nexus-points/internal/notify"
	"nexus-points/internal/store"

	"github.com/rs/zerolog/log"
)

const ResolutionVoid = "void"

const maxTermsLen = 500

type Store interface {
	CreateWager(ctx context.Context, creatorID, terms string) (*store.Wager, error)
	GetWager(ctx context.Context, wagerID string) (*store.Wager, error)
	JoinWager(ctx context.Context, wagerID, accountID string, stake int64, eventID string) (*store.LedgerEntry, error)
	LockWager(ctx context.Context, wagerID string) (*store.Wager, error)
	SettleWager(ctx context.Context, wagerID, resolution string, payouts []store.Payout) (*store.Wager, error)
	CancelWager(ctx context.Context, wagerID string) (*store.Wager, error)
	ListWagers(ctx context.Context, status string, limit, offset int) ([]store.Wager, error)
}

type Service struct {
	store    Store
	notifier notify.Notifier
	policy   string
}

func NewService(st Store, notifier notify.Notifier, payoutPolicy string) *Service {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if payoutPolicy != PolicyEqual {
		payoutPolicy = PolicyProportional
	}
	return &Service{store: st, notifier: notifier, policy: payoutPolicy}
}

// Create opens a wager. No funds move until participants join.
func (s *Service) Create(ctx context.Context, creatorID, terms string) (*store.Wager, error) {
	creatorID = strings.TrimSpace(creatorID)
	terms = strings.TrimSpace(terms)
	if creatorID == "" || terms == "" || len(terms) > maxTermsLen {
		return nil, ErrInvalidRequest
	}
	return s.store.CreateWager(ctx, creatorID, terms)
}

func (s *Service) Get(ctx context.Context, wagerID string) (*store.Wager, error) {
	return s.store.GetWager(ctx, wagerID)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]store.Wager, error) {
	return s.store.ListWagers(ctx, status, limit, offset)
}

// Join escrows the stake and records the participant. Atomicity lives in
// the store: either both happen or neither does.
func (s *Service) Join(ctx context.Context, wagerID, accountID string, stake int64, eventID string) (*store.Wager, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.store.JoinWager(ctx, wagerID, accountID, stake, eventID); err != nil {
		return nil, err
	}
	return s.store.GetWager(ctx, wagerID)
}

// Lock closes entry. A wager that locks with fewer than two participants
// cannot be resolved, so it auto-cancels and every stake comes back.
func (s *Service) Lock(ctx context.Context, wagerID string) (*store.Wager, error) {
	w, err := s.store.LockWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if w.Status == store.WagerLocked && len(w.Participants) < 2 {
		log.Info().Str("wager_id", wagerID).Int("participants", len(w.Participants)).Msg("auto-cancelling underfilled wager")
		return s.Cancel(ctx, wagerID)
	}
	return w, nil
}

// Resolve settles a locked wager: losing stakes are pooled and distributed
// to the winners under the configured payout policy. The credited total
// equals the escrowed total, always.
func (s *Service) Resolve(ctx context.Context, wagerID string, winners []string) (*store.Wager, error) {
	w, err := s.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if w.Status != store.WagerLocked {
		return nil, store.ErrInvalidState
	}
	winnerSet, err := validateWinners(w, winners)
	if err != nil {
		return nil, err
	}
	payouts := computePayouts(w.Participants, winnerSet, s.policy)
	settled, err := s.store.SettleWager(ctx, wagerID, strings.Join(winners, ","), payouts)
	if err != nil {
		return nil, err
	}
	s.emitSettlement(ctx, settled, payouts)
	return settled, nil
}

// Void settles a locked wager with no winner: every stake is refunded and
// the wager still lands in its terminal state.
func (s *Service) Void(ctx context.Context, wagerID string) (*store.Wager, error) {
	w, err := s.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if w.Status != store.WagerLocked {
		return nil, store.ErrInvalidState
	}
	payouts := refundPayouts(w.Participants)
	settled, err := s.store.SettleWager(ctx, wagerID, ResolutionVoid, payouts)
	if err != nil {
		return nil, err
	}
	s.emitSettlement(ctx, settled, payouts)
	return settled, nil
}

// Cancel refunds every stake from an open or locked wager. Repeat calls on
// a cancelled wager are no-ops.
func (s *Service) Cancel(ctx context.Context, wagerID string) (*store.Wager, error) {
	w, err := s.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	alreadyCancelled := w.Status == store.WagerCancelled
	cancelled, err := s.store.CancelWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if !alreadyCancelled {
		s.emitSettlement(ctx, cancelled, refundPayouts(cancelled.Participants))
	}
	return cancelled, nil
}

func validateWinners(w *store.Wager, winners []string) (map[string]bool, error) {
	if len(winners) == 0 {
		return nil, ErrInvalidOutcome
	}
	set := make(map[string]bool, len(winners))
	for _, id := range winners {
		if w.Participant(id) == nil {
			return nil, ErrInvalidOutcome
		}
		if set[id] {
			return nil, ErrInvalidOutcome
		}
		set[id] = true
	}
	return set, nil
}

func (s *Service) emitSettlement(ctx context.Context, w *store.Wager, payouts []store.Payout) {
	amounts := make(map[string]int64, len(payouts))
	for _, p := range payouts {
		amounts[p.AccountID] += p.Amount
	}
	ev := notify.SettlementEvent{
		WagerID:    w.ID,
		Status:     w.Status,
		Resolution: w.Resolution,
		Pot:        w.Pot(),
		Payouts:    amounts,
	}
	if w.ResolvedAt != nil {
		ev.OccurredAt = *w.ResolvedAt
	}
	if err := s.notifier.SettlementCompleted(ctx, ev); err != nil {
		// the ledger already committed, a lost notification is log-only
		log.Error().Err(err).Str("wager_id", w.ID).Msg("settlement notification failed")
	}
}
