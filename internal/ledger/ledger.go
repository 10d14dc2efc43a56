// Package ledger is the narrow write surface over the store for balance
// mutations that do not belong to a wager's own settlement transaction.
package ledger

import (
	"context"

	"nexus-points/internal/store"
)

type Store interface {
	Credit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error)
	Debit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error)
	Transfer(ctx context.Context, from, to string, amount int64, eventID string) error
}

type Ledger struct {
	Store Store
}

func New(s Store) *Ledger {
	return &Ledger{Store: s}
}

// AdminAdjust applies a signed admin delta. Negative deltas go through the
// same insufficient-funds check as any debit.
func (l *Ledger) AdminAdjust(ctx context.Context, accountID string, delta int64, eventID string) (*store.LedgerEntry, error) {
	if delta < 0 {
		return l.Store.Debit(ctx, accountID, -delta, store.ReasonAdminAdjust, "", eventID)
	}
	return l.Store.Credit(ctx, accountID, delta, store.ReasonAdminAdjust, "", eventID)
}

// Gift moves points between two members, all-or-nothing.
func (l *Ledger) Gift(ctx context.Context, from, to string, amount int64, eventID string) error {
	return l.Store.Transfer(ctx, from, to, amount, eventID)
}
