package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateWager(ctx context.Context, creatorID, terms string) (*Wager, error) {
	w := &Wager{
		ID:        NewID(),
		CreatorID: creatorID,
		Terms:     terms,
		Status:    WagerOpen,
	}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO wagers (id, creator_id, terms, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, w.ID, w.CreatorID, w.Terms, w.Status).Scan(&w.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.Participants = []WagerParticipant{}
	return w, nil
}

func (s *Store) GetWager(ctx context.Context, wagerID string) (*Wager, error) {
	w, err := scanWager(s.Pool.QueryRow(ctx, `
		SELECT id, creator_id, terms, status, COALESCE(resolution, ''), created_at, locked_at, resolved_at
		FROM wagers WHERE id = $1
	`, wagerID))
	if err != nil {
		return nil, err
	}
	w.Participants, err = s.listParticipants(ctx, s.Pool, wagerID)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// JoinWager escrows the stake and records the participant in one
// transaction: the wager row is locked first, then the stake is debited,
// then the participant row and escrow entry are written. Any failure rolls
// the whole thing back, so a participant without a debit (or the reverse)
// cannot exist.
func (s *Store) JoinWager(ctx context.Context, wagerID, accountID string, stake int64, eventID string) (*LedgerEntry, error) {
	if stake <= 0 {
		return nil, ErrInvalidAmount
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status, err := lockWagerRow(ctx, tx, wagerID)
	if err != nil {
		return nil, err
	}
	if status != WagerOpen {
		return nil, ErrInvalidState
	}
	entry, err := debitLocked(ctx, tx, accountID, stake, ReasonWagerEscrow, wagerID, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO wager_participants (wager_id, account_id, stake) VALUES ($1, $2, $3)`,
		wagerID, accountID, stake); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// LockWager moves an open wager to locked. Locking an already locked wager
// is a no-op; any terminal status fails with ErrInvalidState.
func (s *Store) LockWager(ctx context.Context, wagerID string) (*Wager, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status, err := lockWagerRow(ctx, tx, wagerID)
	if err != nil {
		return nil, err
	}
	switch status {
	case WagerOpen:
		if _, err := tx.Exec(ctx, `UPDATE wagers SET status = $1, locked_at = now() WHERE id = $2`, WagerLocked, wagerID); err != nil {
			return nil, err
		}
	case WagerLocked:
		// idempotent
	default:
		return nil, ErrInvalidState
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.GetWager(ctx, wagerID)
}

// SettleWager applies the computed payouts and moves the wager from locked
// to settled as one transaction. The status check under the row lock is the
// atomicity boundary: a crash before commit leaves the wager locked and the
// whole settlement retryable, a concurrent settle fails the check.
func (s *Store) SettleWager(ctx context.Context, wagerID, resolution string, payouts []Payout) (*Wager, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status, err := lockWagerRow(ctx, tx, wagerID)
	if err != nil {
		return nil, err
	}
	if status != WagerLocked {
		return nil, ErrInvalidState
	}
	for _, p := range payouts {
		if p.Amount <= 0 {
			continue
		}
		if err := upsertBalance(ctx, tx, p.AccountID, p.Amount); err != nil {
			return nil, err
		}
		if _, err := appendEntry(ctx, tx, p.AccountID, p.Amount, p.Reason, wagerID, ""); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE wagers SET status = $1, resolution = $2, resolved_at = now() WHERE id = $3`,
		WagerSettled, resolution, wagerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.GetWager(ctx, wagerID)
}

// CancelWager refunds every participant's stake and moves the wager to
// cancelled. Cancelling an already cancelled wager returns it unchanged
// with no second refund; a settled wager fails with ErrInvalidState.
func (s *Store) CancelWager(ctx context.Context, wagerID string) (*Wager, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status, err := lockWagerRow(ctx, tx, wagerID)
	if err != nil {
		return nil, err
	}
	switch status {
	case WagerCancelled:
		// idempotent, already refunded
	case WagerOpen, WagerLocked:
		participants, err := s.listParticipants(ctx, tx, wagerID)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			if err := upsertBalance(ctx, tx, p.AccountID, p.Stake); err != nil {
				return nil, err
			}
			if _, err := appendEntry(ctx, tx, p.AccountID, p.Stake, ReasonWagerRefund, wagerID, ""); err != nil {
				return nil, err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE wagers SET status = $1 WHERE id = $2`, WagerCancelled, wagerID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidState
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.GetWager(ctx, wagerID)
}

func (s *Store) ListWagers(ctx context.Context, status string, limit, offset int) ([]Wager, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, creator_id, terms, status, COALESCE(resolution, ''), created_at, locked_at, resolved_at
		FROM wagers
		WHERE ($1 = '' OR status = $1)
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Wager{}
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func lockWagerRow(ctx context.Context, tx pgx.Tx, wagerID string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM wagers WHERE id = $1 FOR UPDATE`, wagerID).Scan(&status)
	if err != nil {
		return "", mapNotFound(err)
	}
	return status, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) listParticipants(ctx context.Context, q querier, wagerID string) ([]WagerParticipant, error) {
	rows, err := q.Query(ctx, `
		SELECT wager_id, account_id, stake, joined_at
		FROM wager_participants WHERE wager_id = $1 ORDER BY joined_at ASC, account_id ASC
	`, wagerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WagerParticipant{}
	for rows.Next() {
		var p WagerParticipant
		if err := rows.Scan(&p.WagerID, &p.AccountID, &p.Stake, &p.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanWager(row pgx.Row) (*Wager, error) {
	var w Wager
	err := row.Scan(&w.ID, &w.CreatorID, &w.Terms, &w.Status, &w.Resolution, &w.CreatedAt, &w.LockedAt, &w.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}
