package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Credit appends a positive ledger entry and increments the balance in one
// transaction. The account row is created on first credit. A non-empty
// eventID makes the call idempotent: redelivery fails with ErrDuplicateEvent
// and writes nothing.
func (s *Store) Credit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := upsertBalance(ctx, tx, accountID, amount); err != nil {
		return nil, err
	}
	entry, err := appendEntry(ctx, tx, accountID, amount, reason, wagerID, eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit checks and decrements the balance as a single atomic operation: the
// account row is locked for the duration of the transaction, so two
// concurrent debits serialize and the second sees the first's decrement.
func (s *Store) Debit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := debitLocked(ctx, tx, accountID, amount, reason, wagerID, eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// Transfer moves amount from one account to the other, all-or-nothing. Both
// rows are locked in ascending ID order so concurrent transfers between the
// same pair cannot deadlock.
func (s *Store) Transfer(ctx context.Context, from, to string, amount int64, eventID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrConflict
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	first, second := from, to
	if second < first {
		first, second = second, first
	}
	if _, err := lockBalance(ctx, tx, first); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := lockBalance(ctx, tx, second); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := debitLocked(ctx, tx, from, amount, ReasonTransferOut, "", eventID); err != nil {
		return err
	}
	if err := upsertBalance(ctx, tx, to, amount); err != nil {
		return err
	}
	if _, err := appendEntry(ctx, tx, to, amount, ReasonTransferIn, "", ""); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Accrue credits an activity grant unless the account already accrued within
// the cooldown window. The window check runs with the account row locked, so
// concurrent deliveries for the same account cannot both pass it.
func (s *Store) Accrue(ctx context.Context, accountID string, amount int64, eventID string, cooldown time.Duration) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO accounts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, accountID); err != nil {
		return nil, err
	}
	if _, err := lockBalance(ctx, tx, accountID); err != nil {
		return nil, err
	}
	if cooldown > 0 {
		var last time.Time
		err := tx.QueryRow(ctx, `SELECT created_at FROM ledger_entries WHERE account_id = $1 AND reason = $2 ORDER BY id DESC LIMIT 1`,
			accountID, ReasonAccrual).Scan(&last)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil && time.Since(last) < cooldown {
			return nil, ErrCooldown
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1, updated_at = now() WHERE id = $2`, amount, accountID); err != nil {
		return nil, err
	}
	entry, err := appendEntry(ctx, tx, accountID, amount, ReasonAccrual, "", eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance reads the current balance. Unknown accounts read as 0 without a
// row being created.
func (s *Store) Balance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}

// History lists an account's entries newest first. A non-empty before cursor
// (an entry ID from a previous page) restarts the scan below it.
func (s *Store) History(ctx context.Context, accountID string, limit int, before string) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, account_id, delta, reason, COALESCE(wager_id, ''), COALESCE(event_id, ''), created_at
		FROM ledger_entries
		WHERE account_id = $1 AND ($2 = '' OR id < $2)
		ORDER BY id DESC
		LIMIT $3
	`, accountID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []any{}
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		where += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if f.WagerID != "" {
		args = append(args, f.WagerID)
		where += fmt.Sprintf(" AND wager_id = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, limit, offset)
	q := `SELECT id, account_id, delta, reason, COALESCE(wager_id, ''), COALESCE(event_id, ''), created_at FROM ledger_entries ` +
		where + fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) ListAccounts(ctx context.Context, limit, offset int) ([]Account, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT id, balance, created_at, updated_at FROM accounts ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Leaderboard(ctx context.Context, limit, offset int) ([]Account, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT id, balance, created_at, updated_at FROM accounts ORDER BY balance DESC, id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func lockBalance(ctx context.Context, tx pgx.Tx, accountID string) (int64, error) {
	var bal int64
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

func upsertBalance(ctx context.Context, tx pgx.Tx, accountID string, delta int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO accounts (id, balance) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()
	`, accountID, delta)
	return err
}

func debitLocked(ctx context.Context, tx pgx.Tx, accountID string, amount int64, reason, wagerID, eventID string) (*LedgerEntry, error) {
	bal, err := lockBalance(ctx, tx, accountID)
	if errors.Is(err, ErrNotFound) {
		// account never credited, balance reads as 0
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}
	if bal < amount {
		return nil, ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $1, updated_at = now() WHERE id = $2`, amount, accountID); err != nil {
		return nil, err
	}
	return appendEntry(ctx, tx, accountID, -amount, reason, wagerID, eventID)
}

func appendEntry(ctx context.Context, tx pgx.Tx, accountID string, delta int64, reason, wagerID, eventID string) (*LedgerEntry, error) {
	e := &LedgerEntry{
		ID:        NewID(),
		AccountID: accountID,
		Delta:     delta,
		Reason:    reason,
		WagerID:   wagerID,
		EventID:   eventID,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (id, account_id, delta, reason, wager_id, event_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING created_at
	`, e.ID, e.AccountID, e.Delta, e.Reason, e.WagerID, e.EventID).Scan(&e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEvent
		}
		return nil, err
	}
	return e, nil
}

func scanEntries(rows pgx.Rows) ([]LedgerEntry, error) {
	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Delta, &e.Reason, &e.WagerID, &e.EventID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
