package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrDuplicateEvent    = errors.New("duplicate_event")
	ErrConflict          = errors.New("conflict")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidState      = errors.New("invalid_state")
	ErrCooldown          = errors.New("accrual_cooldown")
)

// Ledger entry reasons. The set is closed: every balance delta carries
// exactly one of these.
const (
	ReasonAccrual     = "accrual"
	ReasonWagerEscrow = "wager_escrow"
	ReasonWagerPayout = "wager_payout"
	ReasonWagerRefund = "wager_refund"
	ReasonAdminAdjust = "admin_adjust"
	ReasonTransferOut = "transfer_out"
	ReasonTransferIn  = "transfer_in"
)

// Wager statuses as persisted. A resolving wager goes locked -> settled in
// one transaction; "resolved" never hits the table.
const (
	WagerOpen      = "open"
	WagerLocked    = "locked"
	WagerCancelled = "cancelled"
	WagerSettled   = "settled"
)

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
