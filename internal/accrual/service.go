// Package accrual converts qualifying chat activity into rate-limited point
// grants.
package accrual

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"nexus-points/internal/store"

	"github.com/rs/zerolog/log"
)

type Store interface {
	Accrue(ctx context.Context, accountID string, amount int64, eventID string, cooldown time.Duration) (*store.LedgerEntry, error)
}

type Config struct {
	Cooldown  time.Duration
	MinAmount int64
	MaxAmount int64
}

type Service struct {
	store Store
	cfg   Config
}

func NewService(st Store, cfg Config) *Service {
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 1
	}
	if cfg.MaxAmount < cfg.MinAmount {
		cfg.MaxAmount = cfg.MinAmount
	}
	return &Service{store: st, cfg: cfg}
}

// Result reports whether the event produced a grant. Cooldown hits and
// redelivered events are not errors: the transport acks them and moves on.
type Result struct {
	Credited bool
	Amount   int64
}

// HandleActivity grants at most one credit per account per cooldown window.
// The store runs the window check and the duplicate event_id check inside
// the credit transaction, so redelivery and concurrent delivery both
// collapse to a single grant.
func (s *Service) HandleActivity(ctx context.Context, accountID, eventID string) (Result, error) {
	amount := s.amount()
	entry, err := s.store.Accrue(ctx, accountID, amount, eventID, s.cfg.Cooldown)
	if errors.Is(err, store.ErrCooldown) {
		return Result{}, nil
	}
	if errors.Is(err, store.ErrDuplicateEvent) {
		log.Debug().Str("account_id", accountID).Str("event_id", eventID).Msg("accrual event redelivered")
		return Result{}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Credited: true, Amount: entry.Delta}, nil
}

func (s *Service) amount() int64 {
	if s.cfg.MaxAmount == s.cfg.MinAmount {
		return s.cfg.MinAmount
	}
	return s.cfg.MinAmount + rand.Int63n(s.cfg.MaxAmount-s.cfg.MinAmount+1)
}
