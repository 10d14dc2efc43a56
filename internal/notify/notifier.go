// Package notify carries settlement results out to the command transport.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SettlementEvent describes a wager reaching a terminal state. Payout
// amounts are the credited totals per account (stake plus winnings, or the
// refunded stake).
type SettlementEvent struct {
	WagerID    string           `json:"wager_id"`
	Status     string           `json:"status"`
	Resolution string           `json:"resolution,omitempty"`
	Pot        int64            `json:"pot"`
	Payouts    map[string]int64 `json:"payouts,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type Notifier interface {
	SettlementCompleted(ctx context.Context, ev SettlementEvent) error
}

// LogNotifier is the default sink when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) SettlementCompleted(ctx context.Context, ev SettlementEvent) error {
	log.Info().
		Str("wager_id", ev.WagerID).
		Str("status", ev.Status).
		Str("resolution", ev.Resolution).
		Int64("pot", ev.Pot).
		Int("payouts", len(ev.Payouts)).
		Msg("wager settled")
	return nil
}
