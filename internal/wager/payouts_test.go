package wager

import (
	"testing"

	"nexus-points/internal/store"
)

func participantsFrom(stakes map[string]int64, order []string) []store.WagerParticipant {
	out := make([]store.WagerParticipant, 0, len(order))
	for _, id := range order {
		out = append(out, store.WagerParticipant{AccountID: id, Stake: stakes[id]})
	}
	return out
}

func payoutFor(t *testing.T, payouts []store.Payout, accountID string) int64 {
	t.Helper()
	for _, p := range payouts {
		if p.AccountID == accountID {
			return p.Amount
		}
	}
	t.Fatalf("no payout for %s in %+v", accountID, payouts)
	return 0
}

func TestComputePayoutsSingleWinnerTakesPot(t *testing.T) {
	parts := participantsFrom(map[string]int64{"alice": 50, "bob": 30}, []string{"alice", "bob"})
	payouts := computePayouts(parts, map[string]bool{"alice": true}, PolicyProportional)

	if len(payouts) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(payouts))
	}
	if got := payoutFor(t, payouts, "alice"); got != 80 {
		t.Fatalf("expected alice to collect 80, got %d", got)
	}
}

func TestComputePayoutsProportionalSplit(t *testing.T) {
	stakes := map[string]int64{"a": 60, "b": 20, "c": 100}
	parts := participantsFrom(stakes, []string{"a", "b", "c"})
	payouts := computePayouts(parts, map[string]bool{"a": true, "b": true}, PolicyProportional)

	// losersPool = 100, winners staked 80: a gets 60 + 75, b gets 20 + 25.
	if got := payoutFor(t, payouts, "a"); got != 135 {
		t.Fatalf("expected a to collect 135, got %d", got)
	}
	if got := payoutFor(t, payouts, "b"); got != 45 {
		t.Fatalf("expected b to collect 45, got %d", got)
	}
}

func TestComputePayoutsEqualSplit(t *testing.T) {
	stakes := map[string]int64{"a": 60, "b": 20, "c": 100}
	parts := participantsFrom(stakes, []string{"a", "b", "c"})
	payouts := computePayouts(parts, map[string]bool{"a": true, "b": true}, PolicyEqual)

	if got := payoutFor(t, payouts, "a"); got != 110 {
		t.Fatalf("expected a to collect 110, got %d", got)
	}
	if got := payoutFor(t, payouts, "b"); got != 70 {
		t.Fatalf("expected b to collect 70, got %d", got)
	}
}

func TestComputePayoutsConservesPot(t *testing.T) {
	cases := []struct {
		name    string
		stakes  map[string]int64
		order   []string
		winners map[string]bool
		policy  string
	}{
		{
			name:    "proportional with rounding remainder",
			stakes:  map[string]int64{"a": 3, "b": 3, "c": 3, "d": 1},
			order:   []string{"a", "b", "c", "d"},
			winners: map[string]bool{"a": true, "b": true, "c": true},
			policy:  PolicyProportional,
		},
		{
			name:    "equal with rounding remainder",
			stakes:  map[string]int64{"a": 10, "b": 10, "c": 10, "d": 7},
			order:   []string{"a", "b", "c", "d"},
			winners: map[string]bool{"a": true, "b": true, "c": true},
			policy:  PolicyEqual,
		},
		{
			name:    "lopsided stakes",
			stakes:  map[string]int64{"a": 1, "b": 999},
			order:   []string{"a", "b"},
			winners: map[string]bool{"a": true},
			policy:  PolicyProportional,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts := participantsFrom(tc.stakes, tc.order)
			var pot int64
			for _, p := range parts {
				pot += p.Stake
			}
			payouts := computePayouts(parts, tc.winners, tc.policy)
			var credited int64
			for _, p := range payouts {
				if p.Amount <= 0 {
					t.Fatalf("non-positive payout %+v", p)
				}
				if p.Reason != store.ReasonWagerPayout {
					t.Fatalf("unexpected reason %q", p.Reason)
				}
				credited += p.Amount
			}
			if credited != pot {
				t.Fatalf("credited %d, escrowed %d", credited, pot)
			}
		})
	}
}

func TestRefundPayoutsReturnsExactStakes(t *testing.T) {
	parts := participantsFrom(map[string]int64{"a": 42, "b": 7}, []string{"a", "b"})
	payouts := refundPayouts(parts)
	if len(payouts) != 2 {
		t.Fatalf("expected 2 refunds, got %d", len(payouts))
	}
	if got := payoutFor(t, payouts, "a"); got != 42 {
		t.Fatalf("expected 42 back for a, got %d", got)
	}
	if got := payoutFor(t, payouts, "b"); got != 7 {
		t.Fatalf("expected 7 back for b, got %d", got)
	}
	for _, p := range payouts {
		if p.Reason != store.ReasonWagerRefund {
			t.Fatalf("unexpected reason %q", p.Reason)
		}
	}
}
