package wager

import "nexus-points/internal/store"

// Payout policies for multi-winner wagers.
const (
	PolicyProportional = "proportional"
	PolicyEqual        = "equal"
)

// computePayouts turns the escrowed stakes into settlement credits. Each
// winner gets their own stake back plus a share of the losing stakes; the
// credited total always equals the pot, so a wager redistributes points and
// never mints or burns them. Rounding remainders go to winners in join
// order, one point each.
func computePayouts(participants []store.WagerParticipant, winners map[string]bool, policy string) []store.Payout {
	var pot, winnersStake int64
	ordered := make([]store.WagerParticipant, 0, len(participants))
	for _, p := range participants {
		pot += p.Stake
		if winners[p.AccountID] {
			winnersStake += p.Stake
			ordered = append(ordered, p)
		}
	}
	losersPool := pot - winnersStake

	payouts := make([]store.Payout, 0, len(ordered))
	var distributed int64
	for _, p := range ordered {
		var share int64
		switch policy {
		case PolicyEqual:
			share = losersPool / int64(len(ordered))
		default: // proportional
			share = losersPool * p.Stake / winnersStake
		}
		distributed += share
		payouts = append(payouts, store.Payout{
			AccountID: p.AccountID,
			Amount:    p.Stake + share,
			Reason:    store.ReasonWagerPayout,
		})
	}
	for i := 0; distributed < losersPool; i++ {
		payouts[i%len(payouts)].Amount++
		distributed++
	}
	return payouts
}

// refundPayouts gives every participant their exact stake back.
func refundPayouts(participants []store.WagerParticipant) []store.Payout {
	payouts := make([]store.Payout, 0, len(participants))
	for _, p := range participants {
		payouts = append(payouts, store.Payout{
			AccountID: p.AccountID,
			Amount:    p.Stake,
			Reason:    store.ReasonWagerRefund,
		})
	}
	return payouts
}
