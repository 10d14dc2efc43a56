package store

import "time"

type Account struct {
	ID        string
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LedgerEntry struct {
	ID        string
	AccountID string
	Delta     int64
	Reason    string
	WagerID   string
	EventID   string
	CreatedAt time.Time
}

type Wager struct {
	ID           string
	CreatorID    string
	Terms        string
	Status       string
	Resolution   string
	Participants []WagerParticipant
	CreatedAt    time.Time
	LockedAt     *time.Time
	ResolvedAt   *time.Time
}

// Pot is the total escrowed across participants.
func (w *Wager) Pot() int64 {
	var total int64
	for _, p := range w.Participants {
		total += p.Stake
	}
	return total
}

func (w *Wager) Participant(accountID string) *WagerParticipant {
	for i := range w.Participants {
		if w.Participants[i].AccountID == accountID {
			return &w.Participants[i]
		}
	}
	return nil
}

type WagerParticipant struct {
	WagerID   string
	AccountID string
	Stake     int64
	JoinedAt  time.Time
}

// Payout is one settlement credit computed by the wager engine and applied
// by the store inside the settlement transaction.
type Payout struct {
	AccountID string
	Amount    int64
	Reason    string
}

type LedgerFilter struct {
	AccountID string
	WagerID   string
	From      *time.Time
	To        *time.Time
}
