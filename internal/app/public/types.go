package public

import "time"

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type HistoryResponse struct {
	AccountID  string        `json:"account_id"`
	Items      []HistoryItem `json:"items"`
	Limit      int           `json:"limit"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type HistoryItem struct {
	ID        string    `json:"id"`
	Delta     int64     `json:"delta"`
	Reason    string    `json:"reason"`
	WagerID   string    `json:"wager_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WagerResponse struct {
	WagerID      string             `json:"wager_id"`
	CreatorID    string             `json:"creator_id"`
	Terms        string             `json:"terms"`
	Status       string             `json:"status"`
	Resolution   string             `json:"resolution,omitempty"`
	Pot          int64              `json:"pot"`
	Participants []WagerParticipant `json:"participants"`
	CreatedAt    time.Time          `json:"created_at"`
	LockedAt     *time.Time         `json:"locked_at,omitempty"`
	ResolvedAt   *time.Time         `json:"resolved_at,omitempty"`
}

type WagerParticipant struct {
	AccountID string `json:"account_id"`
	Stake     int64  `json:"stake"`
}

type LeaderboardResponse struct {
	Items  []LeaderboardItem `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type LeaderboardItem struct {
	Rank      int    `json:"rank"`
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}
