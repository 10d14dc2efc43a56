// Package public is the read-only query facade: balance, history, wager
// views and the leaderboard, shaped for the command transport.
package public

import (
	"context"

	"nexus-points/internal/store"
)

const historyMaxRows = 100

type Store interface {
	Balance(ctx context.Context, accountID string) (int64, error)
	History(ctx context.Context, accountID string, limit int, before string) ([]store.LedgerEntry, error)
	GetWager(ctx context.Context, wagerID string) (*store.Wager, error)
	Leaderboard(ctx context.Context, limit, offset int) ([]store.Account, error)
}

type Service struct {
	store Store
}

func NewService(st Store) *Service {
	return &Service{store: st}
}

func (s *Service) Balance(ctx context.Context, accountID string) (*BalanceResponse, error) {
	if accountID == "" {
		return nil, ErrInvalidRequest
	}
	bal, err := s.store.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{AccountID: accountID, Balance: bal}, nil
}

// History pages newest first. The next_cursor in the response feeds the
// next call's before parameter; an empty cursor means the page was short.
func (s *Service) History(ctx context.Context, accountID string, limit int, before string) (*HistoryResponse, error) {
	if accountID == "" {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 || limit > historyMaxRows {
		limit = 50
	}
	entries, err := s.store.History(ctx, accountID, limit, before)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			ID:        e.ID,
			Delta:     e.Delta,
			Reason:    e.Reason,
			WagerID:   e.WagerID,
			CreatedAt: e.CreatedAt,
		})
	}
	next := ""
	if len(entries) == limit {
		next = entries[len(entries)-1].ID
	}
	return &HistoryResponse{AccountID: accountID, Items: items, Limit: limit, NextCursor: next}, nil
}

func (s *Service) Wager(ctx context.Context, wagerID string) (*WagerResponse, error) {
	if wagerID == "" {
		return nil, ErrInvalidRequest
	}
	w, err := s.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	return WagerView(w), nil
}

func (s *Service) Leaderboard(ctx context.Context, limit, offset int) (*LeaderboardResponse, error) {
	if limit <= 0 || limit > historyMaxRows {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.store.Leaderboard(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]LeaderboardItem, 0, len(accounts))
	for i, a := range accounts {
		items = append(items, LeaderboardItem{
			Rank:      offset + i + 1,
			AccountID: a.ID,
			Balance:   a.Balance,
		})
	}
	return &LeaderboardResponse{Items: items, Limit: limit, Offset: offset}, nil
}

// WagerView shapes a stored wager for the transport.
func WagerView(w *store.Wager) *WagerResponse {
	participants := make([]WagerParticipant, 0, len(w.Participants))
	for _, p := range w.Participants {
		participants = append(participants, WagerParticipant{AccountID: p.AccountID, Stake: p.Stake})
	}
	return &WagerResponse{
		WagerID:      w.ID,
		CreatorID:    w.CreatorID,
		Terms:        w.Terms,
		Status:       w.Status,
		Resolution:   w.Resolution,
		Pot:          w.Pot(),
		Participants: participants,
		CreatedAt:    w.CreatedAt,
		LockedAt:     w.LockedAt,
		ResolvedAt:   w.ResolvedAt,
	}
}
