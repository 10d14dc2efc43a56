package public

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"nexus-points/internal/store"
	"nexus-points/internal/store/memstore"
	"nexus-points/internal/wager"
)

func TestBalanceRequiresAccountID(t *testing.T) {
	svc := NewService(memstore.New())
	if _, err := svc.Balance(context.Background(), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestBalanceUnknownAccountIsZero(t *testing.T) {
	svc := NewService(memstore.New())
	resp, err := svc.Balance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if resp.AccountID != "ghost" || resp.Balance != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHistoryCursorChaining(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := st.Credit(ctx, "alice", 1, store.ReasonAccrual, "", ""); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}
	svc := NewService(st)

	first, err := svc.History(ctx, "alice", 3, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(first.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(first.Items))
	}
	if first.NextCursor == "" {
		t.Fatalf("expected a cursor on a full page")
	}

	second, err := svc.History(ctx, "alice", 3, first.NextCursor)
	if err != nil {
		t.Fatalf("history page 2: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 remaining items, got %d", len(second.Items))
	}
	if second.NextCursor != "" {
		t.Fatalf("expected no cursor on a short page, got %q", second.NextCursor)
	}
	for _, item := range second.Items {
		if item.ID >= first.Items[2].ID {
			t.Fatalf("page 2 overlaps page 1: %s", item.ID)
		}
	}
}

func TestHistoryClampsLimit(t *testing.T) {
	svc := NewService(memstore.New())
	resp, err := svc.History(context.Background(), "alice", 10_000, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if resp.Limit != 50 {
		t.Fatalf("expected clamped limit 50, got %d", resp.Limit)
	}
}

func TestLeaderboardRanksFromOffset(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d"} {
		if _, err := st.Credit(ctx, id, int64(100-i), store.ReasonAdminAdjust, "", ""); err != nil {
			t.Fatalf("credit %s: %v", id, err)
		}
	}
	svc := NewService(st)

	resp, err := svc.Leaderboard(ctx, 2, 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.Items[0].Rank != 2 || resp.Items[0].AccountID != "b" {
		t.Fatalf("unexpected first item %+v", resp.Items[0])
	}
	if resp.Items[1].Rank != 3 || resp.Items[1].AccountID != "c" {
		t.Fatalf("unexpected second item %+v", resp.Items[1])
	}
}

func TestUserMessageCoversEngineErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{store.ErrInsufficientFunds, "enough points"},
		{store.ErrInvalidState, "isn't accepting"},
		{wager.ErrInvalidOutcome, "isn't part of"},
		{store.ErrConflict, "already joined"},
		{store.ErrNotFound, "No such wager"},
		{ErrInvalidRequest, "doesn't look right"},
		{store.ErrInvalidAmount, "doesn't look right"},
		{errors.New("pg: connection refused"), "try again"},
	}
	for _, tc := range cases {
		got := UserMessage(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("UserMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
		// storage detail must never leak into chat output
		if strings.Contains(got, "pg:") {
			t.Fatalf("leaked internal error text: %q", got)
		}
	}
	// wrapped errors still map
	wrapped := fmt.Errorf("join wager: %w", store.ErrInsufficientFunds)
	if !strings.Contains(UserMessage(wrapped), "enough points") {
		t.Fatalf("wrapped error not matched: %q", UserMessage(wrapped))
	}
}
