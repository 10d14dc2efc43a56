package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexus-points/internal/store"
	"nexus-points/internal/testutil"
)

func TestCreditDebitBalance(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	bal, err := st.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance of unknown account: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected 0, got %d", bal)
	}

	entry, err := st.Credit(ctx, "alice", 100, store.ReasonAdminAdjust, "", "")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if entry.Delta != 100 || entry.AccountID != "alice" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if _, err := st.Debit(ctx, "alice", 30, store.ReasonWagerEscrow, "", ""); err != nil {
		t.Fatalf("debit: %v", err)
	}
	bal, err = st.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 70 {
		t.Fatalf("expected 70, got %d", bal)
	}

	if _, err := st.Debit(ctx, "alice", 71, store.ReasonWagerEscrow, "", ""); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := st.Debit(ctx, "nobody", 1, store.ReasonWagerEscrow, "", ""); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds for unknown account, got %v", err)
	}
	if _, err := st.Credit(ctx, "alice", -5, store.ReasonAdminAdjust, "", ""); !errors.Is(err, store.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDuplicateEventID(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Credit(ctx, "alice", 10, store.ReasonAccrual, "", "ev-1"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := st.Credit(ctx, "alice", 10, store.ReasonAccrual, "", "ev-1"); !errors.Is(err, store.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	bal, err := st.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 10 {
		t.Fatalf("expected a single credit, balance %d", bal)
	}
}

func TestTransfer(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Credit(ctx, "alice", 50, store.ReasonAdminAdjust, "", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := st.Transfer(ctx, "alice", "bob", 30, "tx-1"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := st.Transfer(ctx, "alice", "bob", 30, ""); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := st.Transfer(ctx, "alice", "bob", 5, "tx-1"); !errors.Is(err, store.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent on redelivery, got %v", err)
	}
	aliceBal, _ := st.Balance(ctx, "alice")
	bobBal, _ := st.Balance(ctx, "bob")
	if aliceBal != 20 || bobBal != 30 {
		t.Fatalf("unexpected balances alice=%d bob=%d", aliceBal, bobBal)
	}
}

func TestAccrueCooldownAndDedup(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Accrue(ctx, "alice", 5, "ev-1", time.Minute); err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if _, err := st.Accrue(ctx, "alice", 5, "ev-2", time.Minute); !errors.Is(err, store.ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}
	if _, err := st.Accrue(ctx, "alice", 5, "ev-1", 0); !errors.Is(err, store.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	// another account has its own window
	if _, err := st.Accrue(ctx, "bob", 5, "ev-3", time.Minute); err != nil {
		t.Fatalf("accrue bob: %v", err)
	}
	bal, _ := st.Balance(ctx, "alice")
	if bal != 5 {
		t.Fatalf("expected a single grant, balance %d", bal)
	}
}

func TestHistoryCursorPagination(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := st.Credit(ctx, "alice", 1, store.ReasonAccrual, "", ""); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}

	first, err := st.History(ctx, "alice", 3, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(first))
	}
	if first[0].ID <= first[1].ID || first[1].ID <= first[2].ID {
		t.Fatalf("expected newest first ordering")
	}

	rest, err := st.History(ctx, "alice", 10, first[2].ID)
	if err != nil {
		t.Fatalf("history page 2: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(rest))
	}
	for _, e := range rest {
		if e.ID >= first[2].ID {
			t.Fatalf("cursor not honored: %s", e.ID)
		}
	}
}

func TestLeaderboardAndListAccounts(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for id, amount := range map[string]int64{"carol": 30, "alice": 50, "bob": 50} {
		if _, err := st.Credit(ctx, id, amount, store.ReasonAdminAdjust, "", ""); err != nil {
			t.Fatalf("credit %s: %v", id, err)
		}
	}

	top, err := st.Leaderboard(ctx, 2, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].ID != "alice" || top[1].ID != "bob" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	accounts, err := st.ListAccounts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
}

func TestListLedgerEntriesFilters(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Credit(ctx, "alice", 10, store.ReasonAccrual, "", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := st.Debit(ctx, "alice", 4, store.ReasonWagerEscrow, "", ""); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if _, err := st.Credit(ctx, "bob", 7, store.ReasonAccrual, "", ""); err != nil {
		t.Fatalf("credit bob: %v", err)
	}

	byAccount, err := st.ListLedgerEntries(ctx, store.LedgerFilter{AccountID: "alice"}, 10, 0)
	if err != nil {
		t.Fatalf("list by account: %v", err)
	}
	if len(byAccount) != 2 {
		t.Fatalf("expected 2 alice rows, got %d", len(byAccount))
	}

	from := time.Now().Add(time.Hour)
	none, err := st.ListLedgerEntries(ctx, store.LedgerFilter{From: &from}, 10, 0)
	if err != nil {
		t.Fatalf("list by time: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows in the future, got %d", len(none))
	}
}
