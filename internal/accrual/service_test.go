package accrual

import (
	"context"
	"testing"
	"time"

	"nexus-points/internal/store/memstore"
)

func TestHandleActivityGrantsOncePerWindow(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, Config{Cooldown: time.Minute, MinAmount: 5, MaxAmount: 5})
	ctx := context.Background()

	res, err := svc.HandleActivity(ctx, "alice", "ev-1")
	if err != nil {
		t.Fatalf("first activity: %v", err)
	}
	if !res.Credited || res.Amount != 5 {
		t.Fatalf("expected a 5 point grant, got %+v", res)
	}

	// inside the window: acked, not credited
	res, err = svc.HandleActivity(ctx, "alice", "ev-2")
	if err != nil {
		t.Fatalf("second activity: %v", err)
	}
	if res.Credited {
		t.Fatalf("expected cooldown suppression, got %+v", res)
	}

	bal, err := st.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 5 {
		t.Fatalf("expected balance 5, got %d", bal)
	}
}

func TestHandleActivityIgnoresRedeliveredEvents(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, Config{Cooldown: 0, MinAmount: 3, MaxAmount: 3})
	ctx := context.Background()

	if _, err := svc.HandleActivity(ctx, "alice", "ev-1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	res, err := svc.HandleActivity(ctx, "alice", "ev-1")
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if res.Credited {
		t.Fatalf("expected redelivery to be a no-op, got %+v", res)
	}
	bal, _ := st.Balance(ctx, "alice")
	if bal != 3 {
		t.Fatalf("expected a single grant, balance %d", bal)
	}
}

func TestHandleActivityWindowIsPerAccount(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, Config{Cooldown: time.Minute, MinAmount: 2, MaxAmount: 2})
	ctx := context.Background()

	if _, err := svc.HandleActivity(ctx, "alice", "ev-a"); err != nil {
		t.Fatalf("alice activity: %v", err)
	}
	res, err := svc.HandleActivity(ctx, "bob", "ev-b")
	if err != nil {
		t.Fatalf("bob activity: %v", err)
	}
	if !res.Credited {
		t.Fatalf("expected bob's window to be independent, got %+v", res)
	}
}

func TestAmountStaysInConfiguredRange(t *testing.T) {
	svc := NewService(memstore.New(), Config{MinAmount: 2, MaxAmount: 6})
	for i := 0; i < 200; i++ {
		a := svc.amount()
		if a < 2 || a > 6 {
			t.Fatalf("amount %d outside [2,6]", a)
		}
	}
}

func TestNewServiceNormalizesConfig(t *testing.T) {
	svc := NewService(memstore.New(), Config{MinAmount: 0, MaxAmount: -4})
	if got := svc.amount(); got != 1 {
		t.Fatalf("expected fallback amount 1, got %d", got)
	}
}
