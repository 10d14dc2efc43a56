package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexus-points/internal/accrual"
	"nexus-points/internal/app/public"
	"nexus-points/internal/config"
	"nexus-points/internal/ledger"
	"nexus-points/internal/store"
	"nexus-points/internal/store/memstore"
	"nexus-points/internal/wager"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(cfg config.ServerConfig) (*chi.Mux, *memstore.Store) {
	st := memstore.New()
	deps := Deps{
		Store:   st,
		Public:  public.NewService(st),
		Ledger:  ledger.New(st),
		Accrual: accrual.NewService(st, accrual.Config{Cooldown: time.Minute, MinAmount: 5, MaxAmount: 5}),
		Wagers:  wager.NewService(st, nil, wager.PolicyProportional),
		Cfg:     cfg,
	}
	return newRouter(deps), st
}

func fundAccount(t *testing.T, st *memstore.Store, accountID string, amount int64) {
	t.Helper()
	if _, err := st.Credit(context.Background(), accountID, amount, store.ReasonAdminAdjust, "", ""); err != nil {
		t.Fatalf("fund %s: %v", accountID, err)
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}
