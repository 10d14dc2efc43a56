package main

import (
	"errors"
	"net/http"
	"time"

	"nexus-points/internal/ledger"
	"nexus-points/internal/store"
)

func adminAdjustHandler(led *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AccountID string `json:"account_id"`
			Delta     int64  `json:"delta"`
			EventID   string `json:"event_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.AccountID == "" || body.Delta == 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		entry, err := led.AdminAdjust(r.Context(), body.AccountID, body.Delta, body.EventID)
		if errors.Is(err, store.ErrDuplicateEvent) {
			writeJSON(w, map[string]any{"ok": true, "duplicate": true})
			return
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "entry_id": entry.ID, "delta": entry.Delta})
	}
}

func adminLedgerHandler(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		f := store.LedgerFilter{
			AccountID: r.URL.Query().Get("account_id"),
			WagerID:   r.URL.Query().Get("wager_id"),
		}
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		items, err := st.ListLedgerEntries(r.Context(), f, limit, offset)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func adminAccountsHandler(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		items, err := st.ListAccounts(r.Context(), limit, offset)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
