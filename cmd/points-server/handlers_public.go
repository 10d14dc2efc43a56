package main

import (
	"encoding/json"
	"net/http"

	"nexus-points/internal/app/public"
	"nexus-points/internal/wager"
)

func healthHandler(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func balanceHandler(svc *public.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := svc.Balance(r.Context(), r.URL.Query().Get("account_id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func historyHandler(svc *public.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntQuery(r, "limit", 50)
		resp, err := svc.History(r.Context(), r.URL.Query().Get("account_id"), limit, r.URL.Query().Get("before"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func leaderboardHandler(svc *public.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		resp, err := svc.Leaderboard(r.Context(), limit, offset)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func wagerGetHandler(svc *public.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := svc.Wager(r.Context(), wagerIDParam(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func wagerListHandler(svc *wager.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		items, err := svc.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]*public.WagerResponse, 0, len(items))
		for i := range items {
			out = append(out, public.WagerView(&items[i]))
		}
		writeJSON(w, map[string]any{"items": out, "limit": limit, "offset": offset})
	}
}
