package main

import (
	"errors"
	"net/http"

	"nexus-points/internal/app/public"
	"nexus-points/internal/store"
	"nexus-points/internal/wager"

	"github.com/go-chi/chi/v5"
)

func wagerIDParam(r *http.Request) string {
	return chi.URLParam(r, "wager_id")
}

func wagerCreateHandler(svc *wager.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CreatorID string `json:"creator_id"`
			Terms     string `json:"terms"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		created, err := svc.Create(r.Context(), body.CreatorID, body.Terms)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, public.WagerView(created))
	}
}

func wagerJoinHandler(svc *wager.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AccountID string `json:"account_id"`
			Stake     int64  `json:"stake"`
			EventID   string `json:"event_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		joined, err := svc.Join(r.Context(), wagerIDParam(r), body.AccountID, body.Stake, body.EventID)
		if errors.Is(err, store.ErrDuplicateEvent) {
			// redelivered join, the stake is already escrowed
			writeJSON(w, map[string]any{"ok": true, "duplicate": true})
			return
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, public.WagerView(joined))
	}
}

func wagerLockHandler(svc *wager.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locked, err := svc.Lock(r.Context(), wagerIDParam(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, public.WagerView(locked))
	}
}

func wagerResolveHandler(svc *wager.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Winners []string `json:"winners"`
			Void    bool     `json:"void"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		var (
			settled *store.Wager
			err     error
		)
		if body.Void {
			settled, err = svc.Void(r.Context(), wagerIDParam(r))
		} else {
			settled, err = svc.Resolve(r.Context(), wagerIDParam(r), body.Winners)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, public.WagerView(settled))
	}
}

func wagerCancelHandler(svc *wager.Service, adminKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ActorID string `json:"actor_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		current, err := svc.Get(r.Context(), wagerIDParam(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if !isAdmin(r, adminKey) && body.ActorID != current.CreatorID {
			writeHTTPError(w, http.StatusUnauthorized, "unauthorized", "only the creator or an admin can cancel")
			return
		}
		cancelled, err := svc.Cancel(r.Context(), current.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, public.WagerView(cancelled))
	}
}
