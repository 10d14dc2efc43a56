package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"nexus-points/internal/accrual"
	"nexus-points/internal/ledger"
	"nexus-points/internal/store"
)

// inboundEvent is the transport's envelope: a closed set of kinds validated
// here before anything reaches the engine. event_id doubles as the
// idempotency key, so at-least-once delivery never repeats a financial
// effect.
type inboundEvent struct {
	ActorID string          `json:"actor_id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	EventID string          `json:"event_id"`
}

func eventsHandler(acc *accrual.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev inboundEvent
		if !decodeBody(w, r, &ev) {
			return
		}
		ev.ActorID = strings.TrimSpace(ev.ActorID)
		if ev.ActorID == "" || ev.EventID == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		switch ev.Kind {
		case "message":
			res, err := acc.HandleActivity(r.Context(), ev.ActorID, ev.EventID)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			writeJSON(w, map[string]any{"ok": true, "credited": res.Credited, "amount": res.Amount})
		default:
			writeHTTPError(w, http.StatusBadRequest, "invalid_request", "unknown event kind")
		}
	}
}

func transferHandler(led *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			From    string `json:"from"`
			To      string `json:"to"`
			Amount  int64  `json:"amount"`
			EventID string `json:"event_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.From == "" || body.To == "" || body.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		err := led.Gift(r.Context(), body.From, body.To, body.Amount, body.EventID)
		if errors.Is(err, store.ErrDuplicateEvent) {
			// redelivery of an applied transfer, ack without re-applying
			writeJSON(w, map[string]any{"ok": true, "duplicate": true})
			return
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}
