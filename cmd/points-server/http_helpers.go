package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nexus-points/internal/app/public"
	"nexus-points/internal/store"
	"nexus-points/internal/wager"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTTPError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"error": code}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeEngineError maps typed engine failures to stable wire codes plus the
// facade's chat-facing message.
func writeEngineError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := ""
	if status < http.StatusInternalServerError {
		msg = public.UserMessage(err)
	}
	writeHTTPError(w, status, code, msg)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, wager.ErrInvalidOutcome):
		return http.StatusBadRequest, "invalid_outcome"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, public.ErrInvalidRequest),
		errors.Is(err, wager.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func parsePagination(r *http.Request) (int, int) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json", "")
		return false
	}
	return true
}
