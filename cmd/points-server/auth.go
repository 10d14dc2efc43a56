package main

import (
	"crypto/subtle"
	"net/http"
)

const adminKeyHeader = "X-Admin-Key"

func adminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAdmin(r, adminKey) {
				writeHTTPError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isAdmin is false when no admin key is configured: admin surfaces stay
// closed rather than open.
func isAdmin(r *http.Request, adminKey string) bool {
	if adminKey == "" {
		return false
	}
	got := r.Header.Get(adminKeyHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1
}
