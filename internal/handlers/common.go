package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// hashToken creates a SHA256 hash of a token so comparisons run on fixed
// length values
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check all dependencies
	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		err := check(ctx)
		checks[name] = err == nil
		if err != nil {
			allHealthy = false
			h.logger.Warnw("Readiness check failed", "check", name, "error", err)
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	queueDepth := 0
	if h.events != nil {
		queueDepth = h.events.QueueDepth()
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": queueDepth,
	})
}

// ServerAuthMiddleware validates the game add-on token
func (h *Handler) ServerAuthMiddleware(next http.Handler) http.Handler {
	return h.tokenMiddleware("X-Server-Token", h.serverToken, "server", next)
}

// AdminAuthMiddleware validates the admin token
func (h *Handler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return h.tokenMiddleware("X-Admin-Token", h.adminToken, "admin", next)
}

func (h *Handler) tokenMiddleware(header, want, kind string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(header)
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}

		if token == "" {
			// DO NOT call r.FormValue here as it consumes the body
			h.errorResponse(w, http.StatusUnauthorized, "Missing "+kind+" token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(want)) != 1 {
			h.logger.Warnw("Rejected token", "kind", kind, "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid "+kind+" token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorw("Failed to encode response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
