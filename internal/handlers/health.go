package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandlers serves liveness and readiness endpoints for the sync daemon.
type HealthHandlers struct {
	startedAt time.Time
	ready     func() bool
}

// NewHealthHandlers constructs health handlers. ready may be nil, in which
// case the daemon reports ready as soon as it serves traffic.
func NewHealthHandlers(ready func() bool) *HealthHandlers {
	return &HealthHandlers{
		startedAt: time.Now().UTC(),
		ready:     ready,
	}
}

// Healthz responds with a simple status payload for liveness checks.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the daemon is ready to run synchronizations.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
