// Package handler contains HTTP request handlers for the scheduling API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	checkDB    func(ctx context.Context) error
	checkCache func(ctx context.Context) error
}

// NewHealthHandler creates a health handler; either check may be nil
// (checkCache is nil when the Redis fast path is disabled).
func NewHealthHandler(checkDB, checkCache func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{checkDB: checkDB, checkCache: checkCache}
}

// Health handles GET /api/health
//
// Returns 200 while the process is serving; the message reflects whether
// the backing stores answer their pings.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var down []string
	if h.checkDB != nil {
		if err := h.checkDB(r.Context()); err != nil {
			down = append(down, "database")
		}
	}
	if h.checkCache != nil {
		if err := h.checkCache(r.Context()); err != nil {
			down = append(down, "cache")
		}
	}

	message := "Service is healthy."
	if len(down) > 0 {
		message = "Service is up; unreachable: " + strings.Join(down, ", ") + "."
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"status":  "OK",
	})
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the standard {error, message} error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
