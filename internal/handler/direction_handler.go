package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/transitly/scheduler/internal/service"
)

// DirectionHandler exposes the direction cache for ad-hoc lookups.
type DirectionHandler struct {
	directions *service.DirectionService
}

// NewDirectionHandler creates a new handler wired to the direction service.
func NewDirectionHandler(directions *service.DirectionService) *DirectionHandler {
	return &DirectionHandler{directions: directions}
}

// GetDirection handles GET /api/direction?from=…&to=…
//
// Returns the cached or freshly fetched travel data for the pair.
// Provider-side failures (no route, remote error) are 400; anything else
// is 500.
func (h *DirectionHandler) GetDirection(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query parameters 'from' and 'to' are required")
		return
	}

	direction, err := h.directions.Fetch(r.Context(), from, to, time.Time{})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRoute):
			writeError(w, http.StatusBadRequest, "no_route", err.Error())
		case errors.Is(err, service.ErrProvider):
			writeError(w, http.StatusBadRequest, "provider_error", err.Error())
		default:
			log.Printf("[handler] direction error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to fetch direction")
		}
		return
	}

	writeJSON(w, http.StatusOK, direction)
}
