package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/internal/scheduler"
	"github.com/transitly/scheduler/internal/service"
)

// ScheduleHandler runs scheduling requests synchronously.
type ScheduleHandler struct {
	scheduler *scheduler.Service
}

// NewScheduleHandler creates a new handler wired to the scheduling service.
func NewScheduleHandler(svc *scheduler.Service) *ScheduleHandler {
	return &ScheduleHandler{scheduler: svc}
}

// Schedule handles POST /api/schedule
//
// Computes a plan for the request body and returns the ScheduleResponse
// envelope. An infeasible CP model is a 200 with an error envelope, not an
// HTTP error; bad input and routing failures are 400.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var request model.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if request.Date == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "date is required")
		return
	}

	response, err := h.scheduler.Schedule(r.Context(), &request)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrBadInput):
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, service.ErrNoRoute):
			writeError(w, http.StatusBadRequest, "no_route", err.Error())
		case errors.Is(err, service.ErrProvider):
			writeError(w, http.StatusBadRequest, "provider_error", err.Error())
		default:
			log.Printf("[handler] schedule error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "scheduling failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, response)
}
