package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/internal/repository"
)

// TaskHandler queues scheduling requests for the background processor and
// serves task state back to polling clients.
type TaskHandler struct {
	tasks *repository.TaskRepository
}

// NewTaskHandler creates a new handler wired to the task repository.
func NewTaskHandler(tasks *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTask handles POST /api/task
//
// Stores the request as a PENDING task and returns its id. The processor
// picks it up on its next tick.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var request model.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if request.Date == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "date is required")
		return
	}

	id, err := h.tasks.Create(r.Context(), request)
	if err != nil {
		log.Printf("[handler] create task error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create task")
		return
	}

	writeJSON(w, http.StatusOK, model.CreateTaskResponse{ID: id})
}

// GetTask handles GET /api/task/{id}
//
// Returns the full task, including the schedule response once the
// processor has completed it.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	task, err := h.tasks.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	if err != nil {
		log.Printf("[handler] get task error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}
