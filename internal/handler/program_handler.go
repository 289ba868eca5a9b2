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

// ProgramRequest is the JSON body for program create/update.
type ProgramRequest struct {
	Name     string          `json:"name"`
	Vehicles []model.Vehicle `json:"vehicles"`
}

// ProgramHandler manages fleets and their vehicles.
type ProgramHandler struct {
	programs *repository.ProgramRepository
}

// NewProgramHandler creates a new handler wired to the program repository.
func NewProgramHandler(programs *repository.ProgramRepository) *ProgramHandler {
	return &ProgramHandler{programs: programs}
}

// programError maps repository errors onto the API's status codes.
func programError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "program not found")
	case errors.Is(err, repository.ErrDuplicateName):
		writeError(w, http.StatusBadRequest, "duplicate_name", "a program with this name already exists")
	default:
		log.Printf("[handler] %s error: %v", action, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// ListPrograms handles GET /api/program
func (h *ProgramHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programs.List(r.Context())
	if err != nil {
		programError(w, err, "list programs")
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

// CreateProgram handles POST /api/program
//
// Vehicles without ids get fresh ones.
func (h *ProgramHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	for i := range req.Vehicles {
		if req.Vehicles[i].ID == "" {
			req.Vehicles[i].ID = model.NewID()
		}
	}

	program, err := h.programs.Create(r.Context(), model.NewProgram(req.Name, req.Vehicles))
	if err != nil {
		programError(w, err, "create program")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// GetProgram handles GET /api/program/{id}
func (h *ProgramHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.programs.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		programError(w, err, "get program")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// UpdateProgram handles PUT /api/program/{id}
func (h *ProgramHandler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	for i := range req.Vehicles {
		if req.Vehicles[i].ID == "" {
			req.Vehicles[i].ID = model.NewID()
		}
	}

	program, err := h.programs.Update(r.Context(), mux.Vars(r)["id"],
		&model.Program{Name: req.Name, Vehicles: req.Vehicles})
	if err != nil {
		programError(w, err, "update program")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// DeleteProgram handles DELETE /api/program/{id}
func (h *ProgramHandler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := h.programs.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		programError(w, err, "delete program")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "program deleted"})
}

// AddVehicle handles POST /api/program/{id}/vehicles
func (h *ProgramHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if vehicle.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "vehicle name is required")
		return
	}
	if vehicle.ID == "" {
		vehicle.ID = model.NewID()
	}

	program, err := h.programs.AddVehicle(r.Context(), mux.Vars(r)["id"], vehicle)
	if err != nil {
		programError(w, err, "add vehicle")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// UpdateVehicle handles PUT /api/program/{id}/vehicles/{vehicle_id}
func (h *ProgramHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	vars := mux.Vars(r)
	program, err := h.programs.UpdateVehicle(r.Context(), vars["id"], vars["vehicle_id"], vehicle)
	if err != nil {
		programError(w, err, "update vehicle")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// DeleteVehicle handles DELETE /api/program/{id}/vehicles/{vehicle_id}
func (h *ProgramHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	program, err := h.programs.DeleteVehicle(r.Context(), vars["id"], vars["vehicle_id"])
	if err != nil {
		programError(w, err, "delete vehicle")
		return
	}
	writeJSON(w, http.StatusOK, program)
}
