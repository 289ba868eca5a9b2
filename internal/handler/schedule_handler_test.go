package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/internal/repository"
	"github.com/transitly/scheduler/internal/scheduler"
	"github.com/transitly/scheduler/pkg/routing"
)

type stubDirections struct {
	routes map[string]model.Direction
}

func (s *stubDirections) Fetch(_ context.Context, origin, destination string, _ time.Time) (model.Direction, error) {
	if d, ok := s.routes[model.DirectionKey(origin, destination)]; ok {
		return d, nil
	}
	return model.Direction{}, routing.ErrNoRoute
}

type stubPrograms struct{}

func (stubPrograms) GetByName(context.Context, string) (*model.Program, error) {
	return nil, repository.ErrNotFound
}

func newTestScheduleHandler(routes map[string]model.Direction) *ScheduleHandler {
	defaults := config.SchedulerConfig{
		BeforePickup:     5 * time.Minute,
		AfterPickup:      5 * time.Minute,
		DropoffUnloading: 5 * time.Minute,
		SolverTimeout:    time.Second,
	}
	svc := scheduler.NewService(&stubDirections{routes: routes}, stubPrograms{}, defaults, false)
	return NewScheduleHandler(svc)
}

func postSchedule(t *testing.T, h *ScheduleHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Schedule(rec, req)
	return rec
}

func TestSchedule_InvalidJSON(t *testing.T) {
	rec := postSchedule(t, newTestScheduleHandler(nil), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSchedule_MissingDate(t *testing.T) {
	rec := postSchedule(t, newTestScheduleHandler(nil), `{"bookings":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSchedule_NoRouteIs400(t *testing.T) {
	body := `{
		"date": "June 1, 2024",
		"bookings": [{
			"booking_id": "b1",
			"passenger_id": "p1",
			"pickup_time": "09:00",
			"pickup_address": "1 A St, New York, NY 10001",
			"dropoff_address": "2 B St, New York, NY 10001",
			"mobility_assistance": []
		}]
	}`
	rec := postSchedule(t, newTestScheduleHandler(nil), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (no route)", rec.Code)
	}

	var errBody map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] != "no_route" {
		t.Errorf("error = %q, want no_route", errBody["error"])
	}
}

func TestSchedule_Success(t *testing.T) {
	from := "1 A St, New York, NY 10001"
	to := "2 B St, New York, NY 10001"
	routes := map[string]model.Direction{
		model.DirectionKey(from, to): {DistanceInMeter: 5000, DurationInSeconds: 600},
	}
	body := `{
		"date": "June 1, 2024",
		"bookings": [{
			"booking_id": "b1",
			"passenger_id": "p1",
			"pickup_time": "09:00",
			"pickup_address": "` + from + `",
			"dropoff_address": "` + to + `",
			"mobility_assistance": []
		}]
	}`
	rec := postSchedule(t, newTestScheduleHandler(routes), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var response model.ScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Result.Status != "success" {
		t.Errorf("Status = %q, want success", response.Result.Status)
	}
	if got := len(response.Result.Data.VehicleTripList); got != 1 {
		t.Errorf("shuttles = %d, want 1", got)
	}
}
