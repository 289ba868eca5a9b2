package scheduler

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/transitly/scheduler/internal/model"
)

func TestTripShort_MultibyteInitials(t *testing.T) {
	a, b := nycAddr("1 A"), nycAddr("2 B")
	routes := map[string]model.Direction{}
	k, d := route(a, b, 600)
	routes[k] = d

	bk := booking("b1", "p1", "09:00", a, b)
	bk.PassengerFirstname = "Éloise"
	bk.PassengerLastname = "Østberg"

	request := &model.ScheduleRequest{
		Date:     "June 1, 2024",
		Bookings: []model.Booking{bk},
	}
	sctx := NewContext(request, testDefaults(), false)

	trips, err := buildTrips(context.Background(), sctx, &fakeDirections{routes: routes})
	if err != nil {
		t.Fatalf("buildTrips: %v", err)
	}

	short := trips[0].Short()
	if !utf8.ValidString(short) {
		t.Fatalf("Short() = %q, not valid UTF-8", short)
	}
	if !strings.Contains(short, "É.Ø") {
		t.Errorf("Short() = %q, want initials É.Ø", short)
	}
}
