package timeaddr

import (
	"testing"
	"time"
)

func TestResolve_ManhattanZip(t *testing.T) {
	got, err := Resolve("January 1, 2024", "08:00", "350 5th Ave, New York, NY 10001")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Location().String() != "America/New_York" {
		t.Errorf("Resolve location = %s, want America/New_York", got.Location())
	}
	if To24Hr(got) != "08:00" {
		t.Errorf("To24Hr = %q, want 08:00", To24Hr(got))
	}
}

func TestResolve_WestCoastInstant(t *testing.T) {
	east, err := Resolve("June 1, 2024", "09:00", "1 Main St, New York, NY 10001")
	if err != nil {
		t.Fatalf("east Resolve: %v", err)
	}
	west, err := Resolve("June 1, 2024", "09:00", "1 Main St, Los Angeles, CA 90012")
	if err != nil {
		t.Fatalf("west Resolve: %v", err)
	}
	// Same wall clock, three hours apart as instants.
	if d := west.Sub(east); d != 3*time.Hour {
		t.Errorf("west-east offset = %v, want 3h", d)
	}
}

func TestResolve_UnknownZip(t *testing.T) {
	if _, err := Resolve("January 1, 2024", "08:00", "somewhere 00000"); err == nil {
		t.Error("Resolve with unmapped ZIP should fail")
	}
}

func TestInZone_BadInputs(t *testing.T) {
	cases := []struct {
		name, date, clock string
	}{
		{"bad date", "Janry 1, 2024", "08:00"},
		{"bad clock", "January 1, 2024", "8am"},
		{"hour out of range", "January 1, 2024", "25:00"},
	}
	for _, tc := range cases {
		if _, err := InZone(tc.date, tc.clock, "America/New_York"); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestTimezoneForZip(t *testing.T) {
	cases := []struct {
		zip  string
		want string
	}{
		{"10001", "America/New_York"},
		{"60601", "America/Chicago"},
		{"90210", "America/Los_Angeles"},
		{"85001", "America/Phoenix"},
	}
	for _, tc := range cases {
		got, ok := TimezoneForZip(tc.zip)
		if !ok || got != tc.want {
			t.Errorf("TimezoneForZip(%s) = %q, %v; want %q", tc.zip, got, ok, tc.want)
		}
	}
}

func TestAddressLine(t *testing.T) {
	got := AddressLine("350 5th Ave", "New York", "10001")
	want := "350 5th Ave, New York, NY 10001"
	if got != want {
		t.Errorf("AddressLine = %q, want %q", got, want)
	}

	got = AddressLine("1 Foo St", "Nowhere", "00000")
	want = "1 Foo St, Nowhere, 00000"
	if got != want {
		t.Errorf("AddressLine (unmapped) = %q, want %q", got, want)
	}
}

func TestFormats(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	at := time.Date(2024, 6, 1, 17, 5, 0, 0, loc)
	if To24Hr(at) != "17:05" {
		t.Errorf("To24Hr = %q, want 17:05", To24Hr(at))
	}
	if To12Hr(at) != "05:05 PM" {
		t.Errorf("To12Hr = %q, want 05:05 PM", To12Hr(at))
	}
}
