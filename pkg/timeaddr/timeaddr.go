// Package timeaddr resolves booking dates, clock times and US street
// addresses into timezone-aware instants.
//
// Addresses are free-form strings whose trailing token is a ZIP code; the
// ZIP is mapped to an IANA timezone through an embedded state-range table.
package timeaddr

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

//go:embed timezones.json
var timezoneJSON []byte

// zoneEntry is one row of the embedded ZIP-range table.
type zoneEntry struct {
	StateCode    string `json:"stateCode"`
	State        string `json:"state"`
	ZipcodeStart int    `json:"zipcodeStart"`
	ZipcodeEnd   int    `json:"zipcodeEnd"`
	TimezoneID   string `json:"timezoneId"`
}

var (
	zoneOnce  sync.Once
	zoneTable []zoneEntry
)

func lookupZip(zip string) (zoneEntry, bool) {
	zoneOnce.Do(func() {
		// The table ships with the binary; a decode failure is a build
		// defect, not a runtime condition.
		if err := json.Unmarshal(timezoneJSON, &zoneTable); err != nil {
			panic(fmt.Sprintf("timeaddr: bad embedded timezone table: %v", err))
		}
	})

	n, err := strconv.Atoi(strings.TrimSpace(zip))
	if err != nil {
		return zoneEntry{}, false
	}
	for _, e := range zoneTable {
		if e.ZipcodeStart <= n && n <= e.ZipcodeEnd {
			return e, true
		}
	}
	return zoneEntry{}, false
}

// TimezoneForZip returns the IANA timezone id for a ZIP code.
func TimezoneForZip(zip string) (string, bool) {
	e, ok := lookupZip(zip)
	if !ok {
		return "", false
	}
	return e.TimezoneID, true
}

// StateCodeForZip returns the two-letter state code for a ZIP code.
func StateCodeForZip(zip string) (string, bool) {
	e, ok := lookupZip(zip)
	if !ok {
		return "", false
	}
	return e.StateCode, true
}

// TimezoneForAddress extracts the trailing ZIP token of a free-form address
// and returns its timezone id.
func TimezoneForAddress(address string) (string, bool) {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return "", false
	}
	return TimezoneForZip(fields[len(fields)-1])
}

// AddressLine formats a street/city/zip triple, inserting the state code
// when the ZIP resolves to one.
func AddressLine(street, city, zip string) string {
	if code, ok := StateCodeForZip(zip); ok {
		return fmt.Sprintf("%s, %s, %s %s", street, city, code, zip)
	}
	return fmt.Sprintf("%s, %s, %s", street, city, zip)
}

// Resolve combines a date ("Month Day, Year"), a clock time ("HH:MM") and a
// street address into an instant in the address's local timezone.
func Resolve(dateStr, clockStr, address string) (time.Time, error) {
	tzID, ok := TimezoneForAddress(address)
	if !ok {
		return time.Time{}, fmt.Errorf("timeaddr: could not get timezone ID for %q", address)
	}
	return InZone(dateStr, clockStr, tzID)
}

// InZone combines a date ("Month Day, Year") and a clock time ("HH:MM")
// into an instant in the given IANA timezone.
func InZone(dateStr, clockStr, tzID string) (time.Time, error) {
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeaddr: load timezone %q: %w", tzID, err)
	}

	base, err := time.Parse("January 2, 2006", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeaddr: invalid date %q: %w", dateStr, err)
	}

	hhmm := strings.SplitN(clockStr, ":", 2)
	if len(hhmm) != 2 {
		return time.Time{}, fmt.Errorf("timeaddr: invalid time %q", clockStr)
	}
	hours, err := strconv.Atoi(hhmm[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("timeaddr: invalid time %q: %w", clockStr, err)
	}
	minutes, err := strconv.Atoi(hhmm[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("timeaddr: invalid time %q: %w", clockStr, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("timeaddr: time %q out of range", clockStr)
	}

	return time.Date(base.Year(), base.Month(), base.Day(), hours, minutes, 0, 0, loc), nil
}

// To12Hr formats an instant as "hh:mm AM/PM" in its own location.
func To12Hr(t time.Time) string {
	return t.Format("03:04 PM")
}

// To24Hr formats an instant as "HH:MM" in its own location.
func To24Hr(t time.Time) string {
	return t.Format("15:04")
}
