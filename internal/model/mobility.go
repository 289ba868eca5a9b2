package model

import "strings"

// MobilityAssistance is the assistance level a booking requires or a vehicle
// can carry. The string value is the short code used in shuttle names.
type MobilityAssistance string

const (
	Ambulatory MobilityAssistance = "AMBI"
	Wheelchair MobilityAssistance = "WC"
	Stretcher  MobilityAssistance = "GUR"
)

// Priority returns the allocation priority (0=highest, 2=lowest).
func (m MobilityAssistance) Priority() int {
	switch m {
	case Stretcher:
		return 0
	case Wheelchair:
		return 1
	default:
		return 2
	}
}

// Compatible reports whether a vehicle of this assistance level can serve a
// booking that needs `required`. Ambulatory passengers ride on anything;
// wheelchair and stretcher bookings need an exact match.
func (m MobilityAssistance) Compatible(required MobilityAssistance) bool {
	return m == required || required == Ambulatory
}

// ParseAssistance parses a single mobility assistance string. Both the long
// names and the short codes are accepted; anything unrecognized (including
// the empty string) is AMBULATORY.
func ParseAssistance(s string) MobilityAssistance {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STRETCHER", string(Stretcher):
		return Stretcher
	case "WHEELCHAIR", string(Wheelchair):
		return Wheelchair
	default:
		return Ambulatory
	}
}

// ParseAssistanceList parses a booking's mobility assistance tag list.
// The first non-AMBULATORY value wins; an empty or all-ambulatory list is
// AMBULATORY.
func ParseAssistanceList(tags []string) MobilityAssistance {
	for _, tag := range tags {
		if ma := ParseAssistance(tag); ma != Ambulatory {
			return ma
		}
	}
	return Ambulatory
}
