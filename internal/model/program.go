package model

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// idAlphabet matches the id shape the rest of the fleet tooling expects:
// 10-char alphanumeric.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID generates a 10-character alphanumeric identifier.
func NewID() string {
	return gonanoid.MustGenerate(idAlphabet, 10)
}

// Vehicle is a fleet member with a fixed mobility-assistance capability.
type Vehicle struct {
	ID                 string               `json:"id" bson:"id"`
	Name               string               `json:"name" bson:"name"`
	MobilityAssistance []MobilityAssistance `json:"mobility_assistance" bson:"mobility_assistance"`
	LicensePlate       *string              `json:"license_plate,omitempty" bson:"license_plate,omitempty"`
}

// Assistance returns the vehicle's effective assistance level: the highest
// priority (lowest ordinal) capability it carries.
func (v *Vehicle) Assistance() MobilityAssistance {
	best := Ambulatory
	for _, ma := range v.MobilityAssistance {
		if ma.Priority() < best.Priority() {
			best = ma
		}
	}
	return best
}

// Program is a named fleet. Names are unique across the store.
type Program struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Vehicles  []Vehicle `json:"vehicles" bson:"vehicles"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewProgram creates a program with a fresh id and timestamps.
func NewProgram(name string, vehicles []Vehicle) *Program {
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	now := time.Now().UTC()
	return &Program{
		ID:        NewID(),
		Name:      name,
		Vehicles:  vehicles,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
