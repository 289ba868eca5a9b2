// Package scheduler is the scheduling engine: it turns a ScheduleRequest
// into a plan of shuttles, either with a greedy best-fit heuristic or with
// a constraint-programming formulation over a fixed fleet.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/model"
)

// ErrNoSchedule means the CP solver terminated without a feasible plan.
// Clients see it as a ScheduleResponse error envelope, not a transport
// failure.
var ErrNoSchedule = errors.New("no feasible schedule")

// ErrBadInput marks request data the engine cannot work with, like an
// unparsable date or an address with no known timezone.
var ErrBadInput = errors.New("bad input")

// DirectionFinder resolves travel distance/duration between two addresses.
// Satisfied by service.DirectionService; tests plug in fakes.
type DirectionFinder interface {
	Fetch(ctx context.Context, origin, destination string, departAt time.Time) (model.Direction, error)
}

// ProgramStore loads the fleet the CP scheduler assigns onto.
type ProgramStore interface {
	GetByName(ctx context.Context, name string) (*model.Program, error)
}

// Context carries one request's scheduling configuration: the request
// itself plus the environment defaults for anything it does not override.
type Context struct {
	request   *model.ScheduleRequest
	defaults  config.SchedulerConfig
	debugMode bool
}

// NewContext builds the per-request context.
func NewContext(request *model.ScheduleRequest, defaults config.SchedulerConfig, debugMode bool) *Context {
	return &Context{request: request, defaults: defaults, debugMode: debugMode}
}

// DateStr returns the request's "Month Day, Year" date.
func (c *Context) DateStr() string { return c.request.Date }

// IsDebug reports whether fit/reject decisions should be logged.
func (c *Context) IsDebug() bool {
	if c.request.Debug != nil {
		return *c.request.Debug
	}
	return c.debugMode
}

// Debugf logs a scheduling decision when debug output is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.IsDebug() {
		log.Printf("[schedule] "+format, args...)
	}
}

// BeforePickup is how much earlier than the booked pickup the driver may
// arrive for an outgoing trip.
func (c *Context) BeforePickup() time.Duration {
	if c.request.BeforePickupTime != nil {
		return time.Duration(*c.request.BeforePickupTime) * time.Second
	}
	return c.defaults.BeforePickup
}

// AfterPickup is how much later than the booked pickup the driver may
// arrive for a passenger's last trip of the day.
func (c *Context) AfterPickup() time.Duration {
	if c.request.AfterPickupTime != nil {
		return time.Duration(*c.request.AfterPickupTime) * time.Second
	}
	return c.defaults.AfterPickup
}

// DropoffUnloading is the extra time a trip occupies its vehicle after
// dropoff.
func (c *Context) DropoffUnloading() time.Duration {
	if c.request.DropoffUnloadingTime != nil {
		return time.Duration(*c.request.DropoffUnloadingTime) * time.Second
	}
	return c.defaults.DropoffUnloading
}
