package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/transitly/scheduler/internal/cpsolver"
	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/internal/repository"
	"github.com/transitly/scheduler/pkg/routing"
)

// CPScheduler formulates the request as a constraint model over a fixed
// fleet: assignment literals per vehicle/trip pair, start-time variables in
// minutes of the day, compatibility and non-overlap constraints, and an
// objective chosen by the request's optimization block.
type CPScheduler struct {
	directions DirectionFinder
	programs   ProgramStore
	budget     time.Duration
}

// NewCPScheduler builds a CP scheduler. budget caps the solver's search.
func NewCPScheduler(directions DirectionFinder, programs ProgramStore, budget time.Duration) *CPScheduler {
	return &CPScheduler{directions: directions, programs: programs, budget: budget}
}

// fleet loads the program's vehicles: the request's program name, falling
// back to the first booking's. An unknown program is an empty fleet, not an
// error, mirroring how an over-constrained model comes out infeasible.
func (c *CPScheduler) fleet(ctx context.Context, sctx *Context) ([]model.Vehicle, error) {
	programName := ""
	if sctx.request.ProgramName != nil {
		programName = *sctx.request.ProgramName
	}
	if programName == "" {
		for _, booking := range sctx.request.Bookings {
			programName = booking.ProgramName
			break
		}
	}
	if programName == "" {
		sctx.Debugf("no program name found")
		return nil, nil
	}

	program, err := c.programs.GetByName(ctx, programName)
	if errors.Is(err, repository.ErrNotFound) {
		sctx.Debugf("program %s not found", programName)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load program %s: %w", programName, err)
	}

	sctx.Debugf("found program %s with %d vehicles", programName, len(program.Vehicles))
	return program.Vehicles, nil
}

// minutesOfDay converts an instant to minutes past midnight in its own
// location.
func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// tripAfter orders trips by pickup time, breaking ties by booking id.
func tripAfter(a, b *TripInfo) bool {
	if a.PickupTime.Equal(b.PickupTime) {
		return a.Booking.BookingID > b.Booking.BookingID
	}
	return a.PickupTime.After(b.PickupTime)
}

// Calculate solves the assignment and returns the plan, or ErrNoSchedule
// when the model has no feasible solution within the budget.
func (c *CPScheduler) Calculate(ctx context.Context, sctx *Context) ([]model.Shuttle, error) {
	vehicles, err := c.fleet(ctx, sctx)
	if err != nil {
		return nil, err
	}

	trips, err := buildTrips(ctx, sctx, c.directions)
	if err != nil {
		return nil, err
	}
	markLastLeg(sctx, trips)

	optimization := model.Optimization{}
	if sctx.request.Optimization != nil {
		optimization = *sctx.request.Optimization
	}

	numVehicles, numTrips := len(vehicles), len(trips)
	m := cpsolver.NewModel()

	// x[i][j]: vehicle i serves trip j.
	x := make([][]cpsolver.BoolVar, numVehicles)
	for i := range x {
		x[i] = make([]cpsolver.BoolVar, numTrips)
		for j := range x[i] {
			x[i][j] = m.NewBoolVar()
		}
	}

	used := make([]cpsolver.BoolVar, numVehicles)
	for i := range used {
		used[i] = m.NewBoolVar()
	}

	// start[i][j]: minutes past midnight when vehicle i begins trip j.
	start := make([][]cpsolver.IntVar, numVehicles)
	for i := range start {
		start[i] = make([]cpsolver.IntVar, numTrips)
		for j := range start[i] {
			start[i][j] = m.NewIntVar(0, 24*60)
		}
	}

	// Each trip goes to exactly one vehicle. With an empty fleet and at
	// least one trip this group is empty and the model infeasible.
	for j := 0; j < numTrips; j++ {
		group := make([]cpsolver.BoolVar, 0, numVehicles)
		for i := 0; i < numVehicles; i++ {
			group = append(group, x[i][j])
		}
		m.AddExactlyOne(group...)
	}

	for i := 0; i < numVehicles; i++ {
		assistance := vehicles[i].Assistance()
		for j := 0; j < numTrips; j++ {
			// An assignment marks the vehicle used.
			m.AddImplication(x[i][j], used[i])

			// Capability filter.
			if !assistance.Compatible(trips[j].Assistance) {
				m.FixFalse(x[i][j])
			}

			// The trip must start by its booked pickup.
			m.AddUpperBoundIf(start[i][j], minutesOfDay(trips[j].PickupTime), x[i][j])
		}
	}

	// Non-overlap: when the same vehicle serves two trips, the later one
	// starts no earlier than the earlier one's service plus the travel
	// between them. Pairs are ordered by pickup time with a booking-id
	// tie-break so exactly one direction is constrained. A missing route
	// between two trips just drops the pair's ordering constraint.
	for a := 0; a < numTrips; a++ {
		for b := a + 1; b < numTrips; b++ {
			j1, j2 := a, b
			if tripAfter(trips[j1], trips[j2]) {
				j1, j2 = j2, j1
			}
			finishJ1 := minutesOfDay(trips[j1].FinishTime())
			latestJ2 := minutesOfDay(trips[j2].LatestPickupTime())
			if latestJ2 <= finishJ1 {
				continue
			}

			travelSec := 0
			if trips[j1].DropoffAddress != trips[j2].PickupAddress {
				direction, err := c.directions.Fetch(ctx,
					trips[j1].DropoffAddress, trips[j2].PickupAddress, trips[j1].FinishTime())
				if errors.Is(err, routing.ErrNoRoute) {
					sctx.Debugf("no route from %s to %s; dropping ordering constraint",
						trips[j1].DropoffAddress, trips[j2].PickupAddress)
					continue
				}
				if err != nil {
					return nil, err
				}
				travelSec = direction.DurationInSeconds
			}

			serviceMinutes := (trips[j1].DurationInSec + int(sctx.DropoffUnloading().Seconds()) + travelSec + 59) / 60
			for i := 0; i < numVehicles; i++ {
				m.AddDifferenceIf(start[i][j2], start[i][j1], serviceMinutes, x[i][j1], x[i][j2])
			}
		}
	}

	if optimization.ChainBookingsForSamePassenger {
		for j1 := 0; j1 < numTrips; j1++ {
			for j2 := j1 + 1; j2 < numTrips; j2++ {
				if trips[j1].Passenger != trips[j2].Passenger {
					continue
				}
				for i := 0; i < numVehicles; i++ {
					m.AddEquality(x[i][j1], x[i][j2])
				}
			}
		}
	}

	switch {
	case optimization.MinimizeTotalDuration:
		// Sum over vehicles of (last finish - first pickup) among its trips.
		m.MinimizeLeafFunc(func(truth func(cpsolver.BoolVar) bool) int {
			total := 0
			for i := 0; i < numVehicles; i++ {
				first, last := -1, -1
				for j := 0; j < numTrips; j++ {
					if !truth(x[i][j]) {
						continue
					}
					pickup := minutesOfDay(trips[j].PickupTime)
					finish := minutesOfDay(trips[j].FinishTime())
					if first < 0 || pickup < first {
						first = pickup
					}
					if finish > last {
						last = finish
					}
				}
				if first >= 0 {
					total += last - first
				}
			}
			return total
		})
	default:
		m.MinimizeBoolSum(used...)
	}

	result, err := m.Solve(c.budget)
	if err != nil {
		return nil, err
	}
	if result.Status != cpsolver.Optimal && result.Status != cpsolver.Feasible {
		return nil, fmt.Errorf("%w: solver status %s", ErrNoSchedule, result.Status)
	}
	sctx.Debugf("solution found, status: %s", result.Status)

	return extractShuttles(sctx, vehicles, trips, x, used, result), nil
}

// extractShuttles turns the solved assignment into the emitted plan. Trips
// keep their booked pickup times; the start variables only prove the
// sequencing is feasible. The vehicle's assistance code goes out as the
// shuttle's wheelchair field.
func extractShuttles(sctx *Context, vehicles []model.Vehicle, trips []*TripInfo,
	x [][]cpsolver.BoolVar, used []cpsolver.BoolVar, result *cpsolver.Result) []model.Shuttle {

	shuttles := make([]model.Shuttle, 0, len(vehicles))
	for i := range vehicles {
		if !result.BoolValue(used[i]) {
			continue
		}

		var assigned []*TripInfo
		for j := range trips {
			if result.BoolValue(x[i][j]) {
				assigned = append(assigned, trips[j])
			}
		}
		if len(assigned) == 0 {
			continue
		}

		sort.Slice(assigned, func(a, b int) bool {
			return assigned[a].PickupTime.Before(assigned[b].PickupTime)
		})

		modelTrips := make([]model.Trip, 0, len(assigned))
		for _, trip := range assigned {
			modelTrips = append(modelTrips, trip.ToTrip())
		}

		vehicle := vehicles[i]
		wheelchair := string(vehicle.Assistance())
		shuttle := model.Shuttle{
			ShuttleName:         vehicle.Name,
			ShuttleID:           &vehicle.ID,
			ShuttleLicensePlate: vehicle.LicensePlate,
			ShuttleWheelchair:   &wheelchair,
			Trips:               modelTrips,
		}
		sctx.Debugf("  %s: %d trips", shuttle.ShuttleName, len(shuttle.Trips))
		shuttles = append(shuttles, shuttle)
	}
	return shuttles
}
