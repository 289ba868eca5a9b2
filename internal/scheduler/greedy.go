package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/pkg/routing"
	"github.com/transitly/scheduler/pkg/timeaddr"
)

// shuttleInfo is one vehicle being filled during a greedy run. Trips are
// appended in service order; the last trip determines when the vehicle is
// free again.
type shuttleInfo struct {
	idx   int // 1-based
	trips []*TripInfo
}

func newShuttleInfo(idx int, first *TripInfo) *shuttleInfo {
	return &shuttleInfo{idx: idx, trips: []*TripInfo{first}}
}

// Name is the vehicle label: index plus the first trip's assistance code.
func (s *shuttleInfo) Name() string {
	return fmt.Sprintf("%d%s", s.idx, s.trips[0].Assistance)
}

func (s *shuttleInfo) addTrip(trip *TripInfo) {
	s.trips = append(s.trips, trip)
}

func (s *shuttleInfo) lastTrip() *TripInfo {
	return s.trips[len(s.trips)-1]
}

func (s *shuttleInfo) toShuttle() model.Shuttle {
	trips := make([]model.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		trips = append(trips, trip.ToTrip())
	}
	return model.Shuttle{ShuttleName: s.Name(), Trips: trips}
}

// GreedyScheduler assigns trips one by one, highest assistance priority
// first, onto the vehicle with the best estimated arrival; a new vehicle
// is opened only when no existing one fits.
type GreedyScheduler struct {
	directions DirectionFinder
}

// NewGreedyScheduler builds a greedy scheduler over the given direction
// source.
func NewGreedyScheduler(directions DirectionFinder) *GreedyScheduler {
	return &GreedyScheduler{directions: directions}
}

// Calculate produces the plan for one request.
func (g *GreedyScheduler) Calculate(ctx context.Context, sctx *Context) ([]model.Shuttle, error) {
	trips, err := buildTrips(ctx, sctx, g.directions)
	if err != nil {
		return nil, err
	}
	markLastLeg(sctx, trips)
	buckets := priorityBuckets(sctx, trips)

	var plan []*shuttleInfo
	for _, bucket := range buckets {
		plan, err = g.scheduleTrips(ctx, sctx, plan, bucket)
		if err != nil {
			return nil, err
		}
	}

	shuttles := make([]model.Shuttle, 0, len(plan))
	for _, shuttle := range plan {
		shuttles = append(shuttles, shuttle.toShuttle())
	}
	return shuttles, nil
}

func (g *GreedyScheduler) scheduleTrips(ctx context.Context, sctx *Context, plan []*shuttleInfo, trips []*TripInfo) ([]*shuttleInfo, error) {
	for _, trip := range trips {
		sctx.Debugf("[Schedule]: %s", trip.Short())

		var bestShuttle *shuttleInfo
		var bestArrival time.Time
		haveBest := false

		for _, vehicle := range plan {
			arrival, fits, err := g.isTripFit(ctx, sctx, vehicle, trip)
			if err != nil {
				return nil, err
			}
			switch {
			case !fits:
				sctx.Debugf("  [NO]%s", vehicle.Name())
			case !haveBest:
				sctx.Debugf("  [ADD]%s", vehicle.Name())
				bestShuttle, bestArrival, haveBest = vehicle, arrival, true
			case isBetter(sctx, arrival, bestArrival, trip):
				sctx.Debugf("  [REFRESH]%s: arrival: %s, current: %s",
					vehicle.Name(), timeaddr.To12Hr(arrival), timeaddr.To12Hr(bestArrival))
				bestShuttle, bestArrival = vehicle, arrival
			default:
				sctx.Debugf("  [SKIP]%s: arrival: %s, current: %s",
					vehicle.Name(), timeaddr.To12Hr(arrival), timeaddr.To12Hr(bestArrival))
			}
		}

		if !haveBest {
			// No vehicle can take this trip; open a new one.
			bestShuttle = newShuttleInfo(len(plan)+1, trip)
			plan = append(plan, bestShuttle)
			if trip.IsLast {
				trip.EarliestArrivalTime = trip.PickupTime
			} else {
				trip.EarliestArrivalTime = trip.PickupTime.Add(-sctx.BeforePickup())
			}
			sctx.Debugf("[DECISION]new vehicle: %s # %s",
				bestShuttle.Name(), timeaddr.To12Hr(trip.EarliestArrivalTime))
		} else {
			bestShuttle.addTrip(trip)
			trip.EarliestArrivalTime = bestArrival
			sctx.Debugf("[DECISION]add to vehicle: %s # %s",
				bestShuttle.Name(), timeaddr.To12Hr(trip.EarliestArrivalTime))
		}

		// The vehicle never departs before the booked pickup.
		if !haveBest || bestArrival.Before(trip.PickupTime) {
			trip.AdjustedPickupTime = trip.PickupTime
		} else {
			trip.AdjustedPickupTime = bestArrival
		}
	}
	return plan, nil
}

// isTripFit estimates when the vehicle could reach the next trip's pickup.
// fits=false means the vehicle cannot take the trip: it finishes too late,
// arrives too late, or there is no route from its last dropoff. Errors
// other than a missing route abort the whole run.
func (g *GreedyScheduler) isTripFit(ctx context.Context, sctx *Context, shuttle *shuttleInfo, next *TripInfo) (time.Time, bool, error) {
	name := shuttle.Name()
	last := shuttle.lastTrip()

	if last.FinishTime().After(next.LatestPickupTime()) {
		sctx.Debugf("[NOFIT]%s - lastFinish: %s, latestPickup: %s",
			name, timeaddr.To12Hr(last.FinishTime()), timeaddr.To12Hr(next.LatestPickupTime()))
		return time.Time{}, false, nil
	}

	if last.DropoffAddress == next.PickupAddress {
		sctx.Debugf("[FIT]%s - same location", name)
		return last.FinishTime(), true, nil
	}

	direction, err := g.directions.Fetch(ctx, last.DropoffAddress, next.PickupAddress, last.FinishTime())
	if errors.Is(err, routing.ErrNoRoute) {
		sctx.Debugf("No routes found for the given query from %s to %s; skip.",
			last.DropoffAddress, next.PickupAddress)
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	arrival := last.FinishTime().Add(time.Duration(direction.DurationInSeconds) * time.Second)
	if arrival.After(next.LatestPickupTime()) {
		sctx.Debugf("[NOFIT]%s - estimateArrival: %s, latestPickup: %s",
			name, timeaddr.To12Hr(arrival), timeaddr.To12Hr(next.LatestPickupTime()))
		return time.Time{}, false, nil
	}

	sctx.Debugf("[FIT]%s - estimateArrival: %s, latestPickup: %s",
		name, timeaddr.To12Hr(arrival), timeaddr.To12Hr(next.LatestPickupTime()))
	return arrival, true, nil
}

// isBetter compares two candidate arrivals for a trip. Once the incumbent
// is past the acceptable window's start, earlier always wins; inside the
// window a later arrival wins because the passenger waits less.
func isBetter(sctx *Context, coming, current time.Time, trip *TripInfo) bool {
	if trip.IsLast {
		if current.After(trip.PickupTime) {
			return coming.Before(current)
		}
		return coming.After(current)
	}
	earlyArrival := trip.PickupTime.Add(-sctx.BeforePickup())
	if current.After(earlyArrival) {
		return coming.Before(current)
	}
	return coming.After(current)
}
