package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/pkg/timeaddr"
)

// TripInfo is the engine's internal, time-resolved view of one booking
// with routing data attached. The input booking is copied, never mutated;
// scheduled times are written onto the copy when the output trip is built.
type TripInfo struct {
	ctx     *Context
	Booking model.Booking // owned copy

	PickupAddress  string
	DropoffAddress string
	Passenger      string
	Assistance     model.MobilityAssistance

	PickupTime      time.Time
	DistanceInMeter int
	DurationInSec   int

	IsLast              bool
	AdjustedPickupTime  time.Time // zero until the scheduler places the trip
	EarliestArrivalTime time.Time
}

// buildTrips converts the request's bookings into trip records: resolve
// the pickup instant in the pickup address's timezone, fetch the leg's
// travel data, and seed the earliest-arrival window. A booking whose own
// leg has no route aborts the whole request.
func buildTrips(ctx context.Context, sctx *Context, directions DirectionFinder) ([]*TripInfo, error) {
	trips := make([]*TripInfo, 0, len(sctx.request.Bookings))
	for i := range sctx.request.Bookings {
		booking := sctx.request.Bookings[i] // copy

		pickupTime, err := timeaddr.Resolve(sctx.DateStr(), booking.PickupTime, booking.PickupAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: booking %s: %v", ErrBadInput, booking.BookingID, err)
		}

		direction, err := directions.Fetch(ctx, booking.PickupAddress, booking.DropoffAddress, pickupTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s (%s -> %s): %w",
				booking.BookingID, booking.PickupAddress, booking.DropoffAddress, err)
		}

		// Record the leg's travel data on the output copy.
		travelTime := direction.DurationInSeconds
		travelDistance := float64(direction.DistanceInMeter)
		booking.TravelTime = &travelTime
		booking.TravelDistance = &travelDistance

		trips = append(trips, &TripInfo{
			ctx:                 sctx,
			Booking:             booking,
			PickupAddress:       booking.PickupAddress,
			DropoffAddress:      booking.DropoffAddress,
			Passenger:           booking.Passenger(),
			Assistance:          model.ParseAssistanceList(booking.MobilityAssistance),
			PickupTime:          pickupTime,
			DistanceInMeter:     direction.DistanceInMeter,
			DurationInSec:       direction.DurationInSeconds,
			EarliestArrivalTime: pickupTime.Add(-sctx.BeforePickup()),
		})
	}
	return trips, nil
}

// markLastLeg sorts trips chronologically and, for each passenger with
// two or more trips on the day, marks the chronologically latest as the
// last leg (it may be delayed by AfterPickup) and pins the first leg's
// earliest arrival to its booked pickup (no pre-arrival on the first leg
// of a multi-leg day).
func markLastLeg(sctx *Context, trips []*TripInfo) {
	sort.SliceStable(trips, func(i, j int) bool {
		if trips[i].PickupTime.Equal(trips[j].PickupTime) {
			return trips[i].Booking.BookingID < trips[j].Booking.BookingID
		}
		return trips[i].PickupTime.Before(trips[j].PickupTime)
	})

	byPassenger := make(map[string][]*TripInfo)
	for _, trip := range trips {
		byPassenger[trip.Passenger] = append(byPassenger[trip.Passenger], trip)
	}

	for _, passengerTrips := range byPassenger {
		if len(passengerTrips) < 2 {
			continue
		}
		passengerTrips[len(passengerTrips)-1].IsLast = true
		passengerTrips[0].EarliestArrivalTime = passengerTrips[0].PickupTime
	}

	sctx.Debugf("converted %d trips:", len(trips))
	for idx, trip := range trips {
		sctx.Debugf("%d %s", idx, trip.Short())
	}
}

// priorityBuckets partitions trips by assistance priority:
// stretcher, wheelchair, ambulatory.
func priorityBuckets(sctx *Context, trips []*TripInfo) [3][]*TripInfo {
	var buckets [3][]*TripInfo
	for _, trip := range trips {
		p := trip.Assistance.Priority()
		buckets[p] = append(buckets[p], trip)
	}
	sctx.Debugf("priority trips: 0: %d, 1: %d, 2: %d",
		len(buckets[0]), len(buckets[1]), len(buckets[2]))
	return buckets
}

// LatestPickupTime is the latest time the vehicle may still begin this
// trip: last legs tolerate the configured delay, everything else must not
// slip past the booked pickup.
func (t *TripInfo) LatestPickupTime() time.Time {
	if t.IsLast {
		return t.PickupTime.Add(t.ctx.AfterPickup())
	}
	return t.PickupTime
}

// effectivePickup is the scheduled pickup: the adjusted time once the
// scheduler has placed the trip, otherwise the booked pickup.
func (t *TripInfo) effectivePickup() time.Time {
	if !t.AdjustedPickupTime.IsZero() {
		return t.AdjustedPickupTime
	}
	return t.PickupTime
}

// DropoffTime is the scheduled dropoff.
func (t *TripInfo) DropoffTime() time.Time {
	return t.effectivePickup().Add(time.Duration(t.DurationInSec) * time.Second)
}

// FinishTime is when the vehicle is free again, including unloading.
func (t *TripInfo) FinishTime() time.Time {
	return t.DropoffTime().Add(t.ctx.DropoffUnloading())
}

// Short is the compact debug form: booking id, booked pickup, passenger
// initials, assistance code, addresses, and the [L] last-leg marker.
func (t *TripInfo) Short() string {
	shortAddr := func(addr string) string {
		return strings.SplitN(addr, ",", 2)[0]
	}
	initial := func(s string) string {
		// First rune, not first byte: names are not always ASCII.
		for _, r := range s {
			return string(r)
		}
		return ""
	}

	book := fmt.Sprintf("%s %s", t.Booking.BookingID, t.Booking.PickupTime)
	name := fmt.Sprintf("%s.%s[%-7s]",
		initial(t.Booking.PassengerFirstname),
		initial(t.Booking.PassengerLastname),
		string(t.Assistance))
	addr := fmt.Sprintf("%s-%s", shortAddr(t.PickupAddress), shortAddr(t.DropoffAddress))

	timeStr := " "
	if !t.AdjustedPickupTime.IsZero() {
		timeStr = fmt.Sprintf("(%s)%s-%s ",
			timeaddr.To12Hr(t.EarliestArrivalTime),
			timeaddr.To12Hr(t.AdjustedPickupTime),
			timeaddr.To12Hr(t.DropoffTime()))
	}

	lastStr := ""
	if t.IsLast {
		lastStr = "[L]"
	}
	return fmt.Sprintf("%s %s: %s%s%s", book, name, timeStr, addr, lastStr)
}

// ToTrip builds the output trip from this record: scheduled times in
// 24-hour form on the booking copy, trip-level first-pickup/last-dropoff
// in 12-hour form, actual/driver time slots cleared.
func (t *TripInfo) ToTrip() model.Trip {
	booking := t.Booking

	booking.ActualPickupTime = nil
	booking.ActualDropoffTime = nil
	booking.DriverArrivalTime = nil
	booking.DriverEnrouteTime = nil

	scheduledPickup := timeaddr.To24Hr(t.effectivePickup())
	scheduledDropoff := timeaddr.To24Hr(t.DropoffTime())
	booking.ScheduledPickupTime = &scheduledPickup
	booking.ScheduledDropoffTime = &scheduledDropoff

	short := t.Short()
	return model.Trip{
		TripID:               booking.TripID,
		ProgramID:            booking.ProgramID,
		ProgramName:          booking.ProgramName,
		ProgramTimezone:      booking.ProgramTimezone,
		FirstPickupTime:      timeaddr.To12Hr(t.effectivePickup()),
		LastDropoffTime:      timeaddr.To12Hr(t.DropoffTime()),
		FirstPickupAddress:   booking.PickupAddress,
		FirstPickupLatitude:  booking.PickupLatitude,
		FirstPickupLongitude: booking.PickupLongitude,
		LastDropoffAddress:   booking.DropoffAddress,
		LastDropoffLatitude:  booking.DropoffLatitude,
		LastDropoffLongitude: booking.DropoffLongitude,
		Notes:                booking.AdminNote,
		NumberOfPassengers:   1 + booking.AdditionalPassenger,
		TripComplete:         booking.TripComplete,
		Bookings:             []model.Booking{booking},
		Short:                &short,
	}
}
