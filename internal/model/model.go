// Package model contains domain models for the shuttle scheduling system.
// The persistence shapes map to the MongoDB collections `directions`,
// `programs` and `tasks`; the rest are wire DTOs for the scheduling API.
package model

// ─── Booking ────────────────────────────────────────────────

// Booking represents a passenger's ride request for a specific pickup time
// and address pair. Only the required fields participate in scheduling;
// everything optional is passed through to the output untouched.
type Booking struct {
	BookingID            string   `json:"booking_id" bson:"booking_id"`
	PassengerID          string   `json:"passenger_id" bson:"passenger_id"`
	PassengerFirstname   string   `json:"passenger_firstname" bson:"passenger_firstname"`
	PassengerLastname    string   `json:"passenger_lastname" bson:"passenger_lastname"`
	AdditionalPassenger  int      `json:"additional_passenger" bson:"additional_passenger"`
	MobilityAssistance   []string `json:"mobility_assistance" bson:"mobility_assistance"`
	ProgramName          string   `json:"program_name" bson:"program_name"`
	PickupTime           string   `json:"pickup_time" bson:"pickup_time"` // HH:MM
	PickupAddress        string   `json:"pickup_address" bson:"pickup_address"`
	DropoffAddress       string   `json:"dropoff_address" bson:"dropoff_address"`
	RideStatus           int      `json:"ride_status" bson:"ride_status"`

	// Optional fields, passed through unchanged.
	PassengerPhone   *string  `json:"passenger_phone,omitempty" bson:"passenger_phone,omitempty"`
	PickupAddressID  *string  `json:"pickup_address_id,omitempty" bson:"pickup_address_id,omitempty"`
	PickupLatitude   *float64 `json:"pickup_latitude,omitempty" bson:"pickup_latitude,omitempty"`
	PickupLongitude  *float64 `json:"pickup_longitude,omitempty" bson:"pickup_longitude,omitempty"`
	PickupAccountID  *string  `json:"pickup_account_id,omitempty" bson:"pickup_account_id,omitempty"`
	DropoffAddressID *string  `json:"dropoff_address_id,omitempty" bson:"dropoff_address_id,omitempty"`
	DropoffLatitude  *float64 `json:"dropoff_latitude,omitempty" bson:"dropoff_latitude,omitempty"`
	DropoffLongitude *float64 `json:"dropoff_longitude,omitempty" bson:"dropoff_longitude,omitempty"`
	DropoffAccountID *string  `json:"dropoff_account_id,omitempty" bson:"dropoff_account_id,omitempty"`

	// Scheduling output slots. Scheduled times are written by the engine in
	// 24-hour form; the actual/driver slots are cleared on output.
	ScheduledPickupTime  *string `json:"scheduled_pickup_time,omitempty" bson:"scheduled_pickup_time,omitempty"`
	ScheduledDropoffTime *string `json:"scheduled_dropoff_time,omitempty" bson:"scheduled_dropoff_time,omitempty"`
	ActualPickupTime     *string `json:"actual_pickup_time,omitempty" bson:"actual_pickup_time,omitempty"`
	ActualDropoffTime    *string `json:"actual_dropoff_time,omitempty" bson:"actual_dropoff_time,omitempty"`
	DriverArrivalTime    *string `json:"driver_arrival_time,omitempty" bson:"driver_arrival_time,omitempty"`
	DriverEnrouteTime    *string `json:"driver_enroute_time,omitempty" bson:"driver_enroute_time,omitempty"`

	TravelTime          *int     `json:"travel_time,omitempty" bson:"travel_time,omitempty"`         // seconds
	TravelDistance      *float64 `json:"travel_distance,omitempty" bson:"travel_distance,omitempty"` // meters
	RideFee             *float64 `json:"ride_fee,omitempty" bson:"ride_fee,omitempty"`
	TotalAddlFeeUSDCent *int     `json:"total_addl_fee_usd_cents,omitempty" bson:"total_addl_fee_usd_cents,omitempty"`
	Payment             *string  `json:"payment,omitempty" bson:"payment,omitempty"`
	InsuranceAccountID  *string  `json:"insurance_account_id,omitempty" bson:"insurance_account_id,omitempty"`
	PaymentComplete     *bool    `json:"payment_complete,omitempty" bson:"payment_complete,omitempty"`
	AdminNote           *string  `json:"admin_note,omitempty" bson:"admin_note,omitempty"`
	TripID              *string  `json:"trip_id,omitempty" bson:"trip_id,omitempty"`
	TripComplete        *bool    `json:"trip_complete,omitempty" bson:"trip_complete,omitempty"`
	ProgramID           *string  `json:"program_id,omitempty" bson:"program_id,omitempty"`
	ProgramTimezone     *string  `json:"program_timezone,omitempty" bson:"program_timezone,omitempty"`
	DriverNote          *string  `json:"driver_note,omitempty" bson:"driver_note,omitempty"`
	OfficeNote          *string  `json:"office_note,omitempty" bson:"office_note,omitempty"`
	Flag                *bool    `json:"flag,omitempty" bson:"flag,omitempty"`
	WillcallCallTime    *string  `json:"willcall_call_time,omitempty" bson:"willcall_call_time,omitempty"`
	TotalSeatCount      *int     `json:"total_seat_count,omitempty" bson:"total_seat_count,omitempty"`
}

// Passenger returns the passenger identity used for grouping: the passenger
// id when present, otherwise first + last name.
func (b *Booking) Passenger() string {
	if b.PassengerID != "" {
		return b.PassengerID
	}
	return b.PassengerFirstname + " " + b.PassengerLastname
}

// ─── Output: Trip and Shuttle ───────────────────────────────

// Trip is a scheduled trip in the emitted plan. A trip carries exactly one
// booking (plus its additional passengers).
type Trip struct {
	TripID          *string `json:"trip_id,omitempty" bson:"trip_id,omitempty"`
	ProgramID       *string `json:"program_id,omitempty" bson:"program_id,omitempty"`
	ProgramName     string  `json:"program_name" bson:"program_name"`
	ProgramTimezone *string `json:"program_timezone,omitempty" bson:"program_timezone,omitempty"`

	FirstPickupTime string `json:"first_pickup_time" bson:"first_pickup_time"` // h:mm AM/PM
	LastDropoffTime string `json:"last_dropoff_time" bson:"last_dropoff_time"` // h:mm AM/PM

	FirstPickupAddress   string   `json:"first_pickup_address" bson:"first_pickup_address"`
	FirstPickupLatitude  *float64 `json:"first_pickup_latitude,omitempty" bson:"first_pickup_latitude,omitempty"`
	FirstPickupLongitude *float64 `json:"first_pickup_longitude,omitempty" bson:"first_pickup_longitude,omitempty"`
	LastDropoffAddress   string   `json:"last_dropoff_address" bson:"last_dropoff_address"`
	LastDropoffLatitude  *float64 `json:"last_dropoff_latitude,omitempty" bson:"last_dropoff_latitude,omitempty"`
	LastDropoffLongitude *float64 `json:"last_dropoff_longitude,omitempty" bson:"last_dropoff_longitude,omitempty"`

	Notes              *string   `json:"notes,omitempty" bson:"notes,omitempty"`
	NumberOfPassengers int       `json:"number_of_passengers" bson:"number_of_passengers"`
	TripComplete       *bool     `json:"trip_complete,omitempty" bson:"trip_complete,omitempty"`
	Bookings           []Booking `json:"bookings" bson:"bookings"`

	Short *string `json:"short,omitempty" bson:"short,omitempty"`
}

// Shuttle is an assigned vehicle with its ordered list of trips.
type Shuttle struct {
	ShuttleName         string  `json:"shuttle_name" bson:"shuttle_name"`
	ShuttleID           *string `json:"shuttle_id,omitempty" bson:"shuttle_id,omitempty"`
	ShuttleLicensePlate *string `json:"shuttle_license_plate,omitempty" bson:"shuttle_license_plate,omitempty"`
	ShuttleWheelchair   *string `json:"shuttle_wheelchair,omitempty" bson:"shuttle_wheelchair,omitempty"`

	Trips []Trip `json:"trips" bson:"trips"`
}

// ─── Schedule request / response ────────────────────────────

// Optimization selects the CP formulation and its objective. A request
// without an Optimization block runs the greedy scheduler.
type Optimization struct {
	// Constraints.
	ChainBookingsForSamePassenger bool `json:"chain_bookings_for_same_passenger" bson:"chain_bookings_for_same_passenger"`

	// Objectives.
	MinimizeVehicles      bool `json:"minimize_vehicles" bson:"minimize_vehicles"`
	MinimizeTotalDuration bool `json:"minimize_total_duration" bson:"minimize_total_duration"`
}

// ScheduleRequest is the scheduling API input.
type ScheduleRequest struct {
	Date  string `json:"date" bson:"date"` // "Month Day, Year"
	Debug *bool  `json:"debug,omitempty" bson:"debug,omitempty"`

	BeforePickupTime     *int `json:"before_pickup_time,omitempty" bson:"before_pickup_time,omitempty"`         // seconds
	AfterPickupTime      *int `json:"after_pickup_time,omitempty" bson:"after_pickup_time,omitempty"`           // seconds
	PickupLoadingTime    *int `json:"pickup_loading_time,omitempty" bson:"pickup_loading_time,omitempty"`       // seconds
	DropoffUnloadingTime *int `json:"dropoff_unloading_time,omitempty" bson:"dropoff_unloading_time,omitempty"` // seconds

	Bookings []Booking `json:"bookings" bson:"bookings"`

	Optimization *Optimization `json:"optimization,omitempty" bson:"optimization,omitempty"`
	ProgramName  *string       `json:"program_name,omitempty" bson:"program_name,omitempty"`
}

// ScheduleResultData carries the emitted plan.
type ScheduleResultData struct {
	VehicleTripList []Shuttle `json:"vehicle_trip_list" bson:"vehicle_trip_list"`
}

// ScheduleResult is the result envelope inside a ScheduleResponse.
type ScheduleResult struct {
	Status    string              `json:"status" bson:"status"` // "success" | "error"
	ErrorCode int                 `json:"error_code" bson:"error_code"`
	Message   string              `json:"message" bson:"message"`
	Data      *ScheduleResultData `json:"data" bson:"data"`
}

// ScheduleResponse is the scheduling API output.
type ScheduleResponse struct {
	Result ScheduleResult `json:"result" bson:"result"`
}

// SuccessResponse builds the standard success envelope around a plan.
func SuccessResponse(shuttles []Shuttle) *ScheduleResponse {
	if shuttles == nil {
		shuttles = []Shuttle{}
	}
	return &ScheduleResponse{
		Result: ScheduleResult{
			Status:    "success",
			ErrorCode: 0,
			Message:   "Successfully retrieved trips data.",
			Data:      &ScheduleResultData{VehicleTripList: shuttles},
		},
	}
}

// ErrorResponse builds the error envelope clients use to distinguish
// "no plan exists" from a transport-level failure.
func ErrorResponse(message string) *ScheduleResponse {
	return &ScheduleResponse{
		Result: ScheduleResult{
			Status:    "error",
			ErrorCode: 1,
			Message:   message,
			Data:      nil,
		},
	}
}
