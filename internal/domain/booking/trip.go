package booking

import (
	"time"

	"github.com/skylift-transfers/service-shuttle/internal/fare"
)

// Contact holds the customer-entered contact details for a booking.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TripDetails is the raw trip input collected by the booking wizard.
type TripDetails struct {
	PickupAddress  string             `json:"pickup_address"`
	DropoffAddress string             `json:"dropoff_address"`
	Stops          []string           `json:"stops,omitempty"`
	Passengers     int                `json:"passengers"`
	ChildSeats     int                `json:"child_seats"`
	IsRoundTrip    bool               `json:"is_round_trip"`
	PaymentMethod  fare.PaymentMethod `json:"payment_method"`
	VehicleTypeID  string             `json:"vehicle_type_id"`
	PickupAt       *time.Time         `json:"pickup_at,omitempty"`
	ReturnAt       *time.Time         `json:"return_at,omitempty"`
}

// RouteSpec is a value object holding the resolved route for a trip.
type RouteSpec struct {
	DistanceText    string  `json:"distance_text"`
	DurationText    string  `json:"duration_text"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes int     `json:"duration_minutes"`
	PickupLat       float64 `json:"pickup_lat,omitempty"`
	PickupLng       float64 `json:"pickup_lng,omitempty"`
	DropoffLat      float64 `json:"dropoff_lat,omitempty"`
	DropoffLng      float64 `json:"dropoff_lng,omitempty"`
}
