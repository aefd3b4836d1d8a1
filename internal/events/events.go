package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics consumed and produced by the shuttle service.
const (
	TopicBookingEvents  = "booking.events"
	TopicDispatchEvents = "dispatch.events"
)

// Event types published on booking.events.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	DriverAssigned   = "booking.driver_assigned"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event types consumed from dispatch.events (published by the driver app).
const (
	TripStarted   = "dispatch.trip_started"
	TripCompleted = "dispatch.trip_completed"
)

// BookingRequestedEvent is published when a customer submits the wizard.
type BookingRequestedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	IsRoundTrip    bool      `json:"is_round_trip"`
	Total          float64   `json:"total"`
	PaymentMethod  string    `json:"payment_method"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking is confirmed.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Total         float64   `json:"total"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DriverAssignedEvent is published when a driver and vehicle are assigned.
type DriverAssignedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	DriverID      uuid.UUID `json:"driver_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when a trip finishes.
type BookingCompletedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	DriverID      uuid.UUID `json:"driver_id"`
	Total         float64   `json:"total"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TripStartedEvent is consumed when the driver app reports pickup.
type TripStartedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TripCompletedEvent is consumed when the driver app reports dropoff.
type TripCompletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
