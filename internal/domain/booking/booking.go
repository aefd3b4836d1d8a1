package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the shuttle booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	customerID    uuid.UUID
	contact       Contact
	status        Status
	trip          TripDetails
	routeSpec     *RouteSpec

	fareComponents fare.Components
	fareBreakdown  fare.Breakdown

	driverID  *uuid.UUID
	vehicleID *uuid.UUID

	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string
	notes       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "SH-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "SH-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending. The fare
// breakdown is derived from the components and the trip's payment method at
// creation time.
func NewBooking(
	customerID uuid.UUID,
	contact Contact,
	trip TripDetails,
	routeSpec *RouteSpec,
	components fare.Components,
	notes string,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if contact.Name == "" {
		return nil, domain.NewValidationError("contact name is required")
	}
	if strings.TrimSpace(trip.PickupAddress) == "" {
		return nil, domain.NewValidationError("pickup address is required")
	}
	if strings.TrimSpace(trip.DropoffAddress) == "" {
		return nil, domain.NewValidationError("dropoff address is required")
	}
	if trip.Passengers <= 0 {
		return nil, domain.NewValidationError("passenger count must be positive")
	}
	if trip.ChildSeats < 0 {
		return nil, domain.NewValidationError("child seat count cannot be negative")
	}
	if !trip.PaymentMethod.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", trip.PaymentMethod))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		bookingNumber:  bookingNumber,
		customerID:     customerID,
		contact:        contact,
		status:         StatusPending,
		trip:           trip,
		routeSpec:      routeSpec,
		fareComponents: components,
		fareBreakdown:  fare.Compute(components, trip.PaymentMethod),
		notes:          notes,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	customerID uuid.UUID,
	contact Contact,
	status Status,
	trip TripDetails,
	routeSpec *RouteSpec,
	components fare.Components,
	breakdown fare.Breakdown,
	driverID *uuid.UUID,
	vehicleID *uuid.UUID,
	startedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		bookingNumber:  bookingNumber,
		customerID:     customerID,
		contact:        contact,
		status:         status,
		trip:           trip,
		routeSpec:      routeSpec,
		fareComponents: components,
		fareBreakdown:  breakdown,
		driverID:       driverID,
		vehicleID:      vehicleID,
		startedAt:      startedAt,
		completedAt:    completedAt,
		cancelledAt:    cancelledAt,
		cancelNote:     cancelNote,
		notes:          notes,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerID returns the booking customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// Contact returns the customer contact details.
func (b *Booking) Contact() Contact { return b.contact }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Trip returns the trip details.
func (b *Booking) Trip() TripDetails { return b.trip }

// RouteSpec returns the resolved route, or nil if not yet resolved.
func (b *Booking) RouteSpec() *RouteSpec { return b.routeSpec }

// FareComponents returns the fare components snapshot.
func (b *Booking) FareComponents() fare.Components { return b.fareComponents }

// FareBreakdown returns the derived fare breakdown snapshot.
func (b *Booking) FareBreakdown() fare.Breakdown { return b.fareBreakdown }

// DriverID returns the assigned driver's ID, or nil if unassigned.
func (b *Booking) DriverID() *uuid.UUID { return b.driverID }

// VehicleID returns the assigned vehicle's ID, or nil if unassigned.
func (b *Booking) VehicleID() *uuid.UUID { return b.vehicleID }

// StartedAt returns the time the trip started.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// CompletedAt returns the time the trip completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewConflictError(fmt.Sprintf("cannot confirm booking in status %s", b.status))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// AssignDriver transitions the booking to assigned with the given driver and vehicle.
func (b *Booking) AssignDriver(driverID, vehicleID uuid.UUID) error {
	if !b.status.CanTransitionTo(StatusAssigned) {
		return domain.NewConflictError(fmt.Sprintf("cannot assign driver in status %s", b.status))
	}
	if driverID == uuid.Nil {
		return domain.NewValidationError("driver ID is required")
	}
	if vehicleID == uuid.Nil {
		return domain.NewValidationError("vehicle ID is required")
	}
	b.driverID = &driverID
	b.vehicleID = &vehicleID
	b.status = StatusAssigned
	b.updatedAt = time.Now().UTC()
	return nil
}

// Start transitions the booking from assigned to in_progress.
func (b *Booking) Start() error {
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewConflictError(fmt.Sprintf("cannot start trip in status %s", b.status))
	}
	now := time.Now().UTC()
	b.status = StatusInProgress
	b.startedAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from in_progress to completed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewConflictError(fmt.Sprintf("cannot complete trip in status %s", b.status))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewConflictError(fmt.Sprintf("cannot cancel booking in status %s", b.status))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// SetRouteSpec stores the resolved route for this booking.
func (b *Booking) SetRouteSpec(routeSpec *RouteSpec) {
	b.routeSpec = routeSpec
	b.updatedAt = time.Now().UTC()
}

// ApplyFare replaces the fare components and re-derives the breakdown for
// the booking's payment method. The full computation always re-runs; there is
// no partial update path.
func (b *Booking) ApplyFare(components fare.Components) {
	b.fareComponents = components
	b.fareBreakdown = fare.Compute(components, b.trip.PaymentMethod)
	b.updatedAt = time.Now().UTC()
}

// ChangePaymentMethod switches the payment method and re-derives the
// breakdown from the unchanged components. No network call is involved.
func (b *Booking) ChangePaymentMethod(method fare.PaymentMethod) error {
	if !method.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	b.trip.PaymentMethod = method
	b.fareBreakdown = fare.Compute(b.fareComponents, method)
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
