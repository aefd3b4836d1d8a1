package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/skylift-transfers/service-shuttle/internal/domain/booking"
	"github.com/skylift-transfers/service-shuttle/internal/domain/fleet"
	"github.com/skylift-transfers/service-shuttle/internal/events"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
	"github.com/skylift-transfers/service-shuttle/internal/platform/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Contact        bookingDomain.Contact `json:"contact" binding:"required"`
	PickupAddress  string                `json:"pickup_address" binding:"required"`
	DropoffAddress string                `json:"dropoff_address" binding:"required"`
	Stops          []string              `json:"stops"`
	Passengers     int                   `json:"passengers" binding:"required"`
	ChildSeats     int                   `json:"child_seats"`
	IsRoundTrip    bool                  `json:"is_round_trip"`
	PaymentMethod  string                `json:"payment_method" binding:"required"`
	VehicleTypeID  string                `json:"vehicle_type_id" binding:"required"`
	PickupAt       *time.Time            `json:"pickup_at"`
	ReturnAt       *time.Time            `json:"return_at"`
	Notes          string                `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID             uuid.UUID                 `json:"id"`
	BookingNumber  string                    `json:"booking_number"`
	CustomerID     uuid.UUID                 `json:"customer_id"`
	Contact        bookingDomain.Contact     `json:"contact"`
	Status         string                    `json:"status"`
	Trip           bookingDomain.TripDetails `json:"trip"`
	RouteSpec      *bookingDomain.RouteSpec  `json:"route_spec,omitempty"`
	FareComponents fare.Components           `json:"fare_components"`
	FareBreakdown  fare.Breakdown            `json:"fare_breakdown"`
	DriverID       *uuid.UUID                `json:"driver_id,omitempty"`
	VehicleID      *uuid.UUID                `json:"vehicle_id,omitempty"`
	StartedAt      *time.Time                `json:"started_at,omitempty"`
	CompletedAt    *time.Time                `json:"completed_at,omitempty"`
	CancelledAt    *time.Time                `json:"cancelled_at,omitempty"`
	CancelNote     string                    `json:"cancel_note,omitempty"`
	Notes          string                    `json:"notes,omitempty"`
	Version        int64                     `json:"version"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo         bookingDomain.Repository
	drivers      fleet.DriverRepository
	vehicles     fleet.VehicleRepository
	recalculator *FareRecalculator
	producer     *kafka.Producer
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	drivers fleet.DriverRepository,
	vehicles fleet.VehicleRepository,
	recalculator *FareRecalculator,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		drivers:      drivers,
		vehicles:     vehicles,
		recalculator: recalculator,
		producer:     producer,
		logger:       logger,
	}
}

// CreateBooking resolves the trip's route and price, then persists a pending
// booking for the customer.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	method, err := fare.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	trip := bookingDomain.TripDetails{
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Stops:          req.Stops,
		Passengers:     req.Passengers,
		ChildSeats:     req.ChildSeats,
		IsRoundTrip:    req.IsRoundTrip,
		PaymentMethod:  method,
		VehicleTypeID:  req.VehicleTypeID,
		PickupAt:       req.PickupAt,
		ReturnAt:       req.ReturnAt,
	}

	result, err := s.recalculator.Recalculate(ctx, trip, fare.Components{})
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		customerID,
		req.Contact,
		trip,
		toRouteSpec(result),
		result.Components,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.BookingRequested, events.BookingRequestedEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		CustomerID:     bk.CustomerID(),
		PickupAddress:  trip.PickupAddress,
		DropoffAddress: trip.DropoffAddress,
		IsRoundTrip:    trip.IsRoundTrip,
		Total:          bk.FareBreakdown().Total,
		PaymentMethod:  method.String(),
		OccurredAt:     time.Now().UTC(),
	})

	result2 := toBookingDTO(bk)
	return &result2, nil
}

// ConfirmBooking transitions a pending booking to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		Total:         bk.FareBreakdown().Total,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AssignDriver assigns a driver and vehicle to a confirmed booking. The
// vehicle must be able to carry the trip's passengers and child seats.
func (s *BookingService) AssignDriver(ctx context.Context, bookingID, driverID, vehicleID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive() {
		return nil, domain.NewValidationError("driver is not active")
	}

	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.CanCarry(bk.Trip().Passengers, bk.Trip().ChildSeats) {
		return nil, domain.NewValidationError("vehicle cannot carry this trip's passengers and child seats")
	}

	if err := bk.AssignDriver(driverID, vehicleID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.DriverAssigned, events.DriverAssignedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		DriverID:      driverID,
		VehicleID:     vehicleID,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// StartTrip marks an assigned booking as in progress.
func (s *BookingService) StartTrip(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Start(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteTrip finalizes an in-progress booking.
func (s *BookingService) CompleteTrip(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	var driverID uuid.UUID
	if bk.DriverID() != nil {
		driverID = *bk.DriverID()
	}
	s.publishEvent(ctx, events.BookingCompleted, events.BookingCompletedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		DriverID:      driverID,
		Total:         bk.FareBreakdown().Total,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, cancelledBy uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   cancelledBy,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateFare applies operator edits to the booking's fare components. The
// full breakdown is re-derived from scratch; nothing is updated incrementally.
func (s *BookingService) UpdateFare(ctx context.Context, bookingID uuid.UUID, components fare.Components) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewConflictError("cannot edit fare of a closed booking")
	}

	bk.ApplyFare(components)
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// RefreshFare re-runs the route and pricing pipeline for the booking and
// merges the authoritative fields into its fare components.
func (s *BookingService) RefreshFare(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewConflictError("cannot recalculate fare of a closed booking")
	}

	result, err := s.recalculator.Recalculate(ctx, bk.Trip(), bk.FareComponents())
	if err != nil {
		return nil, err
	}

	bk.SetRouteSpec(toRouteSpec(result))
	bk.ApplyFare(result.Components)
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	dto := toBookingDTO(bk)
	return &dto, nil
}

// ChangePaymentMethod switches the booking's payment method and re-derives
// the total from the unchanged components, with no pricing round trip.
func (s *BookingService) ChangePaymentMethod(ctx context.Context, bookingID uuid.UUID, method string) (*BookingDTO, error) {
	parsed, err := fare.ParsePaymentMethod(method)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.ChangePaymentMethod(parsed); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetDriverBookings retrieves paginated bookings assigned to a driver.
func (s *BookingService) GetDriverBookings(ctx context.Context, driverID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByDriverID(ctx, driverID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func toRouteSpec(result *RecalcResult) *bookingDomain.RouteSpec {
	if result == nil || result.Route == nil {
		return nil
	}
	spec := &bookingDomain.RouteSpec{
		DistanceText:    result.Route.DistanceText,
		DurationText:    result.Route.DurationText,
		DistanceMiles:   result.Route.DistanceMiles,
		DurationMinutes: result.Route.DurationMinutes,
	}
	if c := result.Route.PickupCoords; c != nil {
		spec.PickupLat, spec.PickupLng = c.Lat, c.Lng
	}
	if c := result.Route.DropoffCoords; c != nil {
		spec.DropoffLat, spec.DropoffLng = c.Lat, c.Lng
	}
	return spec
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:             bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		CustomerID:     bk.CustomerID(),
		Contact:        bk.Contact(),
		Status:         string(bk.Status()),
		Trip:           bk.Trip(),
		RouteSpec:      bk.RouteSpec(),
		FareComponents: bk.FareComponents(),
		FareBreakdown:  bk.FareBreakdown(),
		DriverID:       bk.DriverID(),
		VehicleID:      bk.VehicleID(),
		StartedAt:      bk.StartedAt(),
		CompletedAt:    bk.CompletedAt(),
		CancelledAt:    bk.CancelledAt(),
		CancelNote:     bk.CancelNote(),
		Notes:          bk.Notes(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-shuttle", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
