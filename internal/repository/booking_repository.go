package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/skylift-transfers/service-shuttle/internal/domain/booking"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber  string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	DriverID       *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID      *uuid.UUID      `gorm:"type:uuid"`
	Status         string          `gorm:"not null;size:30;index"`
	Contact        json.RawMessage `gorm:"type:jsonb;not null"`
	Trip           json.RawMessage `gorm:"type:jsonb;not null"`
	RouteSpec      json.RawMessage `gorm:"type:jsonb"`
	FareComponents json.RawMessage `gorm:"type:jsonb;not null"`
	FareBreakdown  json.RawMessage `gorm:"type:jsonb;not null"`
	StartedAt      *time.Time      `gorm:""`
	CompletedAt    *time.Time      `gorm:""`
	CancelledAt    *time.Time      `gorm:""`
	CancelNote     string          `gorm:"size:500"`
	Notes          string          `gorm:"size:1000"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindByDriverID retrieves bookings assigned to a driver with pagination.
func (r *GormBookingRepository) FindByDriverID(ctx context.Context, driverID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("driver_id = ?", driverID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count driver bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find driver bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"driver_id":       model.DriverID,
			"vehicle_id":      model.VehicleID,
			"status":          model.Status,
			"contact":         model.Contact,
			"trip":            model.Trip,
			"route_spec":      model.RouteSpec,
			"fare_components": model.FareComponents,
			"fare_breakdown":  model.FareBreakdown,
			"started_at":      model.StartedAt,
			"completed_at":    model.CompletedAt,
			"cancelled_at":    model.CancelledAt,
			"cancel_note":     model.CancelNote,
			"notes":           model.Notes,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	contactJSON, err := json.Marshal(bk.Contact())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}

	tripJSON, err := json.Marshal(bk.Trip())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip details: %w", err)
	}

	componentsJSON, err := json.Marshal(bk.FareComponents())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fare components: %w", err)
	}

	breakdownJSON, err := json.Marshal(bk.FareBreakdown())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fare breakdown: %w", err)
	}

	var routeSpecJSON json.RawMessage
	if bk.RouteSpec() != nil {
		data, err := json.Marshal(bk.RouteSpec())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal route spec: %w", err)
		}
		routeSpecJSON = data
	}

	return &BookingModel{
		ID:             bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		CustomerID:     bk.CustomerID(),
		DriverID:       bk.DriverID(),
		VehicleID:      bk.VehicleID(),
		Status:         string(bk.Status()),
		Contact:        contactJSON,
		Trip:           tripJSON,
		RouteSpec:      routeSpecJSON,
		FareComponents: componentsJSON,
		FareBreakdown:  breakdownJSON,
		StartedAt:      bk.StartedAt(),
		CompletedAt:    bk.CompletedAt(),
		CancelledAt:    bk.CancelledAt(),
		CancelNote:     bk.CancelNote(),
		Notes:          bk.Notes(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var contact bookingDomain.Contact
	if err := json.Unmarshal(m.Contact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
	}

	var trip bookingDomain.TripDetails
	if err := json.Unmarshal(m.Trip, &trip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip details: %w", err)
	}

	var components fare.Components
	if err := json.Unmarshal(m.FareComponents, &components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fare components: %w", err)
	}

	var breakdown fare.Breakdown
	if err := json.Unmarshal(m.FareBreakdown, &breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fare breakdown: %w", err)
	}

	var routeSpec *bookingDomain.RouteSpec
	if len(m.RouteSpec) > 0 {
		var rs bookingDomain.RouteSpec
		if err := json.Unmarshal(m.RouteSpec, &rs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal route spec: %w", err)
		}
		routeSpec = &rs
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.CustomerID,
		contact,
		status,
		trip,
		routeSpec,
		components,
		breakdown,
		m.DriverID,
		m.VehicleID,
		m.StartedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
