package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// Vehicle is a shuttle vehicle in the fleet.
type Vehicle struct {
	id            uuid.UUID
	make_         string
	model         string
	year          int
	plate         string
	vehicleTypeID string
	seats         int
	childSeats    int
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewVehicle creates a new vehicle with validated fields.
func NewVehicle(make_, model string, year int, plate, vehicleTypeID string, seats, childSeats int) (*Vehicle, error) {
	if make_ == "" || model == "" {
		return nil, domain.NewValidationError("vehicle make and model are required")
	}
	if plate == "" {
		return nil, domain.NewValidationError("vehicle plate is required")
	}
	if vehicleTypeID == "" {
		return nil, domain.NewValidationError("vehicle type is required")
	}
	if seats <= 0 {
		return nil, domain.NewValidationError("seat count must be positive")
	}
	if childSeats < 0 {
		return nil, domain.NewValidationError("child seat stock cannot be negative")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:            uuid.New(),
		make_:         make_,
		model:         model,
		year:          year,
		plate:         plate,
		vehicleTypeID: vehicleTypeID,
		seats:         seats,
		childSeats:    childSeats,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructVehicle rebuilds a Vehicle from persistence data (no validation).
func ReconstructVehicle(
	id uuid.UUID,
	make_, model string,
	year int,
	plate, vehicleTypeID string,
	seats, childSeats int,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:            id,
		make_:         make_,
		model:         model,
		year:          year,
		plate:         plate,
		vehicleTypeID: vehicleTypeID,
		seats:         seats,
		childSeats:    childSeats,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID         { return v.id }
func (v *Vehicle) Make() string          { return v.make_ }
func (v *Vehicle) Model() string         { return v.model }
func (v *Vehicle) Year() int             { return v.year }
func (v *Vehicle) Plate() string         { return v.plate }
func (v *Vehicle) VehicleTypeID() string { return v.vehicleTypeID }
func (v *Vehicle) Seats() int            { return v.seats }
func (v *Vehicle) ChildSeats() int       { return v.childSeats }
func (v *Vehicle) Version() int64        { return v.version }
func (v *Vehicle) CreatedAt() time.Time  { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time  { return v.updatedAt }

// --- Behavior ---

// Update applies partial updates to the vehicle record.
func (v *Vehicle) Update(make_, model string, year int, plate, vehicleTypeID string, seats, childSeats int) {
	if make_ != "" {
		v.make_ = make_
	}
	if model != "" {
		v.model = model
	}
	if year > 0 {
		v.year = year
	}
	if plate != "" {
		v.plate = plate
	}
	if vehicleTypeID != "" {
		v.vehicleTypeID = vehicleTypeID
	}
	if seats > 0 {
		v.seats = seats
	}
	if childSeats >= 0 {
		v.childSeats = childSeats
	}
	v.version++
	v.updatedAt = time.Now().UTC()
}

// CanCarry reports whether the vehicle can take the passenger and child seat counts.
func (v *Vehicle) CanCarry(passengers, childSeats int) bool {
	return passengers <= v.seats && childSeats <= v.childSeats
}
