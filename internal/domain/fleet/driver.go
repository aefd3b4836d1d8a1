package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// DriverStatus represents the availability state of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// Driver is the aggregate root for a shuttle driver profile.
type Driver struct {
	id            uuid.UUID
	name          string
	email         string
	phone         string
	licenseNumber string
	vehicleID     *uuid.UUID
	status        DriverStatus
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewDriver creates a new active driver profile with validated fields.
func NewDriver(name, email, phone, licenseNumber string) (*Driver, error) {
	if name == "" {
		return nil, domain.NewValidationError("driver name is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("driver email is required")
	}
	if licenseNumber == "" {
		return nil, domain.NewValidationError("driver license number is required")
	}

	now := time.Now().UTC()
	return &Driver{
		id:            uuid.New(),
		name:          name,
		email:         email,
		phone:         phone,
		licenseNumber: licenseNumber,
		status:        DriverStatusActive,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructDriver rebuilds a Driver from persistence data (no validation).
func ReconstructDriver(
	id uuid.UUID,
	name, email, phone, licenseNumber string,
	vehicleID *uuid.UUID,
	status DriverStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Driver {
	return &Driver{
		id:            id,
		name:          name,
		email:         email,
		phone:         phone,
		licenseNumber: licenseNumber,
		vehicleID:     vehicleID,
		status:        status,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (d *Driver) ID() uuid.UUID         { return d.id }
func (d *Driver) Name() string          { return d.name }
func (d *Driver) Email() string         { return d.email }
func (d *Driver) Phone() string         { return d.phone }
func (d *Driver) LicenseNumber() string { return d.licenseNumber }
func (d *Driver) VehicleID() *uuid.UUID { return d.vehicleID }
func (d *Driver) Status() DriverStatus  { return d.status }
func (d *Driver) Version() int64        { return d.version }
func (d *Driver) CreatedAt() time.Time  { return d.createdAt }
func (d *Driver) UpdatedAt() time.Time  { return d.updatedAt }

// --- Behavior ---

// Update applies partial updates to the driver profile.
func (d *Driver) Update(name, email, phone, licenseNumber string) {
	if name != "" {
		d.name = name
	}
	if email != "" {
		d.email = email
	}
	if phone != "" {
		d.phone = phone
	}
	if licenseNumber != "" {
		d.licenseNumber = licenseNumber
	}
	d.version++
	d.updatedAt = time.Now().UTC()
}

// AssignVehicle links the driver to a vehicle.
func (d *Driver) AssignVehicle(vehicleID uuid.UUID) {
	d.vehicleID = &vehicleID
	d.version++
	d.updatedAt = time.Now().UTC()
}

// UnassignVehicle removes the driver's vehicle link.
func (d *Driver) UnassignVehicle() {
	d.vehicleID = nil
	d.version++
	d.updatedAt = time.Now().UTC()
}

// Deactivate marks the driver as inactive.
func (d *Driver) Deactivate() {
	d.status = DriverStatusInactive
	d.version++
	d.updatedAt = time.Now().UTC()
}

// Activate marks the driver as active.
func (d *Driver) Activate() {
	d.status = DriverStatusActive
	d.version++
	d.updatedAt = time.Now().UTC()
}

// IsActive returns true if the driver is active.
func (d *Driver) IsActive() bool {
	return d.status == DriverStatusActive
}
