package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/domain/fleet"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// CreateDriverRequest holds the data needed to register a driver.
type CreateDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number" binding:"required"`
}

// UpdateDriverRequest holds partial driver updates. Empty fields are kept.
type UpdateDriverRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

// DriverDTO is the response representation of a driver.
type DriverDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"license_number"`
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateVehicleRequest holds the data needed to register a vehicle.
type CreateVehicleRequest struct {
	Make          string `json:"make" binding:"required"`
	Model         string `json:"model" binding:"required"`
	Year          int    `json:"year"`
	Plate         string `json:"plate" binding:"required"`
	VehicleTypeID string `json:"vehicle_type_id" binding:"required"`
	Seats         int    `json:"seats" binding:"required"`
	ChildSeats    int    `json:"child_seats"`
}

// UpdateVehicleRequest holds partial vehicle updates. Zero fields are kept.
type UpdateVehicleRequest struct {
	Make          string `json:"make"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	Plate         string `json:"plate"`
	VehicleTypeID string `json:"vehicle_type_id"`
	Seats         int    `json:"seats"`
	ChildSeats    int    `json:"child_seats"`
}

// VehicleDTO is the response representation of a vehicle.
type VehicleDTO struct {
	ID            uuid.UUID `json:"id"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	Year          int       `json:"year"`
	Plate         string    `json:"plate"`
	VehicleTypeID string    `json:"vehicle_type_id"`
	Seats         int       `json:"seats"`
	ChildSeats    int       `json:"child_seats"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FleetService manages drivers and vehicles (admin surface).
type FleetService struct {
	drivers  fleet.DriverRepository
	vehicles fleet.VehicleRepository
	logger   *zap.Logger
}

// NewFleetService creates a FleetService.
func NewFleetService(drivers fleet.DriverRepository, vehicles fleet.VehicleRepository, logger *zap.Logger) *FleetService {
	return &FleetService{drivers: drivers, vehicles: vehicles, logger: logger}
}

// --- Drivers ---

// CreateDriver registers a new active driver.
func (s *FleetService) CreateDriver(ctx context.Context, req CreateDriverRequest) (*DriverDTO, error) {
	driver, err := fleet.NewDriver(req.Name, req.Email, req.Phone, req.LicenseNumber)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.drivers.Save(ctx, driver); err != nil {
		return nil, err
	}

	s.logger.Info("driver created",
		zap.String("driver_id", driver.ID().String()),
		zap.String("name", driver.Name()),
	)

	dto := toDriverDTO(driver)
	return &dto, nil
}

// GetDriver retrieves a driver by ID.
func (s *FleetService) GetDriver(ctx context.Context, id uuid.UUID) (*DriverDTO, error) {
	driver, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDriverDTO(driver)
	return &dto, nil
}

// ListDrivers returns a paginated list of drivers.
func (s *FleetService) ListDrivers(ctx context.Context, page, limit int) ([]DriverDTO, int64, error) {
	drivers, total, err := s.drivers.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]DriverDTO, len(drivers))
	for i, d := range drivers {
		dtos[i] = toDriverDTO(d)
	}
	return dtos, total, nil
}

// UpdateDriver applies partial updates to a driver profile.
func (s *FleetService) UpdateDriver(ctx context.Context, id uuid.UUID, req UpdateDriverRequest) (*DriverDTO, error) {
	driver, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	driver.Update(req.Name, req.Email, req.Phone, req.LicenseNumber)
	if err := s.drivers.Update(ctx, driver); err != nil {
		return nil, err
	}

	dto := toDriverDTO(driver)
	return &dto, nil
}

// SetDriverStatus activates or deactivates a driver.
func (s *FleetService) SetDriverStatus(ctx context.Context, id uuid.UUID, active bool) (*DriverDTO, error) {
	driver, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		driver.Activate()
	} else {
		driver.Deactivate()
	}
	if err := s.drivers.Update(ctx, driver); err != nil {
		return nil, err
	}

	dto := toDriverDTO(driver)
	return &dto, nil
}

// AssignVehicleToDriver links a vehicle to a driver.
func (s *FleetService) AssignVehicleToDriver(ctx context.Context, driverID, vehicleID uuid.UUID) (*DriverDTO, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		return nil, err
	}

	driver.AssignVehicle(vehicleID)
	if err := s.drivers.Update(ctx, driver); err != nil {
		return nil, err
	}

	dto := toDriverDTO(driver)
	return &dto, nil
}

// DeleteDriver removes a driver profile.
func (s *FleetService) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	if _, err := s.drivers.FindByID(ctx, id); err != nil {
		return err
	}
	return s.drivers.Delete(ctx, id)
}

// --- Vehicles ---

// CreateVehicle registers a new vehicle.
func (s *FleetService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*VehicleDTO, error) {
	vehicle, err := fleet.NewVehicle(req.Make, req.Model, req.Year, req.Plate, req.VehicleTypeID, req.Seats, req.ChildSeats)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.vehicles.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle created",
		zap.String("vehicle_id", vehicle.ID().String()),
		zap.String("plate", vehicle.Plate()),
	)

	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// ListVehicles returns a paginated list of vehicles.
func (s *FleetService) ListVehicles(ctx context.Context, page, limit int) ([]VehicleDTO, int64, error) {
	vehicles, total, err := s.vehicles.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, total, nil
}

// UpdateVehicle applies partial updates to a vehicle record.
func (s *FleetService) UpdateVehicle(ctx context.Context, id uuid.UUID, req UpdateVehicleRequest) (*VehicleDTO, error) {
	vehicle, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle.Update(req.Make, req.Model, req.Year, req.Plate, req.VehicleTypeID, req.Seats, req.ChildSeats)
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// DeleteVehicle removes a vehicle record.
func (s *FleetService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vehicles.FindByID(ctx, id); err != nil {
		return err
	}
	return s.vehicles.Delete(ctx, id)
}

// --- Helpers ---

func toDriverDTO(d *fleet.Driver) DriverDTO {
	return DriverDTO{
		ID:            d.ID(),
		Name:          d.Name(),
		Email:         d.Email(),
		Phone:         d.Phone(),
		LicenseNumber: d.LicenseNumber(),
		VehicleID:     d.VehicleID(),
		Status:        string(d.Status()),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}
}

func toVehicleDTO(v *fleet.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:            v.ID(),
		Make:          v.Make(),
		Model:         v.Model(),
		Year:          v.Year(),
		Plate:         v.Plate(),
		VehicleTypeID: v.VehicleTypeID(),
		Seats:         v.Seats(),
		ChildSeats:    v.ChildSeats(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}
