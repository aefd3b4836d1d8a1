package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skylift-transfers/service-shuttle/internal/domain/fleet"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Make          string    `gorm:"not null;size:100"`
	Model         string    `gorm:"not null;size:100"`
	Year          int       `gorm:""`
	Plate         string    `gorm:"uniqueIndex;not null;size:20"`
	VehicleTypeID string    `gorm:"not null;size:50;index"`
	Seats         int       `gorm:"not null"`
	ChildSeats    int       `gorm:"not null;default:0"`
	Version       int64     `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based implementation of fleet.VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by ID.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model), nil
}

// List retrieves vehicles with pagination.
func (r *GormVehicleRepository) List(ctx context.Context, page, limit int) ([]*fleet.Vehicle, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&VehicleModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*fleet.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = toDomainVehicle(&m)
	}
	return vehicles, total, nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *fleet.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(toVehicleModel(vehicle)).Error; err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle with optimistic locking.
func (r *GormVehicleRepository) Update(ctx context.Context, vehicle *fleet.Vehicle) error {
	model := toVehicleModel(vehicle)

	expectedVersion := vehicle.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"make":            model.Make,
			"model":           model.Model,
			"year":            model.Year,
			"plate":           model.Plate,
			"vehicle_type_id": model.VehicleTypeID,
			"seats":           model.Seats,
			"child_seats":     model.ChildSeats,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// Delete removes a vehicle record.
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Vehicle", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toVehicleModel(v *fleet.Vehicle) *VehicleModel {
	return &VehicleModel{
		ID:            v.ID(),
		Make:          v.Make(),
		Model:         v.Model(),
		Year:          v.Year(),
		Plate:         v.Plate(),
		VehicleTypeID: v.VehicleTypeID(),
		Seats:         v.Seats(),
		ChildSeats:    v.ChildSeats(),
		Version:       v.Version(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}

func toDomainVehicle(m *VehicleModel) *fleet.Vehicle {
	return fleet.ReconstructVehicle(
		m.ID,
		m.Make,
		m.Model,
		m.Year,
		m.Plate,
		m.VehicleTypeID,
		m.Seats,
		m.ChildSeats,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
