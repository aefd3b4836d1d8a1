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

// DriverModel is the GORM model for the drivers table.
type DriverModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name          string     `gorm:"not null;size:200"`
	Email         string     `gorm:"uniqueIndex;not null;size:200"`
	Phone         string     `gorm:"size:30"`
	LicenseNumber string     `gorm:"not null;size:50"`
	VehicleID     *uuid.UUID `gorm:"type:uuid"`
	Status        string     `gorm:"not null;size:20;index"`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DriverModel) TableName() string {
	return "drivers"
}

// GormDriverRepository is the GORM-based implementation of fleet.DriverRepository.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewGormDriverRepository creates a new GormDriverRepository.
func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// FindByID retrieves a driver by ID.
func (r *GormDriverRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	var model DriverModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Driver", id.String())
		}
		return nil, fmt.Errorf("failed to find driver by ID: %w", err)
	}
	return toDomainDriver(&model), nil
}

// List retrieves drivers with pagination.
func (r *GormDriverRepository) List(ctx context.Context, page, limit int) ([]*fleet.Driver, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DriverModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	var models []DriverModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}

	drivers := make([]*fleet.Driver, len(models))
	for i, m := range models {
		drivers[i] = toDomainDriver(&m)
	}
	return drivers, total, nil
}

// Save persists a new driver.
func (r *GormDriverRepository) Save(ctx context.Context, driver *fleet.Driver) error {
	if err := r.db.WithContext(ctx).Create(toDriverModel(driver)).Error; err != nil {
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

// Update persists changes to an existing driver with optimistic locking.
func (r *GormDriverRepository) Update(ctx context.Context, driver *fleet.Driver) error {
	model := toDriverModel(driver)

	expectedVersion := driver.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DriverModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"email":          model.Email,
			"phone":          model.Phone,
			"license_number": model.LicenseNumber,
			"vehicle_id":     model.VehicleID,
			"status":         model.Status,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("driver was modified by another transaction")
	}
	return nil
}

// Delete removes a driver record.
func (r *GormDriverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DriverModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Driver", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toDriverModel(d *fleet.Driver) *DriverModel {
	return &DriverModel{
		ID:            d.ID(),
		Name:          d.Name(),
		Email:         d.Email(),
		Phone:         d.Phone(),
		LicenseNumber: d.LicenseNumber(),
		VehicleID:     d.VehicleID(),
		Status:        string(d.Status()),
		Version:       d.Version(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}
}

func toDomainDriver(m *DriverModel) *fleet.Driver {
	return fleet.ReconstructDriver(
		m.ID,
		m.Name,
		m.Email,
		m.Phone,
		m.LicenseNumber,
		m.VehicleID,
		fleet.DriverStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
