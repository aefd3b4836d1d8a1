package fleet

import (
	"context"

	"github.com/google/uuid"
)

// DriverRepository defines persistence operations for driver profiles.
type DriverRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	List(ctx context.Context, page, limit int) ([]*Driver, int64, error)
	Save(ctx context.Context, driver *Driver) error
	Update(ctx context.Context, driver *Driver) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VehicleRepository defines persistence operations for vehicles.
type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	List(ctx context.Context, page, limit int) ([]*Vehicle, int64, error)
	Save(ctx context.Context, vehicle *Vehicle) error
	Update(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}
