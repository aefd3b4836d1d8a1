package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByNumber(ctx context.Context, number string) (*Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)
	FindByDriverID(ctx context.Context, driverID uuid.UUID, page, limit int) ([]*Booking, int64, error)
	Save(ctx context.Context, bk *Booking) error
	Update(ctx context.Context, bk *Booking) error
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
