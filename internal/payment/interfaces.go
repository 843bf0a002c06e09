package payment

import (
	"context"

	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*booking.Booking, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*booking.Booking, error)
	UpdateState(ctx context.Context, b *booking.Booking) error
}

type vehicleReader interface {
	GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error)
}
