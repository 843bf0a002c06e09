package http

import (
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
)

type CreateBookingRequest struct {
	VehicleID     int64   `json:"vehicle_id" binding:"required,min=1"`
	CustomerName  string  `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail string  `json:"customer_email" binding:"required,email,max=320"`
	CustomerPhone string  `json:"customer_phone" binding:"required,phone"`
	StartDate     string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	TotalPrice    string  `json:"total_price" binding:"required"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}

// AvailabilityRequest is shared by the availability query.
type AvailabilityRequest struct {
	VehicleID int64  `form:"vehicle_id" binding:"required,min=1"`
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
}

type BookedDatesRequest struct {
	VehicleID int64 `form:"vehicle_id" binding:"required,min=1"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	VehicleID     int64  `form:"vehicle_id" binding:"omitempty,min=1"`
	Status        string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=unpaid pending paid refunded"`
}

type BookingResponse struct {
	ID            int64     `json:"id"`
	VehicleID     int64     `json:"vehicle_id"`
	UserID        *int64    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalPrice    string    `json:"total_price"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		VehicleID:     b.VehicleID,
		UserID:        b.UserID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		StartDate:     b.Dates.Start.Format(request.DateLayout),
		EndDate:       b.Dates.End.Format(request.DateLayout),
		TotalPrice:    b.TotalPrice.String(),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type DateRangeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type PaymentStatusResponse struct {
	BookingID     int64  `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}
