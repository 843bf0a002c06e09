package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrVehicleNotFound   = apperror.New(http.StatusNotFound, "vehicle not found")
	ErrInvalidRange      = apperror.New(http.StatusBadRequest, "start date must not be after end date")
	ErrInvalidPrice      = apperror.New(http.StatusBadRequest, "invalid total price")
	ErrInvalidPhone      = apperror.New(http.StatusBadRequest, "invalid phone number")
	ErrUnavailable       = apperror.New(http.StatusConflict, "vehicle is not available for the selected dates")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "booking cannot change to the requested state")
	ErrAlreadyPaid       = apperror.New(http.StatusConflict, "booking is already paid")
)

type RentalStatus string

const (
	StatusPending   RentalStatus = "pending"
	StatusConfirmed RentalStatus = "confirmed"
	StatusCancelled RentalStatus = "cancelled"
	StatusCompleted RentalStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// DateRange is an inclusive range of calendar days, stored at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to their calendar day and validates order.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: civilDay(start), End: civilDay(end)}
	if r.Start.After(r.End) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Overlaps uses inclusive bounds: ranges sharing a single day overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Days counts calendar days, both ends included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Booking is a reservation of one vehicle over one inclusive date range.
type Booking struct {
	ID                int64
	VehicleID         int64
	UserID            *int64
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	Dates             DateRange
	TotalPrice        money.Amount
	Status            RentalStatus
	PaymentStatus     PaymentStatus
	Notes             *string
	CheckoutSessionID *string
	PaymentIntentID   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BeginCheckout records a new provider checkout session: pending/unpaid -> pending/pending.
// Requesting another session while one is pending replaces the stored id.
func (b *Booking) BeginCheckout(sessionID string) error {
	if err := b.CanBeginCheckout(); err != nil {
		return err
	}
	b.CheckoutSessionID = &sessionID
	b.PaymentStatus = PaymentPending
	return nil
}

// CanBeginCheckout reports whether a checkout session may be opened.
func (b *Booking) CanBeginCheckout() error {
	if b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentRefunded {
		return ErrAlreadyPaid
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// ConfirmPayment moves the booking to confirmed/paid. Replays on an already
// confirmed/paid booking are accepted and report changed=false.
func (b *Booking) ConfirmPayment(paymentIntentID string) (changed bool, err error) {
	if b.Status == StatusConfirmed && b.PaymentStatus == PaymentPaid {
		if b.PaymentIntentID == nil && paymentIntentID != "" {
			b.PaymentIntentID = &paymentIntentID
			return true, nil
		}
		return false, nil
	}
	if b.Status != StatusPending || b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentRefunded {
		return false, ErrInvalidTransition
	}

	if paymentIntentID != "" {
		b.PaymentIntentID = &paymentIntentID
	}
	b.PaymentStatus = PaymentPaid
	b.Status = StatusConfirmed
	return true, nil
}

// ReleaseCheckout reverts a failed or expired checkout: pending/pending -> pending/unpaid.
// Any other state is left untouched and reports changed=false.
func (b *Booking) ReleaseCheckout() (changed bool) {
	if b.Status != StatusPending || b.PaymentStatus != PaymentPending {
		return false
	}
	b.PaymentStatus = PaymentUnpaid
	return true
}

// Cancel moves a pending or confirmed booking to cancelled. An open checkout is
// released; a captured payment stays paid until the provider reports the refund.
func (b *Booking) Cancel() error {
	switch b.Status {
	case StatusCancelled:
		return nil
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidTransition
	}
	b.Status = StatusCancelled
	if b.PaymentStatus == PaymentPending {
		b.PaymentStatus = PaymentUnpaid
	}
	return nil
}

// Refund records a provider refund: paid -> refunded and the rental is cancelled.
func (b *Booking) Refund() (changed bool, err error) {
	if b.PaymentStatus == PaymentRefunded {
		return false, nil
	}
	if b.PaymentStatus != PaymentPaid {
		return false, ErrInvalidTransition
	}
	b.PaymentStatus = PaymentRefunded
	b.Status = StatusCancelled
	return true, nil
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID        *int64
	VehicleID     int64
	Status        RentalStatus
	PaymentStatus PaymentStatus
	Page          int
	PageSize      int
}
