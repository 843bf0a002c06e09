package payment

import (
	"context"
	"net/http"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
)

var (
	ErrMissingSignature = apperror.New(http.StatusBadRequest, "Missing signature")
	ErrInvalidSignature = apperror.New(http.StatusBadRequest, "Invalid signature")
)

// Event types understood by the service. Values are the provider's names.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired       = "checkout.session.expired"
	EventPaymentSucceeded      = "payment_intent.succeeded"
	EventPaymentFailed         = "payment_intent.payment_failed"
	EventChargeRefunded        = "charge.refunded"
)

// CheckoutRequest describes a hosted payment page for one booking.
// Amounts are in minor currency units.
type CheckoutRequest struct {
	BookingID     int64
	CustomerEmail string
	Description   string
	RentalCents   int64
	DepositCents  int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// TotalCents is what the customer is charged: rental subtotal plus deposit.
func (r CheckoutRequest) TotalCents() int64 {
	return r.RentalCents + r.DepositCents
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified provider callback reduced to the fields the booking
// state machine needs. Fields that do not apply to Type are zero.
type Event struct {
	ID   string
	Type string
	// Test marks the provider's synthetic configuration-check events.
	Test bool

	BookingID       int64
	SessionID       string
	PaymentIntentID string
	// Paid is false for a completed checkout whose funds are still in flight.
	Paid bool
	// FullyRefunded is set on charge events once the whole amount is returned.
	FullyRefunded bool
}

// Gateway is the single payment provider integration.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseEvent verifies signature over the raw payload before decoding it.
	// A verification failure wraps ErrInvalidSignature.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
