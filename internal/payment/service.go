package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type Config struct {
	DepositCents int64
	Currency     string
	// PublicOrigin is where the provider sends the customer back to.
	PublicOrigin string
}

// CheckoutResult is returned to the client, which redirects to URL.
type CheckoutResult struct {
	BookingID   int64
	SessionID   string
	URL         string
	AmountCents int64
}

// Ack is the response to a verified webhook event.
type Ack struct {
	// Verified is set for provider self-test events, which are not processed.
	Verified bool
}

type Service struct {
	bookings bookingStore
	vehicles vehicleReader
	gateway  Gateway
	notifier notify.Notifier
	log      *logger.Logger
	cfg      Config
}

func NewService(bookings bookingStore, vehicles vehicleReader, gateway Gateway, notifier notify.Notifier, log *logger.Logger, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Service{
		bookings: bookings,
		vehicles: vehicles,
		gateway:  gateway,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
}

// CreateCheckout opens a hosted payment session for a pending booking and
// moves it to pending/pending.
func (s *Service) CreateCheckout(ctx context.Context, bookingID int64) (*CheckoutResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CanBeginCheckout(); err != nil {
		return nil, err
	}

	v, err := s.vehicles.GetByID(ctx, b.VehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			return nil, booking.ErrVehicleNotFound
		}
		return nil, err
	}

	req := CheckoutRequest{
		BookingID:     b.ID,
		CustomerEmail: b.CustomerEmail,
		Description:   rentalDescription(v.Model, b.Dates),
		RentalCents:   b.TotalPrice.Cents(),
		DepositCents:  s.cfg.DepositCents,
		Currency:      s.cfg.Currency,
		SuccessURL:    s.cfg.PublicOrigin + "/booking/success?booking_id=" + strconv.FormatInt(b.ID, 10) + "&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.PublicOrigin + "/booking/cancel?booking_id=" + strconv.FormatInt(b.ID, 10),
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, apperror.Unavailable(err, "payment provider")
	}

	if err := b.BeginCheckout(session.ID); err != nil {
		return nil, err
	}
	// An unrecorded session simply expires at the provider.
	if err := s.bookings.UpdateState(ctx, b); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "checkout session created",
		"booking_id", b.ID,
		"session_id", session.ID,
		"amount_cents", req.TotalCents(),
	)
	return &CheckoutResult{
		BookingID:   b.ID,
		SessionID:   session.ID,
		URL:         session.URL,
		AmountCents: req.TotalCents(),
	}, nil
}

// HandleEvent verifies and applies one provider callback. Returning an error
// other than ErrInvalidSignature asks the provider to redeliver.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, signature string) (Ack, error) {
	if signature == "" {
		return Ack{}, ErrMissingSignature
	}

	evt, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			s.log.WarnContext(ctx, "webhook signature verification failed", "error", err)
		}
		return Ack{}, err
	}

	if evt.Test {
		s.log.InfoContext(ctx, "webhook test event acknowledged", "event_id", evt.ID)
		return Ack{Verified: true}, nil
	}

	log := s.log.With("event_id", evt.ID, "event_type", evt.Type)
	log.InfoContext(ctx, "webhook event received")

	switch evt.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		if !evt.Paid {
			log.InfoContext(ctx, "checkout completed without captured funds, awaiting async result",
				"booking_id", evt.BookingID)
			return Ack{}, nil
		}
		return Ack{}, s.confirm(ctx, log, evt)

	case EventCheckoutExpired, EventAsyncPaymentFailed:
		return Ack{}, s.release(ctx, log, evt)

	case EventChargeRefunded:
		return Ack{}, s.refund(ctx, log, evt)

	case EventPaymentSucceeded:
		log.InfoContext(ctx, "payment succeeded", "payment_intent", evt.PaymentIntentID)
	case EventPaymentFailed:
		log.WarnContext(ctx, "payment failed", "payment_intent", evt.PaymentIntentID)
	default:
		log.InfoContext(ctx, "unhandled webhook event type")
	}
	return Ack{}, nil
}

func (s *Service) confirm(ctx context.Context, log *logger.Logger, evt *Event) error {
	b, ok, err := s.lookup(ctx, log, evt.BookingID)
	if !ok {
		return err
	}

	wasPaid := b.PaymentStatus == booking.PaymentPaid
	changed, err := b.ConfirmPayment(evt.PaymentIntentID)
	if err != nil {
		// Typically a booking cancelled while the customer was paying.
		log.WarnContext(ctx, "payment received for booking that cannot be confirmed",
			"booking_id", b.ID,
			"status", b.Status,
			"payment_status", b.PaymentStatus,
		)
		return nil
	}
	if !changed {
		log.InfoContext(ctx, "booking already confirmed", "booking_id", b.ID)
		return nil
	}

	if err := s.bookings.UpdateState(ctx, b); err != nil {
		return fmt.Errorf("confirm booking %d: %w", b.ID, err)
	}
	log.InfoContext(ctx, "booking confirmed with payment", "booking_id", b.ID, "payment_intent", evt.PaymentIntentID)

	if !wasPaid {
		s.notifyPaid(ctx, b)
	}
	return nil
}

func (s *Service) release(ctx context.Context, log *logger.Logger, evt *Event) error {
	b, ok, err := s.lookup(ctx, log, evt.BookingID)
	if !ok {
		return err
	}

	if b.CheckoutSessionID != nil && evt.SessionID != "" && *b.CheckoutSessionID != evt.SessionID {
		log.InfoContext(ctx, "ignoring event for superseded checkout session", "booking_id", b.ID)
		return nil
	}
	if !b.ReleaseCheckout() {
		return nil
	}

	if err := s.bookings.UpdateState(ctx, b); err != nil {
		return fmt.Errorf("release checkout of booking %d: %w", b.ID, err)
	}
	log.InfoContext(ctx, "checkout released", "booking_id", b.ID)
	return nil
}

func (s *Service) refund(ctx context.Context, log *logger.Logger, evt *Event) error {
	if !evt.FullyRefunded {
		log.InfoContext(ctx, "partial refund recorded by provider", "payment_intent", evt.PaymentIntentID)
		return nil
	}
	if evt.PaymentIntentID == "" {
		log.WarnContext(ctx, "refund event without payment intent")
		return nil
	}

	b, err := s.bookings.GetByPaymentIntentID(ctx, evt.PaymentIntentID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			log.WarnContext(ctx, "refund for unknown payment intent", "payment_intent", evt.PaymentIntentID)
			return nil
		}
		return err
	}

	changed, err := b.Refund()
	if err != nil {
		log.WarnContext(ctx, "refund for booking that was never paid",
			"booking_id", b.ID, "payment_status", b.PaymentStatus)
		return nil
	}
	if !changed {
		return nil
	}

	if err := s.bookings.UpdateState(ctx, b); err != nil {
		return fmt.Errorf("refund booking %d: %w", b.ID, err)
	}
	log.InfoContext(ctx, "booking refunded", "booking_id", b.ID)
	return nil
}

// lookup loads the booking an event refers to. ok is false when processing
// should stop; err is then non-nil only for failures worth a redelivery.
func (s *Service) lookup(ctx context.Context, log *logger.Logger, bookingID int64) (*booking.Booking, bool, error) {
	if bookingID == 0 {
		log.WarnContext(ctx, "webhook event without booking reference")
		return nil, false, nil
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			log.WarnContext(ctx, "webhook event for unknown booking", "booking_id", bookingID)
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func rentalDescription(model string, dates booking.DateRange) string {
	unit := "days"
	if dates.Days() == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s rental, %d %s (%s to %s)", model, dates.Days(), unit,
		dates.Start.Format(request.DateLayout), dates.End.Format(request.DateLayout))
}

func (s *Service) notifyPaid(ctx context.Context, b *booking.Booking) {
	model := fmt.Sprintf("Vehicle #%d", b.VehicleID)
	if v, err := s.vehicles.GetByID(ctx, b.VehicleID); err == nil {
		model = v.Model
	}

	if err := s.notifier.Notify(ctx, notify.PaymentConfirmed(booking.Details(b, model))); err != nil {
		s.log.WarnContext(ctx, "payment confirmation notification failed", "booking_id", b.ID, "error", err)
	}
}
