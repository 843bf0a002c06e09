package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s, ok := args.Get(0).(*CheckoutSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	args := m.Called(payload, signature)
	if e, ok := args.Get(0).(*Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingNotifier struct {
	msgs []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.msgs = append(n.msgs, msg)
	return nil
}

type fixture struct {
	bookings *booking.MemoryRepository
	gateway  *mockGateway
	notifier *recordingNotifier
	svc      *Service
	booking  *booking.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vehicles := vehicle.NewMemoryRepository(&vehicle.Vehicle{Model: "Model 3", DailyRate: money.Dollars(149), Available: true})
	f := &fixture{
		bookings: booking.NewMemoryRepository(),
		gateway:  &mockGateway{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewService(f.bookings, vehicles, f.gateway, f.notifier, logger.Nop(), Config{
		DepositCents: 25000,
		Currency:     "usd",
		PublicOrigin: "https://rent.example.com",
	})

	price, err := money.Parse("596.00")
	require.NoError(t, err)
	dates, err := booking.NewDateRange(mustDate("2026-02-01"), mustDate("2026-02-05"))
	require.NoError(t, err)
	f.booking = &booking.Booking{
		VehicleID:     1,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "+15551234567",
		Dates:         dates,
		TotalPrice:    price,
		Status:        booking.StatusPending,
		PaymentStatus: booking.PaymentUnpaid,
	}
	require.NoError(t, f.bookings.Create(context.Background(), f.booking))
	return f
}

func (f *fixture) stored(t *testing.T) *booking.Booking {
	t.Helper()
	b, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	return b
}

// expectEvent makes the gateway verify signature "sig" for payload and return evt.
func (f *fixture) expectEvent(payload string, evt *Event) {
	f.gateway.On("ParseEvent", []byte(payload), "sig").Return(evt, nil)
}

func TestCreateCheckoutChargesRentalPlusDeposit(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(r CheckoutRequest) bool {
		return r.BookingID == f.booking.ID && r.RentalCents == 59600 && r.DepositCents == 25000
	})).Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil).Once()

	res, err := f.svc.CreateCheckout(context.Background(), f.booking.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(84600), res.AmountCents)
	assert.Equal(t, "cs_1", res.SessionID)
	assert.Equal(t, "https://checkout.example/cs_1", res.URL)

	req := f.gateway.Calls[0].Arguments.Get(1).(CheckoutRequest)
	assert.Equal(t, int64(84600), req.TotalCents())
	assert.Equal(t, "jane@example.com", req.CustomerEmail)
	assert.Contains(t, req.SuccessURL, "https://rent.example.com/booking/success?booking_id=1")
	assert.Equal(t, "Model 3 rental, 5 days (2026-02-01 to 2026-02-05)", req.Description)

	b := f.stored(t)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.Equal(t, "cs_1", *b.CheckoutSessionID)
	f.gateway.AssertExpectations(t)
}

func TestRentalDescriptionSingleDay(t *testing.T) {
	dates, err := booking.NewDateRange(mustDate("2026-03-10"), mustDate("2026-03-10"))
	require.NoError(t, err)
	assert.Equal(t, "Model Y rental, 1 day (2026-03-10 to 2026-03-10)", rentalDescription("Model Y", dates))
}

func TestCreateCheckoutErrors(t *testing.T) {
	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateCheckout(context.Background(), 99)
		assert.ErrorIs(t, err, booking.ErrNotFound)
		f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		f := newFixture(t)
		orphan := *f.booking
		orphan.VehicleID = 42
		require.NoError(t, f.bookings.Create(context.Background(), &orphan))

		_, err := f.svc.CreateCheckout(context.Background(), orphan.ID)
		assert.ErrorIs(t, err, booking.ErrVehicleNotFound)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.booking.ConfirmPayment("pi_1")
		require.NoError(t, err)
		require.NoError(t, f.bookings.UpdateState(context.Background(), f.booking))

		_, err = f.svc.CreateCheckout(context.Background(), f.booking.ID)
		assert.ErrorIs(t, err, booking.ErrAlreadyPaid)
	})

	t.Run("provider down", func(t *testing.T) {
		f := newFixture(t)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, errors.New("dial tcp: connection refused"))

		_, err := f.svc.CreateCheckout(context.Background(), f.booking.ID)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
		assert.Equal(t, booking.PaymentUnpaid, f.stored(t).PaymentStatus)
	})
}

func completed(bookingID int64) *Event {
	return &Event{
		ID:              "evt_1",
		Type:            EventCheckoutCompleted,
		BookingID:       bookingID,
		SessionID:       "cs_1",
		PaymentIntentID: "pi_1",
		Paid:            true,
	}
}

func TestCheckoutCompletedConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("completed", completed(f.booking.ID))

	ack, err := f.svc.HandleEvent(context.Background(), []byte("completed"), "sig")
	require.NoError(t, err)
	assert.False(t, ack.Verified)

	b := f.stored(t)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "pi_1", *b.PaymentIntentID)

	require.Len(t, f.notifier.msgs, 1)
	assert.Equal(t, notify.KindPaymentConfirmed, f.notifier.msgs[0].Kind)
	assert.Contains(t, f.notifier.msgs[0].Content, "Total Paid: $596.00")
}

func TestCheckoutCompletedReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("completed", completed(f.booking.ID))

	for i := 0; i < 2; i++ {
		_, err := f.svc.HandleEvent(context.Background(), []byte("completed"), "sig")
		require.NoError(t, err)

		b := f.stored(t)
		assert.Equal(t, booking.StatusConfirmed, b.Status)
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	}
	assert.Len(t, f.notifier.msgs, 1)
}

func TestInvalidSignatureChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("ParseEvent", []byte("forged"), "bad").
		Return(nil, errors.Join(ErrInvalidSignature, errors.New("no matching v1 signature")))

	_, err := f.svc.HandleEvent(context.Background(), []byte("forged"), "bad")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	b := f.stored(t)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus)
	assert.Empty(t, f.notifier.msgs)
}

func TestMissingSignature(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.HandleEvent(context.Background(), []byte("{}"), "")
	assert.ErrorIs(t, err, ErrMissingSignature)
	f.gateway.AssertNotCalled(t, "ParseEvent", mock.Anything, mock.Anything)
}

func TestUnknownBookingIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("ghost", completed(999))

	ack, err := f.svc.HandleEvent(context.Background(), []byte("ghost"), "sig")
	require.NoError(t, err)
	assert.False(t, ack.Verified)
	assert.Equal(t, booking.PaymentUnpaid, f.stored(t).PaymentStatus)
	assert.Empty(t, f.notifier.msgs)
}

func TestTestEventIsVerifiedWithoutProcessing(t *testing.T) {
	f := newFixture(t)
	evt := completed(f.booking.ID)
	evt.ID = "evt_test_123"
	evt.Test = true
	f.expectEvent("test", evt)

	ack, err := f.svc.HandleEvent(context.Background(), []byte("test"), "sig")
	require.NoError(t, err)
	assert.True(t, ack.Verified)
	assert.Equal(t, booking.PaymentUnpaid, f.stored(t).PaymentStatus)
}

func TestUnhandledAndInformationalEventsAreAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("a", &Event{ID: "evt_a", Type: EventPaymentSucceeded, PaymentIntentID: "pi_1"})
	f.expectEvent("b", &Event{ID: "evt_b", Type: EventPaymentFailed, PaymentIntentID: "pi_1"})
	f.expectEvent("c", &Event{ID: "evt_c", Type: "customer.created"})

	for _, p := range []string{"a", "b", "c"} {
		ack, err := f.svc.HandleEvent(context.Background(), []byte(p), "sig")
		require.NoError(t, err)
		assert.False(t, ack.Verified)
	}
	assert.Equal(t, booking.PaymentUnpaid, f.stored(t).PaymentStatus)
}

func TestStoreFailureRequestsRedelivery(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("completed", completed(f.booking.ID))
	f.bookings.Err = errors.New("connection reset")

	_, err := f.svc.HandleEvent(context.Background(), []byte("completed"), "sig")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestCompletedWithoutFundsWaitsForAsyncResult(t *testing.T) {
	f := newFixture(t)
	evt := completed(f.booking.ID)
	evt.Paid = false
	f.expectEvent("delayed", evt)
	f.expectEvent("async-ok", &Event{
		ID: "evt_2", Type: EventAsyncPaymentSucceeded, BookingID: f.booking.ID,
		SessionID: "cs_1", PaymentIntentID: "pi_1", Paid: true,
	})

	_, err := f.svc.HandleEvent(context.Background(), []byte("delayed"), "sig")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, f.stored(t).Status)

	_, err = f.svc.HandleEvent(context.Background(), []byte("async-ok"), "sig")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, f.stored(t).Status)
}

func TestExpiredCheckoutReleasesBooking(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.booking.BeginCheckout("cs_2"))
	require.NoError(t, f.bookings.UpdateState(context.Background(), f.booking))

	f.expectEvent("old", &Event{ID: "evt_old", Type: EventCheckoutExpired, BookingID: f.booking.ID, SessionID: "cs_1"})
	f.expectEvent("current", &Event{ID: "evt_cur", Type: EventCheckoutExpired, BookingID: f.booking.ID, SessionID: "cs_2"})

	_, err := f.svc.HandleEvent(context.Background(), []byte("old"), "sig")
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPending, f.stored(t).PaymentStatus, "superseded session must not release")

	_, err = f.svc.HandleEvent(context.Background(), []byte("current"), "sig")
	require.NoError(t, err)
	b := f.stored(t)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus)
}

func TestPaymentForCancelledBookingIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.booking.Cancel())
	require.NoError(t, f.bookings.UpdateState(context.Background(), f.booking))
	f.expectEvent("late", completed(f.booking.ID))

	_, err := f.svc.HandleEvent(context.Background(), []byte("late"), "sig")
	require.NoError(t, err)

	b := f.stored(t)
	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus)
	assert.Empty(t, f.notifier.msgs)
}

func TestChargeRefunded(t *testing.T) {
	f := newFixture(t)
	f.expectEvent("completed", completed(f.booking.ID))
	f.expectEvent("partial", &Event{ID: "evt_p", Type: EventChargeRefunded, PaymentIntentID: "pi_1"})
	f.expectEvent("full", &Event{ID: "evt_f", Type: EventChargeRefunded, PaymentIntentID: "pi_1", FullyRefunded: true})
	f.expectEvent("stranger", &Event{ID: "evt_s", Type: EventChargeRefunded, PaymentIntentID: "pi_x", FullyRefunded: true})

	for _, p := range []string{"completed", "partial"} {
		_, err := f.svc.HandleEvent(context.Background(), []byte(p), "sig")
		require.NoError(t, err)
	}
	assert.Equal(t, booking.PaymentPaid, f.stored(t).PaymentStatus)

	for _, p := range []string{"full", "stranger", "full"} {
		_, err := f.svc.HandleEvent(context.Background(), []byte(p), "sig")
		require.NoError(t, err)
	}
	b := f.stored(t)
	assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, booking.StatusCancelled, b.Status)
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
