package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/payment"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

const secret = "whsec_handler_test"

func sign(payload []byte) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEvent(id string, bookingID int64) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":"checkout.session.completed","data":{"object":`+
		`{"id":"cs_1","object":"checkout.session","client_reference_id":"%d","payment_intent":"pi_1","payment_status":"paid"}}}`,
		id, bookingID))
}

func newRouter(t *testing.T) (*gin.Engine, *booking.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	vehicles := vehicle.NewMemoryRepository(&vehicle.Vehicle{Model: "Model 3", DailyRate: money.Dollars(149), Available: true})
	bookings := booking.NewMemoryRepository()
	price, err := money.Parse("596.00")
	require.NoError(t, err)
	require.NoError(t, bookings.Create(context.Background(), &booking.Booking{
		VehicleID:     1,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "+15551234567",
		Dates:         booking.DateRange{Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)},
		TotalPrice:    price,
		Status:        booking.StatusPending,
		PaymentStatus: booking.PaymentPending,
	}))

	log := logger.Nop()
	svc := payment.NewService(bookings, vehicles, payment.NewStripeGateway("sk_test_x", secret),
		notify.NewLogNotifier(log), log, payment.Config{DepositCents: 25000})

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, log))
	return r, bookings
}

func postWebhook(r http.Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookConfirmsBooking(t *testing.T) {
	r, bookings := newRouter(t)
	payload := completedEvent("evt_1", 1)

	for i := 0; i < 2; i++ {
		w := postWebhook(r, payload, sign(payload))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"received":true}`, w.Body.String())

		b, err := bookings.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, b.Status)
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	r, bookings := newRouter(t)
	payload := completedEvent("evt_1", 1)

	w := postWebhook(r, payload, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())

	w = postWebhook(r, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing signature"}`, w.Body.String())

	b, err := bookings.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, b.Status)
}

func TestWebhookTestEvent(t *testing.T) {
	r, _ := newRouter(t)
	payload := completedEvent("evt_test_1", 1)

	w := postWebhook(r, payload, sign(payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"verified":true}`, w.Body.String())
}

func TestWebhookUnknownBookingIsAcknowledged(t *testing.T) {
	r, _ := newRouter(t)
	payload := completedEvent("evt_2", 404)

	w := postWebhook(r, payload, sign(payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestWebhookProcessingFailureIs500(t *testing.T) {
	r, bookings := newRouter(t)
	bookings.Err = fmt.Errorf("connection reset")
	payload := completedEvent("evt_3", 1)

	w := postWebhook(r, payload, sign(payload))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Webhook handler failed"}`, w.Body.String())
}

func TestCheckoutRejectsPaidBooking(t *testing.T) {
	r, bookings := newRouter(t)
	b, err := bookings.GetByID(context.Background(), 1)
	require.NoError(t, err)
	_, err = b.ConfirmPayment("pi_1")
	require.NoError(t, err)
	require.NoError(t, bookings.UpdateState(context.Background(), b))

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/checkout", bytes.NewBufferString(`{"booking_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"booking is already paid"}`, w.Body.String())
}
