package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/ev-rental-backend/internal/auth"
	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/validation"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type testEnv struct {
	router *gin.Engine
	repo   *booking.MemoryRepository
	jwt    *auth.JWTManager
}

func allowAll(c *gin.Context) { c.Next() }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	vehicles := vehicle.NewMemoryRepository(&vehicle.Vehicle{Model: "Model Y", DailyRate: money.Dollars(120), Available: true})
	repo := booking.NewMemoryRepository()
	svc := booking.NewService(repo, vehicles, notify.NewLogNotifier(logger.Nop()), logger.Nop())
	jwt := auth.NewJWTManager("secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.OptionalAuth(jwt), auth.AuthRequired(jwt), allowAll)
	return &testEnv{router: r, repo: repo, jwt: jwt}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func createBody() map[string]any {
	return map[string]any{
		"vehicle_id":     1,
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"customer_phone": "555-123-4567",
		"start_date":     "2026-02-01",
		"end_date":       "2026-02-05",
		"total_price":    "596.00",
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/v1/bookings", createBody(), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Nil(t, resp.UserID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "unpaid", resp.PaymentStatus)
	assert.Equal(t, "2026-02-05", resp.EndDate)
	assert.Equal(t, "596.00", resp.TotalPrice)
}

func TestCreateBookingAttachesUser(t *testing.T) {
	e := newTestEnv(t)
	token, err := e.jwt.GenerateAccessToken(9, "jane@example.com")
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/v1/bookings", createBody(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.UserID)
	assert.Equal(t, int64(9), *resp.UserID)

	w = e.do(http.MethodGet, "/v1/bookings/mine", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)

	body := createBody()
	body["customer_phone"] = "12"
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/v1/bookings", body, "").Code)

	body = createBody()
	body["start_date"] = "2026-02-09"
	w := e.do(http.MethodPost, "/v1/bookings", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start date must not be after end date")

	body = createBody()
	body["vehicle_id"] = 99
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/v1/bookings", body, "").Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	e := newTestEnv(t)
	confirmed := &booking.Booking{
		VehicleID:     1,
		Dates:         booking.DateRange{Start: date("2026-02-01"), End: date("2026-02-05")},
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentPaid,
	}
	require.NoError(t, e.repo.Create(context.Background(), confirmed))

	w := e.do(http.MethodGet, "/v1/bookings/availability?vehicle_id=1&start_date=2026-02-05&end_date=2026-02-07", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	w = e.do(http.MethodGet, "/v1/bookings/availability?vehicle_id=1&start_date=2026-02-06&end_date=2026-02-07", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = e.do(http.MethodGet, "/v1/bookings/availability?vehicle_id=1&start_date=2026-02-07&end_date=2026-02-06", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/v1/bookings/booked-dates?vehicle_id=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[{"start_date":"2026-02-01","end_date":"2026-02-05"}]}`, w.Body.String())
}

func TestPaymentStatusEndpoint(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/bookings", createBody(), "").Code)

	w := e.do(http.MethodGet, "/v1/bookings/1/payment-status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"booking_id":1,"status":"pending","payment_status":"unpaid"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/v1/bookings/2/payment-status", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/v1/bookings/abc/payment-status", nil, "").Code)
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/bookings", createBody(), "").Code)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/v1/bookings", nil, "").Code)

	token, err := e.jwt.GenerateAccessToken(1, "ops@example.com")
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/v1/bookings?status=pending", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = e.do(http.MethodPost, "/v1/bookings/1/cancel", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
