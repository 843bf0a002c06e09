package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/auth"
	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// POST /v1/bookings
// Anonymous callers may book; a valid token attaches the booking to the user.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	dates, ok := parseRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	createReq := booking.CreateRequest{
		VehicleID:     req.VehicleID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartDate:     dates.Start,
		EndDate:       dates.End,
		TotalPrice:    req.TotalPrice,
		Notes:         req.Notes,
	}
	if userID, ok := auth.GetUserID(c); ok {
		createReq.UserID = &userID
	}

	b, err := h.service.Create(c.Request.Context(), createReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// GET /v1/bookings/availability
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	dates, ok := parseRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	available, err := h.service.IsAvailable(c.Request.Context(), req.VehicleID, dates)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

// GET /v1/bookings/booked-dates
func (h *Handler) BookedDates(c *gin.Context) {
	var req BookedDatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	ranges, err := h.service.BookedDates(c.Request.Context(), req.VehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]DateRangeResponse, len(ranges))
	for i, r := range ranges {
		items[i] = DateRangeResponse{
			StartDate: r.Start.Format(request.DateLayout),
			EndDate:   r.End.Format(request.DateLayout),
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /v1/bookings/:id/payment-status
func (h *Handler) PaymentStatus(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	state, err := h.service.PaymentStatus(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentStatusResponse{
		BookingID:     state.BookingID,
		Status:        string(state.Status),
		PaymentStatus: string(state.PaymentStatus),
	})
}

// GET /v1/bookings/mine
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	bookings, total, err := h.service.ListMine(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(bookings), req.Page, req.PageSize, total))
}

// GET /v1/bookings
// Admin only.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	filter := booking.Filter{
		VehicleID:     req.VehicleID,
		Status:        booking.RentalStatus(req.Status),
		PaymentStatus: booking.PaymentStatus(req.PaymentStatus),
		Page:          req.Page,
		PageSize:      req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(bookings), req.Page, req.PageSize, total))
}

// POST /v1/bookings/:id/cancel
// Admin only.
func (h *Handler) Cancel(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func parseRange(c *gin.Context, start, end string) (booking.DateRange, bool) {
	startDate, err := request.ParseDate(start)
	if err != nil {
		response.BadRequest(c, "invalid start_date", err)
		return booking.DateRange{}, false
	}
	endDate, err := request.ParseDate(end)
	if err != nil {
		response.BadRequest(c, "invalid end_date", err)
		return booking.DateRange{}, false
	}

	dates, err := booking.NewDateRange(startDate, endDate)
	if err != nil {
		response.Error(c, err)
		return booking.DateRange{}, false
	}
	return dates, true
}

func toResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
