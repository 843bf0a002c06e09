package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/payment"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/response"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = 64 << 10
)

type Handler struct {
	service *payment.Service
	log     *logger.Logger
}

func NewHandler(service *payment.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// POST /v1/payments/checkout
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	res, err := h.service.CreateCheckout(c.Request.Context(), req.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		BookingID:   res.BookingID,
		SessionID:   res.SessionID,
		URL:         res.URL,
		AmountCents: res.AmountCents,
	})
}

// POST /v1/payments/webhook
// The body is read raw: the signature covers the exact bytes sent.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	ack, err := h.service.HandleEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	switch {
	case errors.Is(err, payment.ErrMissingSignature), errors.Is(err, payment.ErrInvalidSignature):
		response.Error(c, err)
		return
	case err != nil:
		h.log.ErrorContext(c.Request.Context(), "webhook processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook handler failed"})
		return
	}

	if ack.Verified {
		c.JSON(http.StatusOK, gin.H{"verified": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
