package http

type CreateCheckoutRequest struct {
	BookingID int64 `json:"booking_id" binding:"required,min=1"`
}

type CheckoutResponse struct {
	BookingID   int64  `json:"booking_id"`
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	AmountCents int64  `json:"amount_cents"`
}
