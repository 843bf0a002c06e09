package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testEventPrefix = "evt_test_"

// StripeGateway implements Gateway with Stripe Checkout.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{client: sc, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	lineItems := []*stripe.CheckoutSessionLineItemParams{
		lineItem(req.Currency, req.Description, req.RentalCents),
	}
	if req.DepositCents > 0 {
		lineItems = append(lineItems, lineItem(req.Currency, "Refundable security deposit", req.DepositCents))
	}

	bookingRef := strconv.FormatInt(req.BookingID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(bookingRef),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems:         lineItems,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingRef)

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func lineItem(currency, name string, cents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(cents),
		},
		Quantity: stripe.Int64(1),
	}
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	raw, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	evt := &Event{
		ID:   raw.ID,
		Type: string(raw.Type),
		Test: strings.HasPrefix(raw.ID, testEventPrefix),
	}
	if evt.Test || raw.Data == nil {
		return evt, nil
	}

	switch evt.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed, EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session of %s: %w", raw.ID, err)
		}
		evt.SessionID = sess.ID
		evt.Paid = sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusUnpaid
		if sess.PaymentIntent != nil {
			evt.PaymentIntentID = sess.PaymentIntent.ID
		}
		if sess.ClientReferenceID != "" {
			// A malformed reference leaves BookingID zero; the service logs it.
			evt.BookingID, _ = strconv.ParseInt(sess.ClientReferenceID, 10, 64)
		}

	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(raw.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent of %s: %w", raw.ID, err)
		}
		evt.PaymentIntentID = pi.ID

	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(raw.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge of %s: %w", raw.ID, err)
		}
		evt.FullyRefunded = ch.Refunded
		if ch.PaymentIntent != nil {
			evt.PaymentIntentID = ch.PaymentIntent.ID
		}
	}
	return evt, nil
}
