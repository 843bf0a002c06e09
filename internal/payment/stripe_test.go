package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// sign produces a Stripe-Signature header value for payload.
func sign(payload []byte, secret string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, typ, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, id, typ, object))
}

func TestStripeParseCheckoutCompleted(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_1", EventCheckoutCompleted,
		`{"id":"cs_1","object":"checkout.session","client_reference_id":"5","payment_intent":"pi_1","payment_status":"paid"}`)

	evt, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)
	assert.False(t, evt.Test)
	assert.Equal(t, int64(5), evt.BookingID)
	assert.Equal(t, "cs_1", evt.SessionID)
	assert.Equal(t, "pi_1", evt.PaymentIntentID)
	assert.True(t, evt.Paid)
}

func TestStripeParseUnpaidCompletedSession(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_1", EventCheckoutCompleted,
		`{"id":"cs_1","object":"checkout.session","client_reference_id":"5","payment_status":"unpaid"}`)

	evt, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.False(t, evt.Paid)
	assert.Empty(t, evt.PaymentIntentID)
}

func TestStripeRejectsBadSignatures(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_1", EventCheckoutCompleted, `{"id":"cs_1","client_reference_id":"5"}`)

	_, err := g.ParseEvent(payload, sign(payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	tampered := eventPayload("evt_1", EventCheckoutCompleted, `{"id":"cs_1","client_reference_id":"6"}`)
	_, err = g.ParseEvent(tampered, sign(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = g.ParseEvent(payload, "garbage")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeRecognisesTestEvents(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_test_abc", EventCheckoutCompleted, `{"id":"cs_1","client_reference_id":"5"}`)

	evt, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.True(t, evt.Test)
	assert.Zero(t, evt.BookingID)
}

func TestStripeParseChargeRefunded(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_2", EventChargeRefunded,
		`{"id":"ch_1","object":"charge","payment_intent":"pi_1","refunded":true}`)

	evt, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "pi_1", evt.PaymentIntentID)
	assert.True(t, evt.FullyRefunded)
}

func TestStripeMalformedReferenceLeavesBookingUnset(t *testing.T) {
	g := NewStripeGateway("sk_test_x", testWebhookSecret)
	payload := eventPayload("evt_3", EventCheckoutExpired,
		`{"id":"cs_9","object":"checkout.session","client_reference_id":"abc"}`)

	evt, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Zero(t, evt.BookingID)
	assert.Equal(t, "cs_9", evt.SessionID)
}
