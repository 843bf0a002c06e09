package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := NewDateRange(day(start), day(end))
	require.NoError(t, err)
	return r
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange(time.Date(2026, 2, 1, 15, 30, 0, 0, time.UTC), day("2026-02-05"))
	require.NoError(t, err)
	assert.Equal(t, day("2026-02-01"), r.Start)
	assert.Equal(t, 5, r.Days())

	single, err := NewDateRange(day("2026-02-01"), day("2026-02-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, single.Days())

	_, err = NewDateRange(day("2026-02-06"), day("2026-02-05"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapsIsInclusive(t *testing.T) {
	existing := mustRange(t, "2026-02-01", "2026-02-05")

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"touches end day", "2026-02-05", "2026-02-07", true},
		{"day after end", "2026-02-06", "2026-02-07", false},
		{"touches start day", "2026-01-28", "2026-02-01", true},
		{"day before start", "2026-01-28", "2026-01-31", false},
		{"inside", "2026-02-02", "2026-02-03", true},
		{"covers", "2026-01-01", "2026-03-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRange(t, tt.start, tt.end)
			assert.Equal(t, tt.want, existing.Overlaps(r))
			assert.Equal(t, tt.want, r.Overlaps(existing))
		})
	}
}

func newPending() *Booking {
	return &Booking{ID: 1, Status: StatusPending, PaymentStatus: PaymentUnpaid}
}

func TestPaymentHappyPath(t *testing.T) {
	b := newPending()

	require.NoError(t, b.BeginCheckout("cs_1"))
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.Equal(t, "cs_1", *b.CheckoutSessionID)

	changed, err := b.ConfirmPayment("pi_1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "pi_1", *b.PaymentIntentID)
}

func TestConfirmPaymentReplayIsNoop(t *testing.T) {
	b := newPending()
	require.NoError(t, b.BeginCheckout("cs_1"))
	_, err := b.ConfirmPayment("pi_1")
	require.NoError(t, err)

	changed, err := b.ConfirmPayment("pi_1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
}

func TestConfirmPaymentFillsMissingIntent(t *testing.T) {
	b := &Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid}

	changed, err := b.ConfirmPayment("pi_late")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "pi_late", *b.PaymentIntentID)
}

func TestConfirmPaymentWithoutCheckout(t *testing.T) {
	// The provider is the source of truth: a completed session confirms even
	// if the session id was never stored.
	b := newPending()

	changed, err := b.ConfirmPayment("")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, b.PaymentIntentID)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
}

func TestConfirmPaymentRejectsCancelled(t *testing.T) {
	b := newPending()
	require.NoError(t, b.Cancel())

	_, err := b.ConfirmPayment("pi_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestBeginCheckout(t *testing.T) {
	b := newPending()
	require.NoError(t, b.BeginCheckout("cs_1"))
	require.NoError(t, b.BeginCheckout("cs_2"))
	assert.Equal(t, "cs_2", *b.CheckoutSessionID)

	_, err := b.ConfirmPayment("pi_1")
	require.NoError(t, err)
	assert.ErrorIs(t, b.BeginCheckout("cs_3"), ErrAlreadyPaid)

	cancelled := newPending()
	require.NoError(t, cancelled.Cancel())
	assert.ErrorIs(t, cancelled.BeginCheckout("cs_1"), ErrInvalidTransition)
}

func TestReleaseCheckout(t *testing.T) {
	b := newPending()
	assert.False(t, b.ReleaseCheckout())

	require.NoError(t, b.BeginCheckout("cs_1"))
	assert.True(t, b.ReleaseCheckout())
	assert.Equal(t, PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, StatusPending, b.Status)

	paid := newPending()
	_, err := paid.ConfirmPayment("pi_1")
	require.NoError(t, err)
	assert.False(t, paid.ReleaseCheckout())
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)
}

func TestCancel(t *testing.T) {
	checkout := newPending()
	require.NoError(t, checkout.BeginCheckout("cs_1"))
	require.NoError(t, checkout.Cancel())
	assert.Equal(t, StatusCancelled, checkout.Status)
	assert.Equal(t, PaymentUnpaid, checkout.PaymentStatus)

	// Cancelling twice is harmless.
	require.NoError(t, checkout.Cancel())

	paid := newPending()
	_, err := paid.ConfirmPayment("pi_1")
	require.NoError(t, err)
	require.NoError(t, paid.Cancel())
	assert.Equal(t, StatusCancelled, paid.Status)
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)

	done := &Booking{Status: StatusCompleted, PaymentStatus: PaymentPaid}
	assert.ErrorIs(t, done.Cancel(), ErrInvalidTransition)
}

func TestRefund(t *testing.T) {
	unpaid := newPending()
	_, err := unpaid.Refund()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	b := newPending()
	_, err = b.ConfirmPayment("pi_1")
	require.NoError(t, err)

	changed, err := b.Refund()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, StatusCancelled, b.Status)

	changed, err = b.Refund()
	require.NoError(t, err)
	assert.False(t, changed)

	// Never back to paid once refunded.
	_, err = b.ConfirmPayment("pi_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
