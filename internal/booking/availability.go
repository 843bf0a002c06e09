package booking

import (
	"context"
)

// ConfirmedRangeReader is the read side the Checker needs from storage.
type ConfirmedRangeReader interface {
	// ConfirmedRanges returns the date ranges of confirmed bookings for vehicleID.
	ConfirmedRanges(ctx context.Context, vehicleID int64) ([]DateRange, error)
}

// Checker answers whether a vehicle is free for a date range.
//
// Only confirmed bookings block a range. Pending bookings do not hold the slot
// until payment succeeds, so two customers can both pass the check for the
// same dates; operators reconcile if both end up paying.
type Checker struct {
	store ConfirmedRangeReader
}

func NewChecker(store ConfirmedRangeReader) *Checker {
	return &Checker{store: store}
}

// IsAvailable reports whether no confirmed booking of vehicleID overlaps r.
func (c *Checker) IsAvailable(ctx context.Context, vehicleID int64, r DateRange) (bool, error) {
	if r.Start.After(r.End) {
		return false, ErrInvalidRange
	}

	ranges, err := c.store.ConfirmedRanges(ctx, vehicleID)
	if err != nil {
		return false, err
	}

	for _, existing := range ranges {
		if existing.Overlaps(r) {
			return false, nil
		}
	}
	return true, nil
}
