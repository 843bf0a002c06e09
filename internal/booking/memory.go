package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]Booking

	// VehicleExists, when set, rejects bookings for unknown vehicles the way
	// the foreign key does in Postgres.
	VehicleExists func(id int64) bool

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[int64]Booking)}
}

func (r *MemoryRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.VehicleExists != nil && !r.VehicleExists(b.VehicleID) {
		return ErrVehicleNotFound
	}

	r.nextID++
	now := time.Now().UTC()
	b.ID = r.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = *b
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	for _, b := range r.bookings {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == paymentIntentID {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	var matched []*Booking
	for _, b := range r.bookings {
		if filter.UserID != nil && (b.UserID == nil || *b.UserID != *filter.UserID) {
			continue
		}
		if filter.VehicleID != 0 && b.VehicleID != filter.VehicleID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && b.PaymentStatus != filter.PaymentStatus {
			continue
		}
		b := b
		matched = append(matched, &b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []*Booking{}, total, nil
	}
	end := min(start+filter.PageSize, total)
	return matched[start:end], total, nil
}

func (r *MemoryRepository) ConfirmedRanges(ctx context.Context, vehicleID int64) ([]DateRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var ranges []DateRange
	for _, b := range r.bookings {
		if b.VehicleID == vehicleID && b.Status == StatusConfirmed {
			ranges = append(ranges, b.Dates)
		}
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })
	return ranges, nil
}

func (r *MemoryRepository) UpdateState(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = b.Status
	stored.PaymentStatus = b.PaymentStatus
	stored.CheckoutSessionID = b.CheckoutSessionID
	stored.PaymentIntentID = b.PaymentIntentID
	stored.UpdatedAt = time.Now().UTC()
	r.bookings[b.ID] = stored

	b.UpdatedAt = stored.UpdatedAt
	return nil
}
