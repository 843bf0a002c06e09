package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/validation"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type CreateRequest struct {
	VehicleID     int64
	UserID        *int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
	TotalPrice    string
	Notes         *string
}

// PaymentState is what a client polls after returning from the hosted checkout.
type PaymentState struct {
	BookingID     int64
	Status        RentalStatus
	PaymentStatus PaymentStatus
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	PaymentStatus(ctx context.Context, id int64) (*PaymentState, error)
	// BookedDates never fails: store errors degrade to no blocked dates.
	BookedDates(ctx context.Context, vehicleID int64) ([]DateRange, error)
	IsAvailable(ctx context.Context, vehicleID int64, r DateRange) (bool, error)
	ListMine(ctx context.Context, userID int64, page, pageSize int) ([]*Booking, int, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Cancel(ctx context.Context, id int64) (*Booking, error)
}

type vehicleReader interface {
	GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error)
}

type service struct {
	repo     Repository
	checker  *Checker
	vehicles vehicleReader
	notifier notify.Notifier
	log      *logger.Logger
}

func NewService(repo Repository, vehicles vehicleReader, notifier notify.Notifier, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		checker:  NewChecker(repo),
		vehicles: vehicles,
		notifier: notifier,
		log:      log,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// 1. Validate input
	dates, err := NewDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	price, err := money.ParseMax(req.TotalPrice, money.MaxNumeric10)
	if err != nil || price <= 0 {
		return nil, ErrInvalidPrice
	}

	phone := validation.NormalizePhone(req.CustomerPhone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	// 2. Validate vehicle exists
	v, err := s.vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	// 3. Check availability against confirmed bookings. Not transactional:
	// a concurrent request for the same dates may pass this check too.
	available, err := s.checker.IsAvailable(ctx, req.VehicleID, dates)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUnavailable
	}

	// 4. Persist
	b := &Booking{
		VehicleID:     req.VehicleID,
		UserID:        req.UserID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone: phone,
		Dates:         dates,
		TotalPrice:    price,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking created",
		"booking_id", b.ID,
		"vehicle_id", b.VehicleID,
		"start", b.Dates.Start.Format(time.DateOnly),
		"end", b.Dates.End.Format(time.DateOnly),
	)

	// 5. Tell the operator. Delivery problems never undo the booking.
	if err := s.notifier.Notify(ctx, notify.NewBooking(Details(b, v.Model))); err != nil {
		s.log.WarnContext(ctx, "new booking notification failed", "booking_id", b.ID, "error", err)
	}

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) PaymentStatus(ctx context.Context, id int64) (*PaymentState, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PaymentState{BookingID: b.ID, Status: b.Status, PaymentStatus: b.PaymentStatus}, nil
}

func (s *service) BookedDates(ctx context.Context, vehicleID int64) ([]DateRange, error) {
	ranges, err := s.repo.ConfirmedRanges(ctx, vehicleID)
	if err != nil {
		s.log.ErrorContext(ctx, "list booked dates failed, serving none", "vehicle_id", vehicleID, "error", err)
		return []DateRange{}, nil
	}
	if ranges == nil {
		ranges = []DateRange{}
	}
	return ranges, nil
}

func (s *service) IsAvailable(ctx context.Context, vehicleID int64, r DateRange) (bool, error) {
	return s.checker.IsAvailable(ctx, vehicleID, r)
}

func (s *service) ListMine(ctx context.Context, userID int64, page, pageSize int) ([]*Booking, int, error) {
	return s.repo.List(ctx, Filter{UserID: &userID, Page: page, PageSize: pageSize})
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Cancel(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := b.Status
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if prev == b.Status {
		return b, nil
	}

	if err := s.repo.UpdateState(ctx, b); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "booking cancelled",
		"booking_id", b.ID,
		"previous_status", prev,
		"payment_status", b.PaymentStatus,
	)
	return b, nil
}

// Details builds the notification payload for b.
func Details(b *Booking, vehicleModel string) notify.BookingDetails {
	return notify.BookingDetails{
		BookingID:     b.ID,
		VehicleModel:  vehicleModel,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		StartDate:     b.Dates.Start,
		EndDate:       b.Dates.End,
		Total:         b.TotalPrice.String(),
	}
}
