package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/ev-rental-backend/internal/db"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
)

type Repository interface {
	ConfirmedRangeReader

	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// UpdateState persists rental status, payment status and the provider
	// references. Other columns are never rewritten after creation.
	UpdateState(ctx context.Context, booking *Booking) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"id", "vehicle_id", "user_id", "customer_name", "customer_email", "customer_phone",
	"start_date", "end_date", "total_price::text", "status", "payment_status", "notes",
	"stripe_checkout_session_id", "stripe_payment_intent_id", "created_at", "updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("vehicle_id", "user_id", "customer_name", "customer_email", "customer_phone",
			"start_date", "end_date", "total_price", "status", "payment_status", "notes").
		Values(b.VehicleID, b.UserID, b.CustomerName, b.CustomerEmail, b.CustomerPhone,
			b.Dates.Start, b.Dates.End, b.TotalPrice.String(), b.Status, b.PaymentStatus, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation &&
			strings.Contains(pgErr.ConstraintName, "vehicle") {
			return ErrVehicleNotFound
		}
		return db.Classify(err, "create booking")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"stripe_payment_intent_id": paymentIntentID})
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Eq) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings")

	if filter.UserID != nil {
		query = query.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.VehicleID != 0 {
		query = query.Where(squirrel.Eq{"vehicle_id": filter.VehicleID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.PaymentStatus != "" {
		query = query.Where(squirrel.Eq{"payment_status": filter.PaymentStatus})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Classify(err, "list bookings")
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify(err, "list bookings")
	}

	return bookings, total, nil
}

func (r *pgxRepository) ConfirmedRanges(ctx context.Context, vehicleID int64) ([]DateRange, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_date", "end_date").
		From("public.bookings").
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"status": StatusConfirmed}).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build confirmed ranges query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err, "list confirmed ranges")
	}
	defer rows.Close()

	var ranges []DateRange
	for rows.Next() {
		var dr DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return nil, fmt.Errorf("scan confirmed range failed: %w", err)
		}
		ranges = append(ranges, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err, "list confirmed ranges")
	}
	return ranges, nil
}

func (r *pgxRepository) UpdateState(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("payment_status", b.PaymentStatus).
		Set("stripe_checkout_session_id", b.CheckoutSessionID).
		Set("stripe_payment_intent_id", b.PaymentIntentID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return db.Classify(err, "update booking")
	}
	return nil
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b     Booking
		total string
	)
	dest := []any{
		&b.ID, &b.VehicleID, &b.UserID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.Dates.Start, &b.Dates.End, &total, &b.Status, &b.PaymentStatus, &b.Notes,
		&b.CheckoutSessionID, &b.PaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, db.Classify(err, "scan booking")
	}

	price, err := money.Parse(total)
	if err != nil {
		return nil, fmt.Errorf("booking %d total price: %w", b.ID, err)
	}
	b.TotalPrice = price
	return &b, nil
}
