package vehicle

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/ev-rental-backend/internal/db"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
)

type Repository interface {
	// ListAvailable returns vehicles flagged as available, ordered by id.
	ListAvailable(ctx context.Context) ([]*Vehicle, error)
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
	Create(ctx context.Context, v *Vehicle) error
	UpdateImage(ctx context.Context, id int64, imageURL *string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var vehicleColumns = []string{
	"id", "model", "year", "color", "range_miles", "acceleration", "top_speed_mph",
	"daily_rate::text", "weekly_rate::text", "image_url", "description", "features",
	"available", "created_at", "updated_at",
}

func (r *pgxRepository) ListAvailable(ctx context.Context) ([]*Vehicle, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(vehicleColumns...).
		From("public.vehicles").
		Where(squirrel.Eq{"available": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list vehicles query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err, "list vehicles")
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err, "list vehicles")
	}
	return vehicles, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(vehicleColumns...).
		From("public.vehicles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get vehicle query failed: %w", err)
	}

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *pgxRepository) Create(ctx context.Context, v *Vehicle) error {
	var weekly *string
	if v.WeeklyRate != nil {
		s := v.WeeklyRate.String()
		weekly = &s
	}
	features := v.Features
	if features == nil {
		features = []string{}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.vehicles").
		Columns("model", "year", "color", "range_miles", "acceleration", "top_speed_mph",
			"daily_rate", "weekly_rate", "image_url", "description", "features", "available").
		Values(v.Model, v.Year, v.Color, v.RangeMiles, v.Acceleration, v.TopSpeedMph,
			v.DailyRate.String(), weekly, v.ImageURL, v.Description, features, v.Available).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create vehicle query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return db.Classify(err, "create vehicle")
	}
	return nil
}

func (r *pgxRepository) UpdateImage(ctx context.Context, id int64, imageURL *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.vehicles").
		Set("image_url", imageURL).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update vehicle image query failed: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return db.Classify(err, "update vehicle image")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var (
		v      Vehicle
		daily  string
		weekly *string
	)
	if err := row.Scan(
		&v.ID, &v.Model, &v.Year, &v.Color, &v.RangeMiles, &v.Acceleration, &v.TopSpeedMph,
		&daily, &weekly, &v.ImageURL, &v.Description, &v.Features,
		&v.Available, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, db.Classify(err, "scan vehicle")
	}

	var err error
	if v.DailyRate, err = money.Parse(daily); err != nil {
		return nil, fmt.Errorf("vehicle %d daily rate: %w", v.ID, err)
	}
	if weekly != nil {
		w, err := money.Parse(*weekly)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d weekly rate: %w", v.ID, err)
		}
		v.WeeklyRate = &w
	}
	return &v, nil
}
