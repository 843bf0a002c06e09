package territory

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
	// List returns territories ordered by state and city. An empty status
	// returns all of them.
	List(ctx context.Context, status Status) ([]*Territory, error)
	GetByID(ctx context.Context, id int64) (*Territory, error)
	Create(ctx context.Context, t *Territory) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var territoryColumns = []string{
	"id", "name", "city", "state", "zip_codes", "population", "status",
	"investment_min::text", "investment_max::text", "projected_revenue::text",
	"latitude::float8", "longitude::float8", "created_at", "updated_at",
}

func (r *pgxRepository) List(ctx context.Context, status Status) ([]*Territory, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(territoryColumns...).From("public.territories")
	if status != "" {
		query = query.Where(squirrel.Eq{"status": status})
	}

	sql, args, err := query.OrderBy("state ASC", "city ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list territories query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Classify(err, "list territories")
	}
	defer rows.Close()

	var territories []*Territory
	for rows.Next() {
		t, err := scanTerritory(rows)
		if err != nil {
			return nil, err
		}
		territories = append(territories, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err, "list territories")
	}
	return territories, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Territory, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(territoryColumns...).
		From("public.territories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get territory query failed: %w", err)
	}

	t, err := scanTerritory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Territory) error {
	zips := t.ZipCodes
	if zips == nil {
		zips = []string{}
	}
	if t.Status == "" {
		t.Status = StatusAvailable
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.territories").
		Columns("name", "city", "state", "zip_codes", "population", "status",
			"investment_min", "investment_max", "projected_revenue", "latitude", "longitude").
		Values(t.Name, t.City, t.State, zips, t.Population, t.Status,
			money.Nullable(t.InvestmentMin), money.Nullable(t.InvestmentMax), money.Nullable(t.ProjectedRevenue),
			t.Latitude, t.Longitude).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create territory query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return db.Classify(err, "create territory")
	}
	return nil
}

func scanTerritory(row pgx.Row) (*Territory, error) {
	var (
		t                       Territory
		minInv, maxInv, revenue *string
	)
	if err := row.Scan(
		&t.ID, &t.Name, &t.City, &t.State, &t.ZipCodes, &t.Population, &t.Status,
		&minInv, &maxInv, &revenue, &t.Latitude, &t.Longitude, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, db.Classify(err, "scan territory")
	}

	var err error
	if t.InvestmentMin, err = money.ParseNullable(minInv); err != nil {
		return nil, fmt.Errorf("territory %d investment_min: %w", t.ID, err)
	}
	if t.InvestmentMax, err = money.ParseNullable(maxInv); err != nil {
		return nil, fmt.Errorf("territory %d investment_max: %w", t.ID, err)
	}
	if t.ProjectedRevenue, err = money.ParseNullable(revenue); err != nil {
		return nil, fmt.Errorf("territory %d projected_revenue: %w", t.ID, err)
	}
	return &t, nil
}
