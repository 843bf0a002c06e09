package franchise

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/ev-rental-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	List(ctx context.Context, filter Filter) ([]*Application, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, a *Application) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.franchise_applications").
		Columns("territory_id", "first_name", "last_name", "email", "phone", "city", "state",
			"investment_capital", "business_experience", "why_interested", "status").
		Values(a.TerritoryID, a.FirstName, a.LastName, a.Email, a.Phone, a.City, a.State,
			a.InvestmentCapital, a.BusinessExperience, a.WhyInterested, a.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create application query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrTerritoryNotFound
		}
		return db.Classify(err, "create franchise application")
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Application, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "territory_id", "first_name", "last_name", "email", "phone", "city", "state",
		"investment_capital", "business_experience", "why_interested", "status",
		"created_at", "updated_at", "count(*) OVER()",
	).From("public.franchise_applications")
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	offset := (filter.Page - 1) * filter.PageSize
	sql, args, err := query.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list applications query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Classify(err, "list franchise applications")
	}
	defer rows.Close()

	var (
		apps  = []*Application{}
		total int
	)
	for rows.Next() {
		var a Application
		if err := rows.Scan(
			&a.ID, &a.TerritoryID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.City, &a.State,
			&a.InvestmentCapital, &a.BusinessExperience, &a.WhyInterested, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &total,
		); err != nil {
			return nil, 0, db.Classify(err, "scan franchise application")
		}
		apps = append(apps, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify(err, "list franchise applications")
	}
	return apps, total, nil
}
