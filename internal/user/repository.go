package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/ev-rental-backend/internal/db"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// Upsert inserts the user or refreshes the profile of the existing
	// user with the same OpenID, filling in u.ID.
	Upsert(ctx context.Context, u *User) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "open_id", "name", "email", "phone", "role",
		"created_at", "updated_at", "last_signed_in",
	).
		From("public.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	var u User
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.OpenID, &u.Name, &u.Email, &u.Phone, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Classify(err, "get user")
	}
	return &u, nil
}

func (r *pgxUserRepository) Upsert(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.users").
		Columns("open_id", "name", "email", "phone", "role").
		Values(u.OpenID, u.Name, u.Email, u.Phone, u.Role).
		Suffix(`ON CONFLICT (open_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			role = EXCLUDED.role,
			updated_at = now(),
			last_signed_in = now()
		RETURNING id, created_at, updated_at, last_signed_in`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn); err != nil {
		return db.Classify(err, "upsert user")
	}
	return nil
}
