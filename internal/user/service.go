package user

import (
	"context"
	"fmt"
	"strings"
)

// Service defines business logic related to users.
type Service interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// Provision creates or refreshes a user from identity-provider data.
	Provision(ctx context.Context, u *User) (*User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new user Service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Provision(ctx context.Context, u *User) (*User, error) {
	u.OpenID = strings.TrimSpace(u.OpenID)
	if u.OpenID == "" {
		return nil, fmt.Errorf("open id is required")
	}
	if u.Role != RoleUser && u.Role != RoleAdmin && u.Role != "" {
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		u.Email = &email
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return u, nil
}

// normalizeEmail is a small helper to normalize email input.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
