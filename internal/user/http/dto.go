package http

import (
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/user"
)

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID           int64     `json:"id"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}
