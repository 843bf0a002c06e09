package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "user not found")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account provisioned by the external identity provider.
// OpenID is the provider's stable subject.
type User struct {
	ID           int64
	OpenID       string
	Name         *string
	Email        *string
	Phone        *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
