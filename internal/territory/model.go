package territory

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "territory not found")
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

// Territory is a franchise area offered to prospective franchisees.
type Territory struct {
	ID               int64
	Name             string
	City             string
	State            string
	ZipCodes         []string
	Population       *int
	Status           Status
	InvestmentMin    *money.Amount
	InvestmentMax    *money.Amount
	ProjectedRevenue *money.Amount
	Latitude         *float64
	Longitude        *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
