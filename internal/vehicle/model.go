package vehicle

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "vehicle not found")
)

// Vehicle is a rentable car of the fleet. The API treats the fleet as read-only.
type Vehicle struct {
	ID           int64
	Model        string
	Year         int
	Color        *string
	RangeMiles   *int
	Acceleration *string // e.g. "3.1s 0-60"
	TopSpeedMph  *int
	DailyRate    money.Amount
	WeeklyRate   *money.Amount
	ImageURL     *string
	Description  *string
	Features     []string
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
