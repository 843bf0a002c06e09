package franchise

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "franchise application not found")
	ErrTerritoryNotFound = apperror.New(http.StatusNotFound, "territory not found")
	ErrInvalidPhone      = apperror.New(http.StatusBadRequest, "invalid phone number")
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Application is a prospective franchisee's enquiry.
type Application struct {
	ID                 int64
	TerritoryID        *int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	City               *string
	State              *string
	InvestmentCapital  *string
	BusinessExperience *string
	WhyInterested      *string
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Filter struct {
	Status   Status
	Page     int
	PageSize int
}
