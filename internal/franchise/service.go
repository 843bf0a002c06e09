package franchise

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/validation"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
)

type SubmitRequest struct {
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
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Application, error)
	List(ctx context.Context, filter Filter) ([]*Application, int, error)
}

type territoryReader interface {
	GetByID(ctx context.Context, id int64) (*territory.Territory, error)
}

type service struct {
	repo        Repository
	territories territoryReader
	notifier    notify.Notifier
	log         *logger.Logger
}

func NewService(repo Repository, territories territoryReader, notifier notify.Notifier, log *logger.Logger) Service {
	return &service{repo: repo, territories: territories, notifier: notifier, log: log}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Application, error) {
	phone := validation.NormalizePhone(req.Phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	if req.TerritoryID != nil {
		if _, err := s.territories.GetByID(ctx, *req.TerritoryID); err != nil {
			if errors.Is(err, territory.ErrNotFound) {
				return nil, ErrTerritoryNotFound
			}
			return nil, err
		}
	}

	a := &Application{
		TerritoryID:        req.TerritoryID,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              phone,
		City:               trimmed(req.City),
		State:              trimmed(req.State),
		InvestmentCapital:  trimmed(req.InvestmentCapital),
		BusinessExperience: trimmed(req.BusinessExperience),
		WhyInterested:      trimmed(req.WhyInterested),
		Status:             StatusNew,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "franchise application submitted", "application_id", a.ID, "territory_id", a.TerritoryID)

	if err := s.notifier.Notify(ctx, notify.FranchiseApplication(details(a))); err != nil {
		s.log.WarnContext(ctx, "franchise notification failed", "application_id", a.ID, "error", err)
	}
	return a, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Application, int, error) {
	return s.repo.List(ctx, filter)
}

func details(a *Application) notify.ApplicationDetails {
	return notify.ApplicationDetails{
		ApplicationID:      a.ID,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Email:              a.Email,
		Phone:              a.Phone,
		City:               deref(a.City),
		State:              deref(a.State),
		InvestmentCapital:  deref(a.InvestmentCapital),
		BusinessExperience: deref(a.BusinessExperience),
		WhyInterested:      deref(a.WhyInterested),
	}
}

// trimmed maps blank optional answers to nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
