package territory

import (
	"context"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

type Service interface {
	// List and ListAvailable never fail: store errors degrade to an empty list.
	List(ctx context.Context) ([]*Territory, error)
	ListAvailable(ctx context.Context) ([]*Territory, error)
	GetByID(ctx context.Context, id int64) (*Territory, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) List(ctx context.Context) ([]*Territory, error) {
	return s.list(ctx, "")
}

func (s *service) ListAvailable(ctx context.Context) ([]*Territory, error) {
	return s.list(ctx, StatusAvailable)
}

func (s *service) list(ctx context.Context, status Status) ([]*Territory, error) {
	territories, err := s.repo.List(ctx, status)
	if err != nil {
		s.log.ErrorContext(ctx, "list territories failed, serving none", "status", status, "error", err)
		return []*Territory{}, nil
	}
	if territories == nil {
		territories = []*Territory{}
	}
	return territories, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Territory, error) {
	return s.repo.GetByID(ctx, id)
}
