package vehicle

import (
	"context"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

// Cache stores the available-fleet listing. A miss is (nil, false, nil).
type Cache interface {
	GetVehicles(ctx context.Context) ([]*Vehicle, bool, error)
	SetVehicles(ctx context.Context, vehicles []*Vehicle) error
}

type Service interface {
	// List never fails: store errors degrade to an empty fleet.
	List(ctx context.Context) ([]*Vehicle, error)
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
}

type service struct {
	repo  Repository
	cache Cache
	log   *logger.Logger
}

// NewService creates the fleet service. cache may be nil.
func NewService(repo Repository, cache Cache, log *logger.Logger) Service {
	return &service{repo: repo, cache: cache, log: log}
}

func (s *service) List(ctx context.Context) ([]*Vehicle, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetVehicles(ctx)
		if err != nil {
			s.log.Warn("fleet cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	vehicles, err := s.repo.ListAvailable(ctx)
	if err != nil {
		s.log.Error("list vehicles failed, serving empty fleet", "error", err)
		return []*Vehicle{}, nil
	}

	if s.cache != nil {
		if err := s.cache.SetVehicles(ctx, vehicles); err != nil {
			s.log.Warn("fleet cache write failed", "error", err)
		}
	}
	return vehicles, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}
