package franchise

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	apps   map[int64]Application

	// TerritoryExists, when set, rejects unknown territory references.
	TerritoryExists func(id int64) bool

	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{apps: make(map[int64]Application)}
}

func (r *MemoryRepository) Create(ctx context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if a.TerritoryID != nil && r.TerritoryExists != nil && !r.TerritoryExists(*a.TerritoryID) {
		return ErrTerritoryNotFound
	}

	r.nextID++
	now := time.Now().UTC()
	a.ID = r.nextID
	a.CreatedAt = now
	a.UpdatedAt = now
	r.apps[a.ID] = *a
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, filter Filter) ([]*Application, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	var matched []*Application
	for _, a := range r.apps {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		a := a
		matched = append(matched, &a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []*Application{}, total, nil
	}
	return matched[start:min(start+filter.PageSize, total)], total, nil
}
