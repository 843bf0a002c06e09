package vehicle

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	vehicles map[int64]Vehicle

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository(seed ...*Vehicle) *MemoryRepository {
	r := &MemoryRepository{vehicles: make(map[int64]Vehicle)}
	for _, v := range seed {
		_ = r.Create(context.Background(), v)
	}
	return r
}

func (r *MemoryRepository) ListAvailable(ctx context.Context) ([]*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var out []*Vehicle
	for _, v := range r.vehicles {
		if v.Available {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	v, ok := r.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (r *MemoryRepository) Create(ctx context.Context, v *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	r.nextID++
	now := time.Now().UTC()
	v.ID = r.nextID
	v.CreatedAt = now
	v.UpdatedAt = now
	r.vehicles[v.ID] = *v
	return nil
}

func (r *MemoryRepository) UpdateImage(ctx context.Context, id int64, imageURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	v, ok := r.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	v.ImageURL = imageURL
	v.UpdatedAt = time.Now().UTC()
	r.vehicles[id] = v
	return nil
}
