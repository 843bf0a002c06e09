package territory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local runs.
type MemoryRepository struct {
	mu          sync.RWMutex
	nextID      int64
	territories map[int64]Territory

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository(seed ...*Territory) *MemoryRepository {
	r := &MemoryRepository{territories: make(map[int64]Territory)}
	for _, t := range seed {
		_ = r.Create(context.Background(), t)
	}
	return r
}

func (r *MemoryRepository) List(ctx context.Context, status Status) ([]*Territory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var out []*Territory
	for _, t := range r.territories {
		if status == "" || t.Status == status {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*Territory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	t, ok := r.territories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Create(ctx context.Context, t *Territory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if t.Status == "" {
		t.Status = StatusAvailable
	}
	r.nextID++
	now := time.Now().UTC()
	t.ID = r.nextID
	t.CreatedAt = now
	t.UpdatedAt = now
	r.territories[t.ID] = *t
	return nil
}
