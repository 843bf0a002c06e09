package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

func NewMemoryRepository(seed ...*User) *MemoryRepository {
	r := &MemoryRepository{users: make(map[int64]User)}
	for _, u := range seed {
		_ = r.Upsert(context.Background(), u)
	}
	return r
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now().UTC()
	for id, existing := range r.users {
		if existing.OpenID == u.OpenID {
			u.ID = id
			u.CreatedAt = existing.CreatedAt
			u.UpdatedAt = now
			u.LastSignedIn = now
			r.users[id] = *u
			return nil
		}
	}

	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	u.LastSignedIn = now
	r.users[u.ID] = *u
	return nil
}
