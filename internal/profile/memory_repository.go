package profile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository stores profiles in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]Profile
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[uuid.UUID]Profile)}
}

// Create stores a new profile, enforcing the same uniqueness the Postgres
// schema does.
func (r *InMemoryRepository) Create(_ context.Context, p Profile) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[p.UserID]; ok {
		return Profile{}, ErrDuplicate
	}
	for _, existing := range r.data {
		if strings.EqualFold(existing.Email, p.Email) {
			return Profile{}, ErrDuplicate
		}
	}

	r.data[p.UserID] = p
	return p, nil
}

// FindByEmail returns the profile matching the email, or nil.
func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.data {
		if strings.EqualFold(p.Email, email) {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

// FindByUserID returns the profile with the given id, or nil.
func (r *InMemoryRepository) FindByUserID(_ context.Context, id uuid.UUID) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

// UpdateLastLogin stamps last_login and updated_at.
func (r *InMemoryRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	p.LastLogin = at
	p.UpdatedAt = at
	r.data[id] = p
	return nil
}

// Delete removes a profile.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, id)
	return nil
}
