package saved

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type bookmarkKey struct {
	userID uuid.UUID
	ideaID uuid.UUID
}

// MemoryRepository is an in-memory bookmark store for development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[bookmarkKey]SavedIdea
}

// NewMemoryRepository creates an empty in-memory bookmark repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[bookmarkKey]SavedIdea)}
}

func (r *MemoryRepository) Save(_ context.Context, rec SavedIdea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookmarkKey{userID: rec.UserID, ideaID: rec.IdeaID}
	if _, exists := r.records[key]; exists {
		return nil
	}
	r.records[key] = rec
	return nil
}

func (r *MemoryRepository) Remove(_ context.Context, userID, ideaID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, bookmarkKey{userID: userID, ideaID: ideaID})
	return nil
}

func (r *MemoryRepository) ListForUser(_ context.Context, userID uuid.UUID) ([]SavedIdea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []SavedIdea
	for key, rec := range r.records {
		if key.userID == userID {
			records = append(records, rec)
		}
	}

	slices.SortFunc(records, func(a, b SavedIdea) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return records, nil
}

func (r *MemoryRepository) IsSaved(_ context.Context, userID, ideaID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.records[bookmarkKey{userID: userID, ideaID: ideaID}]
	return exists, nil
}
