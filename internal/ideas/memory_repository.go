package ideas

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores ideas in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]Idea
}

// NewInMemoryRepository constructs a repository seeded with optional initial
// ideas.
func NewInMemoryRepository(initial []Idea) *InMemoryRepository {
	data := make(map[uuid.UUID]Idea, len(initial))
	for _, idea := range initial {
		data[idea.ID] = idea
	}
	return &InMemoryRepository{data: data}
}

// Create stores a new idea.
func (r *InMemoryRepository) Create(_ context.Context, idea Idea) (Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[idea.ID] = idea
	return idea, nil
}

// Get returns an idea by id.
func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idea, ok := r.data[id]
	if !ok {
		return Idea{}, ErrNotFound
	}
	return idea, nil
}

// FindByURL returns the idea holding the URL, or nil.
func (r *InMemoryRepository) FindByURL(_ context.Context, url string) (*Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, idea := range r.data {
		if idea.URL == url {
			copied := idea
			return &copied, nil
		}
	}
	return nil, nil
}

// List returns ideas newest first, applying the requested filters.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]Idea, error) {
	r.mu.RLock()
	out := make([]Idea, 0, len(r.data))
	for _, idea := range r.data {
		if opts.Subreddit != nil && idea.SourceSubreddit != *opts.Subreddit {
			continue
		}
		if opts.Query != nil && !strings.Contains(strings.ToLower(idea.Title), strings.ToLower(*opts.Query)) {
			continue
		}
		if opts.MinScore != nil {
			score := idea.OverallScore()
			if score == nil || *score < float64(*opts.MinScore) {
				continue
			}
		}
		out = append(out, idea)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Idea) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Limit != nil && len(out) > *opts.Limit {
		out = out[:*opts.Limit]
	}
	return out, nil
}

// Update rewrites an existing idea.
func (r *InMemoryRepository) Update(_ context.Context, idea Idea) (Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[idea.ID]; !ok {
		return Idea{}, ErrNotFound
	}
	r.data[idea.ID] = idea
	return idea, nil
}
