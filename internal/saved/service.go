package saved

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ideaboard/internal/ideas"
)

// Service coordinates bookmark persistence with the ideas catalog.
type Service struct {
	repo      Repository
	ideasRepo ideas.Repository
}

// NewService wires a saved-ideas service.
func NewService(repo Repository, ideasRepo ideas.Repository) *Service {
	return &Service{repo: repo, ideasRepo: ideasRepo}
}

// Save bookmarks an idea for a user. Saving an idea that is already
// bookmarked succeeds without creating a second row.
func (s *Service) Save(ctx context.Context, userID, ideaID uuid.UUID) error {
	if _, err := s.ideasRepo.Get(ctx, ideaID); err != nil {
		return err
	}

	return s.repo.Save(ctx, SavedIdea{
		UserID:  userID,
		IdeaID:  ideaID,
		SavedAt: time.Now().UTC(),
	})
}

// Unsave removes a bookmark. Removing a bookmark that does not exist is a no-op.
func (s *Service) Unsave(ctx context.Context, userID, ideaID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, ideaID)
}

// IsSaved reports whether the user has bookmarked the idea.
func (s *Service) IsSaved(ctx context.Context, userID, ideaID uuid.UUID) (bool, error) {
	return s.repo.IsSaved(ctx, userID, ideaID)
}

// ListForUser returns the user's bookmarks, most recently saved first,
// hydrated with the idea details. Bookmarks whose idea has since been
// removed from the catalog are skipped.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Bookmark, error) {
	records, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookmarks := make([]Bookmark, 0, len(records))
	for _, rec := range records {
		idea, err := s.ideasRepo.Get(ctx, rec.IdeaID)
		if err != nil {
			if errors.Is(err, ideas.ErrNotFound) {
				continue
			}
			return nil, err
		}
		bookmarks = append(bookmarks, Bookmark{Idea: idea, SavedAt: rec.SavedAt})
	}

	return bookmarks, nil
}
