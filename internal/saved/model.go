package saved

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ideaboard/internal/ideas"
)

// SavedIdea is a bookmark: one row in the user/idea join table.
type SavedIdea struct {
	UserID  uuid.UUID `db:"user_id" json:"userId"`
	IdeaID  uuid.UUID `db:"idea_id" json:"ideaId"`
	SavedAt time.Time `db:"saved_at" json:"savedAt"`
}

// Bookmark pairs a saved idea with the bookmark timestamp for listing.
type Bookmark struct {
	ideas.Idea
	SavedAt time.Time `json:"savedAt"`
}

// Repository defines persistence for the saved-ideas join table.
type Repository interface {
	// Save is idempotent: saving an already-saved idea is a no-op.
	Save(ctx context.Context, rec SavedIdea) error
	Remove(ctx context.Context, userID, ideaID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]SavedIdea, error)
	IsSaved(ctx context.Context, userID, ideaID uuid.UUID) (bool, error)
}
