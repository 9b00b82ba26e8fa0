package saved

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ideaboard/internal/ideas"
)

func seedIdea(t *testing.T, repo ideas.Repository, title string) ideas.Idea {
	t.Helper()

	now := time.Now().UTC()
	idea, err := repo.Create(context.Background(), ideas.Idea{
		ID:        uuid.New(),
		Title:     title,
		URL:       "https://reddit.com/r/startups/" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding idea: %v", err)
	}
	return idea
}

func TestSaveIsIdempotent(t *testing.T) {
	ideasRepo := ideas.NewInMemoryRepository(nil)
	svc := NewService(NewMemoryRepository(), ideasRepo)
	userID := uuid.New()
	idea := seedIdea(t, ideasRepo, "AI meal planner")

	if err := svc.Save(context.Background(), userID, idea.ID); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.Save(context.Background(), userID, idea.ID); err != nil {
		t.Fatalf("second save: %v", err)
	}

	bookmarks, err := svc.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("listing bookmarks: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}
	if bookmarks[0].ID != idea.ID {
		t.Errorf("expected idea %s, got %s", idea.ID, bookmarks[0].ID)
	}
}

func TestSaveUnknownIdea(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ideas.NewInMemoryRepository(nil))

	err := svc.Save(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ideas.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnsaveRemovesBookmark(t *testing.T) {
	ideasRepo := ideas.NewInMemoryRepository(nil)
	svc := NewService(NewMemoryRepository(), ideasRepo)
	userID := uuid.New()
	idea := seedIdea(t, ideasRepo, "Subscription box for hot sauce")

	if err := svc.Save(context.Background(), userID, idea.ID); err != nil {
		t.Fatalf("saving: %v", err)
	}
	if err := svc.Unsave(context.Background(), userID, idea.ID); err != nil {
		t.Fatalf("unsaving: %v", err)
	}

	saved, err := svc.IsSaved(context.Background(), userID, idea.ID)
	if err != nil {
		t.Fatalf("checking saved: %v", err)
	}
	if saved {
		t.Error("expected idea to be unsaved")
	}

	// Removing a bookmark that no longer exists is still a success.
	if err := svc.Unsave(context.Background(), userID, idea.ID); err != nil {
		t.Fatalf("repeat unsave: %v", err)
	}
}

func TestListForUserOrdersByMostRecent(t *testing.T) {
	ideasRepo := ideas.NewInMemoryRepository(nil)
	repo := NewMemoryRepository()
	svc := NewService(repo, ideasRepo)
	userID := uuid.New()

	first := seedIdea(t, ideasRepo, "First")
	second := seedIdea(t, ideasRepo, "Second")

	now := time.Now().UTC()
	if err := repo.Save(context.Background(), SavedIdea{UserID: userID, IdeaID: first.ID, SavedAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("saving first: %v", err)
	}
	if err := repo.Save(context.Background(), SavedIdea{UserID: userID, IdeaID: second.ID, SavedAt: now}); err != nil {
		t.Fatalf("saving second: %v", err)
	}

	bookmarks, err := svc.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("listing bookmarks: %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(bookmarks))
	}
	if bookmarks[0].ID != second.ID || bookmarks[1].ID != first.ID {
		t.Errorf("expected most recently saved first, got %s then %s", bookmarks[0].Title, bookmarks[1].Title)
	}
}

func TestListForUserScopedToUser(t *testing.T) {
	ideasRepo := ideas.NewInMemoryRepository(nil)
	svc := NewService(NewMemoryRepository(), ideasRepo)
	alice := uuid.New()
	bob := uuid.New()
	idea := seedIdea(t, ideasRepo, "Shared idea")

	if err := svc.Save(context.Background(), alice, idea.ID); err != nil {
		t.Fatalf("saving for alice: %v", err)
	}

	bookmarks, err := svc.ListForUser(context.Background(), bob)
	if err != nil {
		t.Fatalf("listing for bob: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Fatalf("expected no bookmarks for bob, got %d", len(bookmarks))
	}

	saved, err := svc.IsSaved(context.Background(), alice, idea.ID)
	if err != nil {
		t.Fatalf("checking alice: %v", err)
	}
	if !saved {
		t.Error("expected idea saved for alice")
	}
}
