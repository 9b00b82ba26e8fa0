package ideas

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultListLimit mirrors the pipeline's default page size.
	defaultListLimit = 100
	maxListLimit     = 200

	maxSearchQueryLength = 500
	minSearchQueryLength = 2
)

// Service orchestrates validation and persistence for ideas.
type Service struct {
	repo Repository
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert stores a scraped idea, deduplicating by URL: a row already holding
// the URL is refreshed in place rather than duplicated.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (Idea, error) {
	title := strings.TrimSpace(input.Title)
	rawURL := strings.TrimSpace(input.URL)

	if title == "" {
		return Idea{}, &ValidationError{Message: "title is required"}
	}
	if rawURL == "" {
		return Idea{}, &ValidationError{Message: "url is required"}
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Idea{}, &ValidationError{Message: fmt.Sprintf("invalid url %q", rawURL)}
	}

	now := time.Now().UTC()

	existing, err := s.repo.FindByURL(ctx, rawURL)
	if err != nil {
		return Idea{}, fmt.Errorf("find idea by url: %w", err)
	}
	if existing != nil {
		existing.Title = title
		existing.Content = strings.TrimSpace(input.Content)
		existing.SourceSubreddit = strings.TrimSpace(input.SourceSubreddit)
		existing.DateOfPost = strings.TrimSpace(input.DateOfPost)
		existing.UpdatedAt = now

		updated, err := s.repo.Update(ctx, *existing)
		if err != nil {
			return Idea{}, fmt.Errorf("refresh idea: %w", err)
		}
		return updated, nil
	}

	idea := Idea{
		ID:              uuid.New(),
		Title:           title,
		URL:             rawURL,
		Content:         strings.TrimSpace(input.Content),
		SourceSubreddit: strings.TrimSpace(input.SourceSubreddit),
		DateOfPost:      strings.TrimSpace(input.DateOfPost),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, idea)
	if err != nil {
		return Idea{}, fmt.Errorf("create idea: %w", err)
	}
	return created, nil
}

// AttachDetails merges the analysis pass onto an existing idea, leaving
// fields the input does not carry untouched.
func (s *Service) AttachDetails(ctx context.Context, id uuid.UUID, details DetailsInput) (Idea, error) {
	for _, score := range []*int{details.Innovation, details.Quality, details.ProblemSignificance, details.EngagementScore} {
		if score != nil && (*score < 0 || *score > 10) {
			return Idea{}, &ValidationError{Message: "scores must be between 0 and 10"}
		}
	}

	idea, err := s.repo.Get(ctx, id)
	if err != nil {
		return Idea{}, err
	}

	if details.Introduction != nil {
		idea.Introduction = strings.TrimSpace(*details.Introduction)
	}
	if details.ImplementationPlan != nil {
		idea.ImplementationPlan = strings.TrimSpace(*details.ImplementationPlan)
	}
	if details.MarketAnalysis != nil {
		idea.MarketAnalysis = strings.TrimSpace(*details.MarketAnalysis)
	}
	if details.UserComments != nil {
		idea.UserComments = strings.TrimSpace(*details.UserComments)
	}
	if details.Innovation != nil {
		idea.Innovation = details.Innovation
	}
	if details.Quality != nil {
		idea.Quality = details.Quality
	}
	if details.ProblemSignificance != nil {
		idea.ProblemSignificance = details.ProblemSignificance
	}
	if details.EngagementScore != nil {
		idea.EngagementScore = details.EngagementScore
	}
	if details.ReasoningBehindScore != nil {
		idea.ReasoningBehindScore = strings.TrimSpace(*details.ReasoningBehindScore)
	}
	if details.AdviceForImprovement != nil {
		idea.AdviceForImprovement = strings.TrimSpace(*details.AdviceForImprovement)
	}
	idea.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, idea)
	if err != nil {
		return Idea{}, fmt.Errorf("attach details: %w", err)
	}
	return updated, nil
}

// List returns ideas ordered by creation date descending, optionally
// filtered by subreddit, minimum overall score, or a title search.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Idea, error) {
	if opts.Query != nil {
		query := strings.TrimSpace(*opts.Query)
		if len(query) < minSearchQueryLength {
			return nil, &ValidationError{Message: "search query too short"}
		}
		if len(query) > maxSearchQueryLength {
			return nil, &ValidationError{Message: fmt.Sprintf("search query too long (max %d characters)", maxSearchQueryLength)}
		}
		opts.Query = &query
	}
	if opts.MinScore != nil && (*opts.MinScore < 0 || *opts.MinScore > 10) {
		return nil, &ValidationError{Message: "min_score must be between 0 and 10"}
	}

	limit := defaultListLimit
	if opts.Limit != nil {
		if *opts.Limit <= 0 || *opts.Limit > maxListLimit {
			return nil, &ValidationError{Message: fmt.Sprintf("limit must be between 1 and %d", maxListLimit)}
		}
		limit = *opts.Limit
	}
	opts.Limit = &limit

	return s.repo.List(ctx, opts)
}

// All returns the entire catalog, newest first, without pagination. Used by
// the CSV export.
func (s *Service) All(ctx context.Context) ([]Idea, error) {
	return s.repo.List(ctx, ListOptions{})
}

// Get returns a single idea by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Idea, error) {
	return s.repo.Get(ctx, id)
}
