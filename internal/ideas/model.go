package ideas

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an idea cannot be located.
var ErrNotFound = errors.New("idea not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Idea is a startup idea scraped from Reddit, enriched by the offline
// analysis pipeline with a qualitative write-up and four 0-10 scores.
type Idea struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	URL             string    `db:"url" json:"url"`
	Content         string    `db:"content" json:"content"`
	SourceSubreddit string    `db:"source_subreddit" json:"sourceSubreddit"`
	DateOfPost      string    `db:"date_of_post" json:"dateOfPost"`

	// Analysis fields, absent until the detailing pass has run.
	Introduction         string `db:"introduction" json:"introduction"`
	ImplementationPlan   string `db:"implementation_plan" json:"implementationPlan"`
	MarketAnalysis       string `db:"market_analysis" json:"marketAnalysis"`
	UserComments         string `db:"user_comments" json:"userComments"`
	Innovation           *int   `db:"innovation" json:"innovation,omitempty"`
	Quality              *int   `db:"quality" json:"quality,omitempty"`
	ProblemSignificance  *int   `db:"problem_significance" json:"problemSignificance,omitempty"`
	EngagementScore      *int   `db:"engagement_score" json:"engagementScore,omitempty"`
	ReasoningBehindScore string `db:"reasoning_behind_score" json:"reasoningBehindScore"`
	AdviceForImprovement string `db:"advice_for_improvement" json:"adviceForImprovement"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// OverallScore averages the scores that are present. Returns nil for ideas
// the pipeline has not analyzed yet.
func (i Idea) OverallScore() *float64 {
	var sum, n int
	for _, score := range []*int{i.Innovation, i.Quality, i.ProblemSignificance, i.EngagementScore} {
		if score != nil {
			sum += *score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// Analyzed reports whether the detailing pass has scored this idea.
func (i Idea) Analyzed() bool {
	return i.OverallScore() != nil
}

// UpsertInput captures a scraped idea as the pipeline produces it.
type UpsertInput struct {
	Title           string
	URL             string
	Content         string
	SourceSubreddit string
	DateOfPost      string
}

// DetailsInput carries the analysis fields merged onto an existing idea.
// Nil pointers leave the stored value untouched.
type DetailsInput struct {
	Introduction         *string
	ImplementationPlan   *string
	MarketAnalysis       *string
	UserComments         *string
	Innovation           *int
	Quality              *int
	ProblemSignificance  *int
	EngagementScore      *int
	ReasoningBehindScore *string
	AdviceForImprovement *string
}

// ListOptions describes filters for listing ideas.
type ListOptions struct {
	Subreddit *string
	MinScore  *int
	Query     *string
	Limit     *int
}

// Repository defines persistence operations for ideas.
type Repository interface {
	Create(ctx context.Context, idea Idea) (Idea, error)
	Get(ctx context.Context, id uuid.UUID) (Idea, error)
	FindByURL(ctx context.Context, url string) (*Idea, error)
	List(ctx context.Context, opts ListOptions) ([]Idea, error)
	Update(ctx context.Context, idea Idea) (Idea, error)
}
