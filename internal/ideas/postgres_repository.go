package ideas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists ideas to a Postgres database.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a repository backed by sqlx.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ideaColumns = `
	id, title, url, content, source_subreddit, date_of_post,
	introduction, implementation_plan, market_analysis, user_comments,
	innovation, quality, problem_significance, engagement_score,
	reasoning_behind_score, advice_for_improvement,
	created_at, updated_at`

// overallScoreExpr averages whichever of the four scores are present.
const overallScoreExpr = `
	(COALESCE(innovation, 0) + COALESCE(quality, 0) + COALESCE(problem_significance, 0) + COALESCE(engagement_score, 0))::float
	/ NULLIF(
		(innovation IS NOT NULL)::int + (quality IS NOT NULL)::int
		+ (problem_significance IS NOT NULL)::int + (engagement_score IS NOT NULL)::int, 0)`

// Create inserts a new idea row.
func (r *PostgresRepository) Create(ctx context.Context, idea Idea) (Idea, error) {
	query := fmt.Sprintf(`
		INSERT INTO scraped_ideas (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, ideaColumns)

	_, err := r.db.ExecContext(ctx, query,
		idea.ID,
		idea.Title,
		idea.URL,
		idea.Content,
		idea.SourceSubreddit,
		idea.DateOfPost,
		idea.Introduction,
		idea.ImplementationPlan,
		idea.MarketAnalysis,
		idea.UserComments,
		idea.Innovation,
		idea.Quality,
		idea.ProblemSignificance,
		idea.EngagementScore,
		idea.ReasoningBehindScore,
		idea.AdviceForImprovement,
		idea.CreatedAt,
		idea.UpdatedAt,
	)
	if err != nil {
		return Idea{}, err
	}
	return idea, nil
}

// Get returns an idea by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Idea, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraped_ideas WHERE id = $1`, ideaColumns)

	var idea Idea
	if err := r.db.GetContext(ctx, &idea, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Idea{}, ErrNotFound
		}
		return Idea{}, err
	}
	return idea, nil
}

// FindByURL returns the idea holding the URL, or nil. URLs are the
// pipeline's deduplication key.
func (r *PostgresRepository) FindByURL(ctx context.Context, url string) (*Idea, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraped_ideas WHERE url = $1`, ideaColumns)

	var idea Idea
	if err := r.db.GetContext(ctx, &idea, query, url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &idea, nil
}

// List returns ideas newest first, applying the requested filters.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]Idea, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Subreddit != nil {
		conditions = append(conditions, fmt.Sprintf("source_subreddit = %s", arg(*opts.Subreddit)))
	}
	if opts.Query != nil {
		conditions = append(conditions, fmt.Sprintf("title ILIKE %s", arg("%"+*opts.Query+"%")))
	}
	if opts.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("(%s) >= %s", overallScoreExpr, arg(*opts.MinScore)))
	}

	query := fmt.Sprintf(`SELECT %s FROM scraped_ideas`, ideaColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit != nil {
		query += fmt.Sprintf(" LIMIT %s", arg(*opts.Limit))
	}

	ideas := []Idea{}
	if err := r.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, err
	}
	return ideas, nil
}

// Update rewrites an existing idea row.
func (r *PostgresRepository) Update(ctx context.Context, idea Idea) (Idea, error) {
	const query = `
		UPDATE scraped_ideas SET
			title = $2,
			url = $3,
			content = $4,
			source_subreddit = $5,
			date_of_post = $6,
			introduction = $7,
			implementation_plan = $8,
			market_analysis = $9,
			user_comments = $10,
			innovation = $11,
			quality = $12,
			problem_significance = $13,
			engagement_score = $14,
			reasoning_behind_score = $15,
			advice_for_improvement = $16,
			updated_at = $17
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		idea.ID,
		idea.Title,
		idea.URL,
		idea.Content,
		idea.SourceSubreddit,
		idea.DateOfPost,
		idea.Introduction,
		idea.ImplementationPlan,
		idea.MarketAnalysis,
		idea.UserComments,
		idea.Innovation,
		idea.Quality,
		idea.ProblemSignificance,
		idea.EngagementScore,
		idea.ReasoningBehindScore,
		idea.AdviceForImprovement,
		idea.UpdatedAt,
	)
	if err != nil {
		return Idea{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Idea{}, err
	}
	if affected == 0 {
		return Idea{}, ErrNotFound
	}
	return idea, nil
}
