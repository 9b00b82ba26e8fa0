package saved

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists bookmarks in the saved_ideas join table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a Postgres-backed bookmark repository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, rec SavedIdea) error {
	const query = `
		INSERT INTO saved_ideas (user_id, idea_id, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, idea_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, rec.UserID, rec.IdeaID, rec.SavedAt); err != nil {
		return fmt.Errorf("saving idea: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, ideaID uuid.UUID) error {
	const query = `DELETE FROM saved_ideas WHERE user_id = $1 AND idea_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, ideaID); err != nil {
		return fmt.Errorf("removing saved idea: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]SavedIdea, error) {
	const query = `
		SELECT user_id, idea_id, saved_at
		FROM saved_ideas
		WHERE user_id = $1
		ORDER BY saved_at DESC`

	var records []SavedIdea
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("listing saved ideas: %w", err)
	}
	return records, nil
}

func (r *PostgresRepository) IsSaved(ctx context.Context, userID, ideaID uuid.UUID) (bool, error) {
	const query = `SELECT saved_at FROM saved_ideas WHERE user_id = $1 AND idea_id = $2`

	var savedAt sql.NullTime
	err := r.db.GetContext(ctx, &savedAt, query, userID, ideaID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking saved idea: %w", err)
	}
	return true, nil
}
