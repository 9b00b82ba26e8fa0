package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL. The table name
// is resolved once at construction from configuration; there is no runtime
// fallback between casing variants.
type PostgresRepository struct {
	db    *sqlx.DB
	table string
}

// NewPostgresRepository creates a PostgresRepository reading and writing the
// given profile table.
func NewPostgresRepository(db *sqlx.DB, table string) *PostgresRepository {
	if table == "" {
		table = "user_profiles"
	}
	return &PostgresRepository{db: db, table: pq.QuoteIdentifier(table)}
}

const profileColumns = `user_id, first_name, last_name, email, is_paid, created_at, updated_at, last_login`

// Create inserts a new profile row.
func (r *PostgresRepository) Create(ctx context.Context, p Profile) (Profile, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table, profileColumns)

	_, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.IsPaid,
		p.CreatedAt,
		p.UpdatedAt,
		p.LastLogin,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return Profile{}, ErrDuplicate
		}
		return Profile{}, err
	}

	return p, nil
}

// FindByEmail looks up a profile by email address. Returns nil when no row
// matches.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, profileColumns, r.table)

	var p Profile
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByUserID looks up a profile by its provider-issued user id.
func (r *PostgresRepository) FindByUserID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, profileColumns, r.table)

	var p Profile
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdateLastLogin stamps the profile's last_login and updated_at columns.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_login = $2, updated_at = $2 WHERE user_id = $1`, r.table)

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a profile row. Used only by the registration compensation
// path.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
