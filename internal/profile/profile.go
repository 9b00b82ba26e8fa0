package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when a profile already exists for the user id or
// email being inserted.
var ErrDuplicate = errors.New("profile already exists")

// ErrNotFound is returned when no profile matches the lookup.
var ErrNotFound = errors.New("profile not found")

// Profile is the application-level user record, distinct from the identity
// provider's own identity record. UserID always equals the provider-issued
// id; the coordinator enforces this at creation time.
type Profile struct {
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	IsPaid    bool      `db:"is_paid" json:"isPaid"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	LastLogin time.Time `db:"last_login" json:"lastLogin"`
}

// Repository defines persistence for user profiles.
type Repository interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindByUserID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
