package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event identifies an auth-state change emitted by the provider.
type Event string

const (
	// EventSignedIn fires after a successful password sign-in.
	EventSignedIn Event = "SIGNED_IN"
	// EventSignedOut fires on sign-out or when a token refresh fails.
	EventSignedOut Event = "SIGNED_OUT"
	// EventTokenRefreshed fires when the access token is renewed.
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Stable provider error codes the coordinator maps to user-facing messages.
const (
	CodeUserExists         = "user_already_exists"
	CodeWeakPassword       = "weak_password"
	CodeValidationFailed   = "validation_failed"
	CodeInvalidCredentials = "invalid_credentials"
)

// ErrNoSession is returned by GetSession when no identity is signed in.
var ErrNoSession = errors.New("no active session")

// ProviderError carries a rejection reported by the identity provider,
// distinct from transport failures and timeouts.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("identity provider: %s", e.Message)
	}
	return fmt.Sprintf("identity provider: %s (%s)", e.Message, e.Code)
}

// Identity is the provider's record for a registered user.
type Identity struct {
	ID               uuid.UUID
	Email            string
	EmailConfirmedAt *time.Time
}

// Session is the read-only view of the provider-owned session.
type Session struct {
	UserID         uuid.UUID
	Email          string
	EmailConfirmed bool
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
}

// Handler receives auth-state-change notifications. The session is nil for
// sign-out events.
type Handler func(event Event, session *Session)

// Provider is the identity capability the coordinator consumes.
type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	Subscribe(handler Handler) (unsubscribe func())
}
