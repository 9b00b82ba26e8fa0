package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"ideaboard/internal/identity"
	"ideaboard/internal/profile"
)

// User-facing registration outcomes. The frontend renders these verbatim.
const (
	msgRegistered     = "User registered, please login"
	msgAlreadyExists  = "User already exists, please login"
	msgSetupCompleted = "User setup completed, please login"

	msgWeakPassword = "Password is too weak, please use at least 6 characters"
	msgInvalidEmail = "Please enter a valid email address"
)

// AuthState is the only state observers see: the resolved profile (absent
// while anonymous or pending) and whether an auth flow is in progress.
type AuthState struct {
	User    *profile.Profile
	Loading bool
}

// LoginResult carries the provider session and, when resolution succeeded in
// time, the profile. A nil User means "authenticated but profile not yet
// loaded"; authentication success and profile availability are independent
// outcomes.
type LoginResult struct {
	Session identity.Session
	User    *profile.Profile
}

// RegisterResult carries the user-facing outcome message.
type RegisterResult struct {
	Message string
}

// Options configures a Coordinator.
type Options struct {
	// AuthTimeout bounds every identity-provider call; StoreTimeout bounds
	// every data-store call. These are the only two timeout values in use.
	AuthTimeout  time.Duration
	StoreTimeout time.Duration

	CacheTTL  time.Duration
	CacheSize int

	Logger *slog.Logger
}

// Coordinator owns in-memory user state. It mediates between the identity
// provider's session/event stream and the profile table, applying timeouts
// and caching around every call. Construct one instance and hand it to the
// transport layer; there is no ambient singleton.
type Coordinator struct {
	provider identity.Provider
	profiles profile.Repository
	cache    *profileCache
	logger   *slog.Logger

	authTimeout  time.Duration
	storeTimeout time.Duration

	mu          sync.Mutex
	state       AuthState
	generation  uint64
	watchers    map[int]func(AuthState)
	nextWatcher int
	unsubscribe func()
}

// New wires a Coordinator with explicit dependencies.
func New(provider identity.Provider, profiles profile.Repository, opts Options) *Coordinator {
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = 8 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 4 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		provider:     provider,
		profiles:     profiles,
		cache:        newProfileCache(opts.CacheTTL, opts.CacheSize),
		logger:       logger,
		authTimeout:  opts.AuthTimeout,
		storeTimeout: opts.StoreTimeout,
		state:        AuthState{Loading: true},
		watchers:     make(map[int]func(AuthState)),
	}
}

// State returns the current auth state.
func (c *Coordinator) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch registers an observer called on every state change and returns a
// function releasing it.
func (c *Coordinator) Watch(fn func(AuthState)) func() {
	c.mu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	c.watchers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// Initialize restores the current session, if any, and subscribes to the
// provider's auth-state-change stream for the rest of the process lifetime.
// It always terminates with Loading false: a failed or slow restore degrades
// to anonymous, never to a stuck spinner.
func (c *Coordinator) Initialize(ctx context.Context) {
	c.publish(nil, true)

	c.mu.Lock()
	if c.unsubscribe == nil {
		c.unsubscribe = c.provider.Subscribe(c.handleAuthEvent)
	}
	c.mu.Unlock()

	sess, err := await(ctx, c.authTimeout, ErrAuthTimeout, func(ctx context.Context) (*identity.Session, error) {
		return c.provider.GetSession(ctx)
	}, nil)
	if err != nil || sess == nil {
		if err != nil && !errors.Is(err, identity.ErrNoSession) {
			c.logger.Warn("session restore failed", "error", err)
		}
		c.publish(nil, false)
		return
	}

	user := c.resolveProfile(ctx, sess.Email)
	c.publish(user, false)
}

// Close releases the auth-state-change subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Login signs in with the provider. Provider rejections surface verbatim;
// a timeout surfaces as ErrAuthTimeout. Profile resolution after a
// successful sign-in runs under the shorter store timeout and its failure
// degrades the result instead of failing the login.
func (c *Coordinator) Login(ctx context.Context, email, password string) (LoginResult, error) {
	c.publish(nil, true)

	sess, err := await(ctx, c.authTimeout, ErrAuthTimeout, func(ctx context.Context) (identity.Session, error) {
		return c.provider.SignInWithPassword(ctx, email, password)
	}, nil)
	if err != nil {
		c.publish(nil, false)
		return LoginResult{}, err
	}

	if refreshed, rerr := await(ctx, c.authTimeout, ErrAuthTimeout, func(ctx context.Context) (*identity.Session, error) {
		return c.provider.GetSession(ctx)
	}, nil); rerr == nil && refreshed != nil {
		sess = *refreshed
	}

	user := c.resolveProfile(ctx, sess.Email)
	c.publish(user, false)
	if user != nil {
		c.touchLastLogin(user.UserID)
	}

	return LoginResult{Session: sess, User: user}, nil
}

// Register signs up a new identity and creates its profile row keyed by the
// provider-issued id. Existence checking is delegated entirely to the
// provider; an "identity already exists" rejection enters the recovery path
// instead of surfacing as an error.
func (c *Coordinator) Register(ctx context.Context, firstName, lastName, email, password string) (RegisterResult, error) {
	metadata := map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
	}

	ident, err := await(ctx, c.authTimeout, ErrAuthTimeout, func(ctx context.Context) (identity.Identity, error) {
		return c.provider.SignUp(ctx, email, password, metadata)
	}, nil)
	if err != nil {
		var provErr *identity.ProviderError
		if errors.As(err, &provErr) {
			if provErr.Code == identity.CodeUserExists {
				return c.recoverExistingIdentity(ctx, firstName, lastName, email, password, provErr)
			}
			return RegisterResult{}, mapProviderError(provErr)
		}
		return RegisterResult{}, err
	}

	if _, err := c.createProfile(ctx, ident.ID, firstName, lastName, email); err != nil {
		return RegisterResult{}, err
	}

	// Registration and login are independent steps; the new user signs in
	// explicitly afterwards.
	return RegisterResult{Message: msgRegistered}, nil
}

// recoverExistingIdentity handles sign-up rejected with "identity already
// exists": sign in with the supplied credentials, then either confirm the
// profile row exists or backfill the missing one.
func (c *Coordinator) recoverExistingIdentity(ctx context.Context, firstName, lastName, email, password string, signUpErr *identity.ProviderError) (RegisterResult, error) {
	sess, err := await(ctx, c.authTimeout, ErrAuthTimeout, func(ctx context.Context) (identity.Session, error) {
		return c.provider.SignInWithPassword(ctx, email, password)
	}, nil)
	if err != nil {
		// The supplied password may simply be wrong for the existing
		// account; report the original condition.
		return RegisterResult{}, mapProviderError(signUpErr)
	}
	defer c.signOutQuietly(ctx)

	// Force a fresh lookup; a stale hit here would skip the backfill.
	c.ClearStaleCache(email)

	existing, err := await(ctx, c.storeTimeout, ErrProfileFetchTimeout, func(ctx context.Context) (*profile.Profile, error) {
		return c.profiles.FindByEmail(ctx, email)
	}, nil)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return RegisterResult{}, err
		}
		return RegisterResult{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if existing != nil {
		return RegisterResult{Message: msgAlreadyExists}, nil
	}

	if _, err := c.createProfile(ctx, sess.UserID, firstName, lastName, email); err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{Message: msgSetupCompleted}, nil
}

// createProfile inserts the profile row and verifies the stored id equals
// the provider-issued one, deleting the malformed row otherwise.
func (c *Coordinator) createProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, email string) (profile.Profile, error) {
	now := time.Now().UTC()
	row := profile.Profile{
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}

	created, err := await(ctx, c.storeTimeout, ErrProfileCreateTimeout, func(ctx context.Context) (profile.Profile, error) {
		return c.profiles.Create(ctx, row)
	}, nil)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return profile.Profile{}, err
		}
		return profile.Profile{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if created.UserID != userID {
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
		defer cancel()
		if derr := c.profiles.Delete(delCtx, created.UserID); derr != nil {
			c.logger.Error("deleting malformed profile row failed", "userId", created.UserID, "error", derr)
		}
		return profile.Profile{}, ErrProfileMismatch
	}

	// Prime the cache for the follow-up login.
	c.cache.set(email, created)
	return created, nil
}

// Logout signs out with the provider, clears the published user, and flushes
// the entire cache unconditionally so a later identity in the same process
// never sees a predecessor's profile.
func (c *Coordinator) Logout(ctx context.Context) {
	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Warn("provider sign-out failed", "error", err)
	}

	c.bumpGen()
	c.cache.flush()
	c.publish(nil, false)
}

// ResolveProfile looks up the profile for email, cache first. A store miss
// or timeout yields nil; the condition is logged, never raised.
func (c *Coordinator) ResolveProfile(ctx context.Context, email string) *profile.Profile {
	return c.resolveProfile(ctx, email)
}

// ClearStaleCache removes the given entries, or every entry when called with
// none. Recovery flows use it to force a fresh lookup.
func (c *Coordinator) ClearStaleCache(emails ...string) {
	if len(emails) == 0 {
		c.cache.flush()
		return
	}
	for _, email := range emails {
		c.cache.delete(email)
	}
}

func (c *Coordinator) resolveProfile(ctx context.Context, email string) *profile.Profile {
	if cached, ok := c.cache.get(email); ok {
		return cached
	}

	gen := c.gen()
	found, err := await(ctx, c.storeTimeout, ErrProfileFetchTimeout,
		func(ctx context.Context) (*profile.Profile, error) {
			return c.profiles.FindByEmail(ctx, email)
		},
		func(late *profile.Profile, lateErr error) {
			// The lookup lost the race but still completed; keep its result
			// only if the identity epoch is unchanged.
			if lateErr == nil && late != nil && c.gen() == gen {
				c.cache.set(email, *late)
			}
		})
	if err != nil {
		c.logger.Warn("profile resolution failed", "email", email, "error", err)
		return nil
	}
	if found == nil {
		c.logger.Warn("no profile row for authenticated email", "email", email)
		return nil
	}

	if c.gen() == gen {
		c.cache.set(email, *found)
	}
	return found
}

// handleAuthEvent reacts to the provider's auth-state-change stream. It may
// run concurrently with an explicit Login or Register call; both paths
// converge on the same cache and store, and the last publish wins. Results
// resolved under an older identity epoch are dropped instead of published.
func (c *Coordinator) handleAuthEvent(event identity.Event, sess *identity.Session) {
	switch event {
	case identity.EventSignedOut:
		c.bumpGen()
		c.cache.flush()
		c.publish(nil, false)

	case identity.EventSignedIn, identity.EventTokenRefreshed:
		if sess == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout+time.Second)
		defer cancel()

		gen := c.gen()
		user := c.resolveProfile(ctx, sess.Email)
		// A sign-out may have landed while the profile was resolving; the
		// stale result must not overwrite the anonymous state.
		if c.gen() != gen {
			return
		}
		c.publish(user, false)
		if user != nil {
			c.touchLastLogin(user.UserID)
		}
	}
}

// signOutQuietly discards a session opened by the recovery path;
// registration never leaves the user signed in.
func (c *Coordinator) signOutQuietly(ctx context.Context) {
	if err := c.provider.SignOut(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("recovery sign-out failed", "error", err)
	}
}

// touchLastLogin stamps last_login in the background. Best effort: failures
// are logged, never surfaced, and never block the auth flow.
func (c *Coordinator) touchLastLogin(userID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout)
		defer cancel()

		backoff := retry.WithMaxRetries(2, retry.NewConstant(200*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := c.profiles.UpdateLastLogin(ctx, userID, time.Now().UTC()); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			c.logger.Warn("last login update failed", "userId", userID, "error", err)
		}
	}()
}

func (c *Coordinator) publish(user *profile.Profile, loading bool) {
	c.mu.Lock()
	c.state = AuthState{User: user, Loading: loading}
	state := c.state
	watchers := make([]func(AuthState), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(state)
	}
}

func (c *Coordinator) gen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Coordinator) bumpGen() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
}

// mapProviderError translates known provider codes into user-facing
// messages; unrecognized codes pass the provider message through verbatim.
func mapProviderError(err *identity.ProviderError) error {
	switch err.Code {
	case identity.CodeWeakPassword:
		return &identity.ProviderError{Code: err.Code, Message: msgWeakPassword}
	case identity.CodeValidationFailed:
		return &identity.ProviderError{Code: err.Code, Message: msgInvalidEmail}
	default:
		return err
	}
}

type outcome[T any] struct {
	value T
	err   error
}

// await races fn against the deadline. The losing call is not aborted at the
// network layer: it keeps running on a detached context and its eventual
// result is handed to late, if provided, so callers can apply a
// generation-guarded cache write instead of dropping it on the floor.
func await[T any](ctx context.Context, d time.Duration, timeoutErr error, fn func(context.Context) (T, error), late func(T, error)) (T, error) {
	ch := make(chan outcome[T], 1)
	callCtx := context.WithoutCancel(ctx)
	go func() {
		v, err := fn(callCtx)
		ch <- outcome[T]{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case out := <-ch:
		return out.value, out.err
	case <-ctx.Done():
		drainLate(ch, late)
		return zero, ctx.Err()
	case <-timer.C:
		drainLate(ch, late)
		return zero, timeoutErr
	}
}

func drainLate[T any](ch <-chan outcome[T], late func(T, error)) {
	go func() {
		out := <-ch
		if late != nil {
			late(out.value, out.err)
		}
	}()
}
