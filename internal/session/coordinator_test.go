package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"ideaboard/internal/identity"
	"ideaboard/internal/profile"
)

type providerStub struct {
	mu         sync.Mutex
	handlers   []identity.Handler
	signUp     func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error)
	signIn     func(ctx context.Context, email, password string) (identity.Session, error)
	signOut    func(ctx context.Context) error
	getSession func(ctx context.Context) (*identity.Session, error)

	signOutCalls int
}

func (p *providerStub) SignUp(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
	if p.signUp != nil {
		return p.signUp(ctx, email, password, metadata)
	}
	return identity.Identity{ID: uuid.New(), Email: email}, nil
}

func (p *providerStub) SignInWithPassword(ctx context.Context, email, password string) (identity.Session, error) {
	if p.signIn != nil {
		return p.signIn(ctx, email, password)
	}
	return identity.Session{UserID: uuid.New(), Email: email}, nil
}

func (p *providerStub) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.signOutCalls++
	p.mu.Unlock()
	if p.signOut != nil {
		return p.signOut(ctx)
	}
	return nil
}

func (p *providerStub) GetSession(ctx context.Context) (*identity.Session, error) {
	if p.getSession != nil {
		return p.getSession(ctx)
	}
	return nil, identity.ErrNoSession
}

func (p *providerStub) Subscribe(handler identity.Handler) func() {
	p.mu.Lock()
	p.handlers = append(p.handlers, handler)
	idx := len(p.handlers) - 1
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.handlers[idx] = nil
		p.mu.Unlock()
	}
}

func (p *providerStub) emit(event identity.Event, sess *identity.Session) {
	p.mu.Lock()
	handlers := append([]identity.Handler(nil), p.handlers...)
	p.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			h(event, sess)
		}
	}
}

type repoStub struct {
	mu              sync.Mutex
	create          func(ctx context.Context, p profile.Profile) (profile.Profile, error)
	findByEmail     func(ctx context.Context, email string) (*profile.Profile, error)
	updateLastLogin func(ctx context.Context, id uuid.UUID, at time.Time) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error

	createCalls      int
	findByEmailCalls int
	deleteCalls      int
}

func (r *repoStub) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	r.createCalls++
	r.mu.Unlock()
	if r.create != nil {
		return r.create(ctx, p)
	}
	return p, nil
}

func (r *repoStub) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	r.mu.Lock()
	r.findByEmailCalls++
	r.mu.Unlock()
	if r.findByEmail != nil {
		return r.findByEmail(ctx, email)
	}
	return nil, nil
}

func (r *repoStub) FindByUserID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return nil, nil
}

func (r *repoStub) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.updateLastLogin != nil {
		return r.updateLastLogin(ctx, id, at)
	}
	return nil
}

func (r *repoStub) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	r.deleteCalls++
	r.mu.Unlock()
	if r.deleteFn != nil {
		return r.deleteFn(ctx, id)
	}
	return nil
}

func (r *repoStub) counts() (creates, finds, deletes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls, r.findByEmailCalls, r.deleteCalls
}

func newTestCoordinator(provider identity.Provider, repo profile.Repository) *Coordinator {
	return New(provider, repo, Options{
		AuthTimeout:  80 * time.Millisecond,
		StoreTimeout: 50 * time.Millisecond,
		CacheTTL:     time.Minute,
		CacheSize:    8,
		Logger:       slog.Default(),
	})
}

func TestRegisterCreatesExactlyOneProfileWithProviderID(t *testing.T) {
	issuedID := uuid.New()
	provider := &providerStub{
		signUp: func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
			if metadata["first_name"] != "Jane" || metadata["last_name"] != "Doe" {
				t.Fatalf("unexpected metadata %v", metadata)
			}
			return identity.Identity{ID: issuedID, Email: email}, nil
		},
	}
	var created profile.Profile
	repo := &repoStub{
		create: func(ctx context.Context, p profile.Profile) (profile.Profile, error) {
			created = p
			return p, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Message != "User registered, please login" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	creates, _, _ := repo.counts()
	if creates != 1 {
		t.Fatalf("expected exactly one profile row created, got %d", creates)
	}
	if created.UserID != issuedID {
		t.Fatalf("profile userId %s does not equal provider-issued id %s", created.UserID, issuedID)
	}
	if created.Email != "jane@x.com" || created.FirstName != "Jane" {
		t.Fatalf("unexpected profile row %+v", created)
	}
}

func TestRegisterDuplicateResolvesViaRecoveryWithExistingRow(t *testing.T) {
	existingID := uuid.New()
	provider := &providerStub{
		signUp: func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
			return identity.Identity{}, &identity.ProviderError{Code: identity.CodeUserExists, Message: "User already registered"}
		},
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{UserID: existingID, Email: email}, nil
		},
	}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: existingID, Email: email}, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("expected recovery to succeed, got %v", err)
	}
	if result.Message != "User already exists, please login" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	creates, _, _ := repo.counts()
	if creates != 0 {
		t.Fatalf("recovery must not create a second row, got %d creates", creates)
	}

	provider.mu.Lock()
	signOuts := provider.signOutCalls
	provider.mu.Unlock()
	if signOuts == 0 {
		t.Fatal("recovery must not leave the user signed in")
	}
}

func TestRegisterDuplicateBackfillsMissingProfile(t *testing.T) {
	identityID := uuid.New()
	provider := &providerStub{
		signUp: func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
			return identity.Identity{}, &identity.ProviderError{Code: identity.CodeUserExists, Message: "User already registered"}
		},
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{UserID: identityID, Email: email}, nil
		},
	}
	var created profile.Profile
	repo := &repoStub{
		create: func(ctx context.Context, p profile.Profile) (profile.Profile, error) {
			created = p
			return p, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("expected backfill to succeed, got %v", err)
	}
	if result.Message != "User setup completed, please login" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if created.UserID != identityID {
		t.Fatalf("backfilled row uses id %s, want provider id %s", created.UserID, identityID)
	}
}

func TestRegisterRecoverySignInFailureReportsOriginalCondition(t *testing.T) {
	provider := &providerStub{
		signUp: func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
			return identity.Identity{}, &identity.ProviderError{Code: identity.CodeUserExists, Message: "User already registered"}
		},
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{}, &identity.ProviderError{Code: identity.CodeInvalidCredentials, Message: "Invalid login credentials"}
		},
	}

	c := newTestCoordinator(provider, &repoStub{})
	_, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "wrong")
	var provErr *identity.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if provErr.Code != identity.CodeUserExists {
		t.Fatalf("expected the original already-exists condition, got %q", provErr.Code)
	}
}

func TestRegisterMapsKnownProviderCodes(t *testing.T) {
	cases := []struct {
		code    string
		message string
		want    string
	}{
		{identity.CodeWeakPassword, "Password should be at least 6 characters", "Password is too weak, please use at least 6 characters"},
		{identity.CodeValidationFailed, "Unable to validate email address: invalid format", "Please enter a valid email address"},
		{"over_request_rate_limit", "Too many requests", "Too many requests"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			provider := &providerStub{
				signUp: func(ctx context.Context, email, password string, metadata map[string]string) (identity.Identity, error) {
					return identity.Identity{}, &identity.ProviderError{Code: tc.code, Message: tc.message}
				},
			}

			c := newTestCoordinator(provider, &repoStub{})
			_, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "pw")
			var provErr *identity.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected provider error, got %v", err)
			}
			if provErr.Message != tc.want {
				t.Fatalf("expected message %q, got %q", tc.want, provErr.Message)
			}
		})
	}
}

func TestRegisterProfileCreateTimeoutSurfaces(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	repo := &repoStub{
		create: func(ctx context.Context, p profile.Profile) (profile.Profile, error) {
			<-block
			return p, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)
	_, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if !errors.Is(err, ErrProfileCreateTimeout) {
		t.Fatalf("expected profile-create timeout, got %v", err)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatal("timeouts must share the common sentinel")
	}
}

func TestRegisterDuplicateProfileRowKeepsErrorIdentity(t *testing.T) {
	repo := &repoStub{
		create: func(ctx context.Context, p profile.Profile) (profile.Profile, error) {
			return profile.Profile{}, profile.ErrDuplicate
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)
	_, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if !errors.Is(err, profile.ErrDuplicate) {
		t.Fatalf("expected the duplicate condition to survive wrapping, got %v", err)
	}
}

func TestRegisterIDMismatchDeletesRowAndErrs(t *testing.T) {
	rogue := uuid.New()
	repo := &repoStub{
		create: func(ctx context.Context, p profile.Profile) (profile.Profile, error) {
			p.UserID = rogue
			return p, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)
	_, err := c.Register(context.Background(), "Jane", "Doe", "jane@x.com", "Pwd123!")
	if !errors.Is(err, ErrProfileMismatch) {
		t.Fatalf("expected ErrProfileMismatch, got %v", err)
	}

	_, _, deletes := repo.counts()
	if deletes != 1 {
		t.Fatalf("expected compensating delete, got %d deletes", deletes)
	}
}

func TestLoginResolvesProfileAndUpdatesLastLogin(t *testing.T) {
	userID := uuid.New()
	provider := &providerStub{
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{UserID: userID, Email: email, EmailConfirmed: true}, nil
		},
		getSession: func(ctx context.Context) (*identity.Session, error) {
			return &identity.Session{UserID: userID, Email: "jane@x.com", EmailConfirmed: true}, nil
		},
	}

	lastLogin := make(chan uuid.UUID, 1)
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email, FirstName: "Jane"}, nil
		},
		updateLastLogin: func(ctx context.Context, id uuid.UUID, at time.Time) error {
			select {
			case lastLogin <- id:
			default:
			}
			return nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Login(context.Background(), "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User == nil || result.User.Email != "jane@x.com" {
		t.Fatalf("expected resolved profile, got %+v", result.User)
	}

	state := c.State()
	if state.Loading {
		t.Fatal("expected loading false after login")
	}
	if state.User == nil || state.User.Email != "jane@x.com" {
		t.Fatalf("expected published user, got %+v", state.User)
	}

	select {
	case id := <-lastLogin:
		if id != userID {
			t.Fatalf("last login updated for %s, want %s", id, userID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected best-effort last login update")
	}
}

func TestLoginProfileTimeoutDegradesWithoutFailing(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	userID := uuid.New()
	provider := &providerStub{
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{UserID: userID, Email: email}, nil
		},
		getSession: func(ctx context.Context) (*identity.Session, error) {
			return &identity.Session{UserID: userID, Email: "jane@x.com"}, nil
		},
	}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			<-block
			return nil, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Login(context.Background(), "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("login must not fail on profile timeout, got %v", err)
	}
	if result.User != nil {
		t.Fatal("expected authenticated-but-pending result")
	}
	if c.State().Loading {
		t.Fatal("expected loading false despite profile timeout")
	}
}

func TestLoginSlowSessionRefreshStillSucceeds(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	userID := uuid.New()
	provider := &providerStub{
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{UserID: userID, Email: email}, nil
		},
		getSession: func(ctx context.Context) (*identity.Session, error) {
			<-block
			return nil, identity.ErrNoSession
		},
	}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	result, err := c.Login(context.Background(), "jane@x.com", "Pwd123!")
	if err != nil {
		t.Fatalf("login must tolerate a hung session refresh, got %v", err)
	}
	if result.Session.UserID != userID {
		t.Fatalf("expected the sign-in session to be kept, got %+v", result.Session)
	}
	if result.User == nil {
		t.Fatal("expected the profile to resolve regardless of the refresh")
	}
}

func TestLoginProviderRejectionPassesMessageVerbatim(t *testing.T) {
	provider := &providerStub{
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			return identity.Session{}, &identity.ProviderError{Code: identity.CodeInvalidCredentials, Message: "Invalid login credentials"}
		},
	}

	c := newTestCoordinator(provider, &repoStub{})
	_, err := c.Login(context.Background(), "jane@x.com", "nope")
	var provErr *identity.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if provErr.Message != "Invalid login credentials" {
		t.Fatalf("expected verbatim message, got %q", provErr.Message)
	}
	if c.State().User != nil || c.State().Loading {
		t.Fatalf("expected anonymous non-loading state, got %+v", c.State())
	}
}

func TestLoginTimeoutIsDistinctFromRejection(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	provider := &providerStub{
		signIn: func(ctx context.Context, email, password string) (identity.Session, error) {
			<-block
			return identity.Session{}, nil
		},
	}

	c := newTestCoordinator(provider, &repoStub{})
	_, err := c.Login(context.Background(), "jane@x.com", "Pwd123!")
	if !errors.Is(err, ErrAuthTimeout) {
		t.Fatalf("expected ErrAuthTimeout, got %v", err)
	}
	var provErr *identity.ProviderError
	if errors.As(err, &provErr) {
		t.Fatal("a timeout must never masquerade as a provider rejection")
	}
}

func TestInitializeTimeoutStillReachesLoadingFalse(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	provider := &providerStub{
		getSession: func(ctx context.Context) (*identity.Session, error) {
			<-block
			return nil, identity.ErrNoSession
		},
	}

	c := newTestCoordinator(provider, &repoStub{})
	defer c.Close()

	start := time.Now()
	c.Initialize(context.Background())
	elapsed := time.Since(start)

	state := c.State()
	if state.Loading {
		t.Fatal("initialize must reach loading false")
	}
	if state.User != nil {
		t.Fatal("expected anonymous state after restore timeout")
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("initialize took %s, want timeout-bound plus epsilon", elapsed)
	}
}

func TestInitializeRestoresSessionAndProfile(t *testing.T) {
	userID := uuid.New()
	provider := &providerStub{
		getSession: func(ctx context.Context) (*identity.Session, error) {
			return &identity.Session{UserID: userID, Email: "jane@x.com"}, nil
		},
	}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	defer c.Close()

	c.Initialize(context.Background())

	state := c.State()
	if state.User == nil || state.User.UserID != userID {
		t.Fatalf("expected restored user, got %+v", state.User)
	}
}

func TestResolveProfileIsCachedAfterFirstQuery(t *testing.T) {
	userID := uuid.New()
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)

	first := c.ResolveProfile(context.Background(), "jane@x.com")
	second := c.ResolveProfile(context.Background(), "Jane@X.com")
	if first == nil || second == nil {
		t.Fatal("expected both resolutions to succeed")
	}

	_, finds, _ := repo.counts()
	if finds != 1 {
		t.Fatalf("expected at most one store query for a cached email, got %d", finds)
	}
}

func TestLogoutClearsCacheAndPublishedUser(t *testing.T) {
	userID := uuid.New()
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)

	if user := c.ResolveProfile(context.Background(), "jane@x.com"); user == nil {
		t.Fatal("expected profile to resolve")
	}
	c.publish(&profile.Profile{UserID: userID, Email: "jane@x.com"}, false)

	c.Logout(context.Background())

	if c.cache.len() != 0 {
		t.Fatalf("expected empty cache after logout, got %d entries", c.cache.len())
	}
	state := c.State()
	if state.User != nil {
		t.Fatal("expected absent user after logout")
	}

	c.ResolveProfile(context.Background(), "jane@x.com")
	_, finds, _ := repo.counts()
	if finds != 2 {
		t.Fatalf("expected a fresh store query after logout, got %d total", finds)
	}
}

func TestLateLookupResultDiscardedAfterLogout(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})

	userID := uuid.New()
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			<-release
			defer close(done)
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)

	if user := c.ResolveProfile(context.Background(), "jane@x.com"); user != nil {
		t.Fatal("expected resolution to time out")
	}

	// The identity epoch changes before the raced-out lookup completes.
	c.Logout(context.Background())
	close(release)
	<-done
	time.Sleep(20 * time.Millisecond)

	if c.cache.len() != 0 {
		t.Fatal("late lookup result must not repopulate the cache after logout")
	}
}

func TestAuthEventsDriveStateMachine(t *testing.T) {
	userID := uuid.New()
	provider := &providerStub{}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	defer c.Close()
	c.Initialize(context.Background())

	provider.emit(identity.EventSignedIn, &identity.Session{UserID: userID, Email: "jane@x.com"})
	if state := c.State(); state.User == nil || state.User.Email != "jane@x.com" {
		t.Fatalf("expected signed-in event to publish the profile, got %+v", state.User)
	}

	provider.emit(identity.EventSignedOut, nil)
	if state := c.State(); state.User != nil || state.Loading {
		t.Fatalf("expected anonymous state after sign-out event, got %+v", state)
	}
	if c.cache.len() != 0 {
		t.Fatal("expected cache flushed on sign-out event")
	}
}

func TestSignInEventRacingLogoutStaysAnonymous(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	userID := uuid.New()
	provider := &providerStub{}
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			close(entered)
			<-release
			return &profile.Profile{UserID: userID, Email: email}, nil
		},
	}

	c := newTestCoordinator(provider, repo)
	defer c.Close()
	c.Initialize(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		provider.emit(identity.EventSignedIn, &identity.Session{UserID: userID, Email: "jane@x.com"})
	}()

	// Log out while the event's profile lookup is in flight, then let the
	// lookup finish inside its store-timeout window.
	<-entered
	c.Logout(context.Background())
	close(release)
	<-done

	state := c.State()
	if state.User != nil {
		t.Fatalf("stale sign-in event revived the session: %+v", state.User)
	}
	if c.cache.len() != 0 {
		t.Fatal("stale sign-in event must not repopulate the cache")
	}
}

func TestWatchObservesPublishes(t *testing.T) {
	c := newTestCoordinator(&providerStub{}, &repoStub{})

	var mu sync.Mutex
	var states []AuthState
	remove := c.Watch(func(s AuthState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	c.publish(nil, true)
	c.publish(nil, false)
	remove()
	c.publish(nil, true)

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 {
		t.Fatalf("expected two observed states, got %d", len(states))
	}
	if !states[0].Loading || states[1].Loading {
		t.Fatalf("unexpected state sequence %+v", states)
	}
}

func TestClearStaleCacheTargetsSingleEntry(t *testing.T) {
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*profile.Profile, error) {
			return &profile.Profile{UserID: uuid.New(), Email: email}, nil
		},
	}

	c := newTestCoordinator(&providerStub{}, repo)
	c.ResolveProfile(context.Background(), "a@x.com")
	c.ResolveProfile(context.Background(), "b@x.com")

	c.ClearStaleCache("a@x.com")
	if c.cache.len() != 1 {
		t.Fatalf("expected one entry left, got %d", c.cache.len())
	}

	c.ClearStaleCache()
	if c.cache.len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.cache.len())
	}
}
