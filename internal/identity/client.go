package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// refreshLeeway is how long before expiry the background loop renews the
// access token.
const refreshLeeway = 30 * time.Second

// Client talks to a hosted GoTrue-compatible auth API. It tracks the current
// session in memory and notifies subscribers on sign-in, sign-out, and token
// refresh, mirroring the provider SDK's auth-state-change stream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	mu           sync.Mutex
	session      *Session
	refreshTimer *time.Timer
	subscribers  map[int]Handler
	nextSubID    int
	closed       bool
}

// Option configures the Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for provider requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// NewClient constructs a Client for the provider at baseURL. The key is the
// project's public API key, sent on every request.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	cl := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		subscribers: make(map[int]Handler),
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

// Close stops the background refresh loop. Subscribers receive no further
// events.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.subscribers = make(map[int]Handler)
}

// Subscribe registers a handler for auth-state changes and returns a
// function releasing the subscription.
func (c *Client) Subscribe(handler Handler) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// SignUp registers a new identity with the provider. Metadata travels in the
// provider's user_metadata field.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (Identity, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	body, err := c.post(ctx, "/auth/v1/signup", payload, "")
	if err != nil {
		return Identity{}, err
	}

	var resp signUpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Identity{}, fmt.Errorf("decode signup response: %w", err)
	}

	user := resp.user()
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("provider returned malformed user id %q: %w", user.ID, err)
	}

	return Identity{
		ID:               id,
		Email:            user.Email,
		EmailConfirmedAt: user.EmailConfirmedAt,
	}, nil
}

// SignInWithPassword exchanges credentials for a session. On success the
// session becomes the client's current session and EventSignedIn fires.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}

	body, err := c.post(ctx, "/auth/v1/token?grant_type=password", payload, "")
	if err != nil {
		return Session{}, err
	}

	session, err := parseTokenResponse(body)
	if err != nil {
		return Session{}, err
	}

	c.setSession(&session, EventSignedIn)
	return session, nil
}

// SignOut revokes the current session with the provider and clears it
// locally. A provider-side revocation failure still clears local state.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	var revokeErr error
	if session != nil {
		if _, err := c.post(ctx, "/auth/v1/logout", nil, session.AccessToken); err != nil {
			revokeErr = err
		}
	}

	c.setSession(nil, EventSignedOut)
	return revokeErr
}

// GetSession returns the current session, renewing the access token first
// when it is at or past its refresh window. Returns ErrNoSession when no
// identity is signed in.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, ErrNoSession
	}

	if time.Until(session.ExpiresAt) > refreshLeeway {
		copied := *session
		return &copied, nil
	}

	refreshed, err := c.refresh(ctx, session.RefreshToken)
	if err != nil {
		c.setSession(nil, EventSignedOut)
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	copied := *refreshed
	return &copied, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]any{"refresh_token": refreshToken}

	body, err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", payload, "")
	if err != nil {
		return nil, err
	}

	session, err := parseTokenResponse(body)
	if err != nil {
		return nil, err
	}

	c.setSession(&session, EventTokenRefreshed)
	return &session, nil
}

// setSession replaces the current session, reschedules the refresh loop, and
// notifies subscribers outside the lock.
func (c *Client) setSession(session *Session, event Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.session = session
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if session != nil {
		wait := time.Until(session.ExpiresAt) - refreshLeeway
		if wait < time.Second {
			wait = time.Second
		}
		token := session.RefreshToken
		c.refreshTimer = time.AfterFunc(wait, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := c.refresh(ctx, token); err != nil {
				c.setSession(nil, EventSignedOut)
			}
		})
	}

	handlers := make([]Handler, 0, len(c.subscribers))
	for _, h := range c.subscribers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	var copied *Session
	if session != nil {
		s := *session
		copied = &s
	}
	for _, h := range handlers {
		h(event, copied)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, bearer string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseProviderError(resp.StatusCode, body)
	}

	return body, nil
}

// parseProviderError normalizes the two error body shapes the provider emits
// into a single ProviderError.
func parseProviderError(status int, body []byte) error {
	var raw struct {
		Code             string `json:"code"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &raw)

	code := raw.ErrorCode
	if code == "" {
		code = raw.Code
	}

	message := raw.Msg
	if message == "" {
		message = raw.Message
	}
	if message == "" {
		message = raw.ErrorDescription
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	// Older deployments report duplicates by message only.
	if code == "" && strings.Contains(strings.ToLower(message), "already registered") {
		code = CodeUserExists
	}
	if status == http.StatusUnprocessableEntity && code == "" {
		code = CodeValidationFailed
	}

	return &ProviderError{Code: code, Message: message}
}

type userPayload struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

// signUpResponse covers both provider shapes: a bare user object when email
// confirmation is pending, or a full token grant when autoconfirm is on.
type signUpResponse struct {
	userPayload
	User *userPayload `json:"user"`
}

func (r signUpResponse) user() userPayload {
	if r.User != nil {
		return *r.User
	}
	return r.userPayload
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

func parseTokenResponse(body []byte) (Session, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Session{}, fmt.Errorf("decode token response: %w", err)
	}

	id, err := uuid.Parse(resp.User.ID)
	if err != nil {
		return Session{}, fmt.Errorf("provider returned malformed user id %q: %w", resp.User.ID, err)
	}

	return Session{
		UserID:         id,
		Email:          resp.User.Email,
		EmailConfirmed: resp.User.EmailConfirmedAt != nil,
		AccessToken:    resp.AccessToken,
		RefreshToken:   resp.RefreshToken,
		ExpiresAt:      time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}
