package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ideaboard/internal/identity"
	"ideaboard/internal/profile"
	"ideaboard/internal/session"
)

// AuthHandler exposes the session lifecycle endpoints backed by the
// coordinator.
type AuthHandler struct {
	coordinator *session.Coordinator
	logger      *slog.Logger
}

// NewAuthHandler creates a handler.
func NewAuthHandler(coordinator *session.Coordinator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{coordinator: coordinator, logger: logger}
}

type sessionPayload struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Register creates a provider identity and its profile row.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	result, err := h.coordinator.Register(r.Context(), payload.FirstName, payload.LastName, payload.Email, payload.Password)
	if err != nil {
		h.writeCoordinatorError(w, err, "register")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": result.Message})
}

// Login signs the user in and returns the session plus the resolved profile.
// The user field is null when the profile lookup timed out; the session is
// still established.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	result, err := h.coordinator.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeCoordinatorError(w, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": sessionPayload{
			AccessToken:  result.Session.AccessToken,
			RefreshToken: result.Session.RefreshToken,
			ExpiresAt:    result.Session.ExpiresAt,
		},
		"user": result.User,
	})
}

// Logout revokes the provider session and clears local state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.coordinator.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the coordinator's current auth state.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	state := h.coordinator.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    state.User,
		"loading": state.Loading,
	})
}

// Profile resolves the profile for the authenticated caller.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil || user.Email == "" {
		unauthorized(w)
		return
	}

	resolved := h.coordinator.ResolveProfile(r.Context(), user.Email)
	if resolved == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (h *AuthHandler) writeCoordinatorError(w http.ResponseWriter, err error, operation string) {
	var providerErr *identity.ProviderError
	if errors.As(err, &providerErr) {
		status := http.StatusBadRequest
		if providerErr.Code == identity.CodeInvalidCredentials {
			status = http.StatusUnauthorized
		}
		writeError(w, status, providerErr.Message)
		return
	}
	if errors.Is(err, session.ErrTimeout) {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if errors.Is(err, profile.ErrDuplicate) {
		writeError(w, http.StatusConflict, "profile already exists")
		return
	}
	if errors.Is(err, session.ErrStore) || errors.Is(err, session.ErrProfileMismatch) {
		h.logger.Error("auth store failure", "operation", operation, "error", err)
		writeError(w, http.StatusBadGateway, "account storage is unavailable")
		return
	}
	h.logger.Error("auth failure", "operation", operation, "error", err)
	writeError(w, http.StatusInternalServerError, "unexpected error")
}
