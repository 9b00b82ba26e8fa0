package http

import (
	"errors"
	"log/slog"
	"net/http"

	"ideaboard/internal/ideas"
	"ideaboard/internal/saved"
)

// SavedHandler exposes the authenticated caller's bookmarks.
type SavedHandler struct {
	service *saved.Service
	logger  *slog.Logger
}

// NewSavedHandler creates a handler.
func NewSavedHandler(service *saved.Service, logger *slog.Logger) *SavedHandler {
	return &SavedHandler{service: service, logger: logger}
}

// List returns the caller's bookmarks, most recently saved first.
func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	bookmarks, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list saved ideas", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list saved ideas")
		return
	}
	if bookmarks == nil {
		bookmarks = []saved.Bookmark{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": bookmarks})
}

// Save bookmarks an idea for the caller.
func (h *SavedHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	ideaID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Save(r.Context(), user.ID, ideaID); err != nil {
		if errors.Is(err, ideas.ErrNotFound) {
			writeError(w, http.StatusNotFound, "idea not found")
			return
		}
		h.logger.Error("save idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save idea")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unsave removes a bookmark for the caller.
func (h *SavedHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	ideaID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Unsave(r.Context(), user.ID, ideaID); err != nil {
		h.logger.Error("unsave idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove saved idea")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Status reports whether the caller has bookmarked the idea.
func (h *SavedHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	ideaID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	isSaved, err := h.service.IsSaved(r.Context(), user.ID, ideaID)
	if err != nil {
		h.logger.Error("check saved idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check saved idea")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": isSaved})
}
