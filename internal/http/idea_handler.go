package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ideaboard/internal/exporter"
	"ideaboard/internal/ideas"
	"ideaboard/internal/importer"
)

// IdeaHandler exposes the idea catalog endpoints.
type IdeaHandler struct {
	service  *ideas.Service
	importer *importer.JSONImporter
	exporter *exporter.CSVExporter
	logger   *slog.Logger
}

// NewIdeaHandler creates a handler.
func NewIdeaHandler(service *ideas.Service, imp *importer.JSONImporter, exp *exporter.CSVExporter, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{service: service, importer: imp, exporter: exp, logger: logger}
}

// List returns ideas, newest first, applying any filters.
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listed, err := h.service.List(r.Context(), opts)
	if err != nil {
		if errors.Is(err, ideas.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("list ideas", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ideas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ideas": listed})
}

func parseListOptions(values url.Values) (ideas.ListOptions, error) {
	opts := ideas.ListOptions{}

	if raw := strings.TrimSpace(values.Get("subreddit")); raw != "" {
		subreddit := raw
		opts.Subreddit = &subreddit
	}

	if raw := strings.TrimSpace(values.Get("query")); raw != "" {
		query := raw
		opts.Query = &query
	}

	if raw := strings.TrimSpace(values.Get("min_score")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return ideas.ListOptions{}, fmt.Errorf("invalid min_score filter")
		}
		opts.MinScore = &value
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return ideas.ListOptions{}, fmt.Errorf("invalid limit filter")
		}
		opts.Limit = &value
	}

	return opts, nil
}

// Get returns a single idea.
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	idea, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// Upsert stores a scraped idea, refreshing the existing row when the URL is
// already known.
func (h *IdeaHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title           string `json:"title"`
		URL             string `json:"url"`
		Content         string `json:"content"`
		SourceSubreddit string `json:"sourceSubreddit"`
		DateOfPost      string `json:"dateOfPost"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	idea, err := h.service.Upsert(r.Context(), ideas.UpsertInput{
		Title:           payload.Title,
		URL:             payload.URL,
		Content:         payload.Content,
		SourceSubreddit: payload.SourceSubreddit,
		DateOfPost:      payload.DateOfPost,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idea)
}

// AttachDetails merges the analysis pass onto an existing idea.
func (h *IdeaHandler) AttachDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Introduction         *string `json:"introduction"`
		ImplementationPlan   *string `json:"implementationPlan"`
		MarketAnalysis       *string `json:"marketAnalysis"`
		UserComments         *string `json:"userComments"`
		Innovation           *int    `json:"innovation"`
		Quality              *int    `json:"quality"`
		ProblemSignificance  *int    `json:"problemSignificance"`
		EngagementScore      *int    `json:"engagementScore"`
		ReasoningBehindScore *string `json:"reasoningBehindScore"`
		AdviceForImprovement *string `json:"adviceForImprovement"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	idea, err := h.service.AttachDetails(r.Context(), id, ideas.DetailsInput{
		Introduction:         payload.Introduction,
		ImplementationPlan:   payload.ImplementationPlan,
		MarketAnalysis:       payload.MarketAnalysis,
		UserComments:         payload.UserComments,
		Innovation:           payload.Innovation,
		Quality:              payload.Quality,
		ProblemSignificance:  payload.ProblemSignificance,
		EngagementScore:      payload.EngagementScore,
		ReasoningBehindScore: payload.ReasoningBehindScore,
		AdviceForImprovement: payload.AdviceForImprovement,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

const maxImportUploadBytes int64 = 10 << 20

// Import ingests a pipeline output file of scraped, optionally analyzed ideas.
func (h *IdeaHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		writeError(w, http.StatusNotImplemented, "bulk import is not available")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportUploadBytes)
	defer func() { _ = body.Close() }()

	summary, err := h.importer.Import(r.Context(), body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload is too large (max %d bytes)", maxErr.Limit))
			return
		}
		if errors.Is(err, importer.ErrInvalidUpload) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("bulk import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "bulk import failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Export streams the catalog as CSV.
func (h *IdeaHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not available")
		return
	}

	listed, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Error("export ideas", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export ideas")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ideas.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := h.exporter.Export(w, listed); err != nil {
		h.logger.Error("writing csv export", "error", err)
	}
}

func (h *IdeaHandler) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ideas.ErrNotFound) {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}
	if errors.Is(err, ideas.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("idea service error", "error", err)
	writeError(w, http.StatusInternalServerError, "unexpected error")
}
