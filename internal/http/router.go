package http

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ideaboard/internal/config"
	"ideaboard/internal/exporter"
	"ideaboard/internal/ideas"
	"ideaboard/internal/importer"
	"ideaboard/internal/saved"
	"ideaboard/internal/session"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(
	cfg config.Config,
	coordinator *session.Coordinator,
	ideaSvc *ideas.Service,
	savedSvc *saved.Service,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(coordinator, logger)
	ideaHandler := NewIdeaHandler(ideaSvc, importer.NewJSONImporter(ideaSvc), exporter.NewCSVExporter(), logger)
	savedHandler := NewSavedHandler(savedSvc, logger)

	if strings.TrimSpace(cfg.ServiceToken) == "" {
		logger.Warn("service token not configured; pipeline ingestion endpoints are disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)

			r.Group(func(r chi.Router) {
				r.Use(newBearerAuthMiddleware(cfg.JWTSecret, logger))
				r.Get("/profile", authHandler.Profile)
			})
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", ideaHandler.List)
			r.Get("/{id}", ideaHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(newServiceTokenMiddleware(cfg.ServiceToken))
				r.Post("/", ideaHandler.Upsert)
				r.Put("/{id}/details", ideaHandler.AttachDetails)
				r.Post("/import", ideaHandler.Import)
				r.Get("/export", ideaHandler.Export)
			})
		})

		r.Route("/me/saved", func(r chi.Router) {
			r.Use(newBearerAuthMiddleware(cfg.JWTSecret, logger))
			r.Get("/", savedHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", savedHandler.Status)
				r.Put("/", savedHandler.Save)
				r.Delete("/", savedHandler.Unsave)
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
