package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"

	"ideaboard/internal/config"
	transporthttp "ideaboard/internal/http"
	"ideaboard/internal/ideas"
	"ideaboard/internal/identity"
	"ideaboard/internal/platform/database"
	"ideaboard/internal/platform/logging"
	"ideaboard/internal/platform/migrate"
	"ideaboard/internal/profile"
	"ideaboard/internal/saved"
	"ideaboard/internal/session"
)

func main() {
	// Missing .env files are fine; real deployments use environment variables.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	profileRepo, ideaRepo, savedRepo, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	provider := identity.NewClient(cfg.IdentityURL, cfg.IdentityKey)
	coordinator := session.New(provider, profileRepo, session.Options{
		AuthTimeout:  cfg.AuthTimeout,
		StoreTimeout: cfg.StoreTimeout,
		CacheTTL:     cfg.ProfileCacheTTL,
		CacheSize:    cfg.ProfileCacheSize,
		Logger:       logger,
	})
	coordinator.Initialize(ctx)
	defer coordinator.Close()

	ideaSvc := ideas.NewService(ideaRepo)
	savedSvc := saved.NewService(savedRepo, ideaRepo)
	router := transporthttp.NewRouter(cfg, coordinator, ideaSvc, savedSvc, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Ideaboard API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (profile.Repository, ideas.Repository, saved.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		return profile.NewInMemoryRepository(), ideas.NewInMemoryRepository(seedLocalIdeas()), saved.NewMemoryRepository(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}

	logger.Info("connected to postgres")
	return profile.NewPostgresRepository(db, cfg.ProfileTable),
		ideas.NewPostgresRepository(db),
		saved.NewPostgresRepository(db),
		cleanup,
		nil
}
