// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nemo-olympiad/nemoweb/internal/assets"
	"github.com/nemo-olympiad/nemoweb/internal/auth"
	"github.com/nemo-olympiad/nemoweb/internal/authoring"
	"github.com/nemo-olympiad/nemoweb/internal/content"
	"github.com/nemo-olympiad/nemoweb/internal/store"
	"github.com/nemo-olympiad/nemoweb/internal/web"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.String("uploads_root", cfg.Uploads.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure content directory exists.
	if err := os.MkdirAll(cfg.Content.Root, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	// Content file system and page store.
	contentFS, err := content.NewFS(cfg.Content.Root, cfg.Content.Extension)
	if err != nil {
		return fmt.Errorf("init content fs: %w", err)
	}
	pages, err := content.NewStore(contentFS, logger)
	if err != nil {
		return fmt.Errorf("load page store: %w", err)
	}
	logger.Info("Page store loaded", slog.Int("pages", pages.Snapshot().Len()))

	// Upload root.
	uploads, err := assets.NewManager(cfg.Uploads.Root, cfg.Uploads.PublicURL)
	if err != nil {
		return fmt.Errorf("init uploads: %w", err)
	}

	// SQLite store for users, sessions, and materials.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Services and HTTP surface.
	sessions := auth.NewSessions(db, cfg.Session.SecureCookies)
	author := authoring.NewService(pages)
	handler := web.NewHandler(pages, author, uploads, db, sessions, auth.NewHasher())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", web.NewRouter(handler, cfg.Uploads.PublicURL))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Auto-reload the page store on content changes.
	if cfg.Content.AutoReload {
		g.Go(func() error {
			if err := content.Watch(gCtx, pages, logger); err != nil {
				logger.Warn("content watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
