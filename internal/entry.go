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

	"github.com/starford/procyon/internal/api"
	"github.com/starford/procyon/internal/catalogservice"
	"github.com/starford/procyon/internal/highlight"
	"github.com/starford/procyon/internal/mcpserver"
	"github.com/starford/procyon/internal/session"
	"github.com/starford/procyon/internal/sse"
	"github.com/starford/procyon/internal/treemodel"
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
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("syntax_dir", cfg.Syntax.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Load the persisted session state.
	sess, err := session.Load(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if pruned := sess.PruneMissing(); pruned > 0 {
		logger.Info("Pruned missing recent files", slog.Int("count", pruned))
	}

	// Catalog service.
	svc := catalogservice.NewService(sess, logger)

	// SSE broker: structural tree events flow out as item events.
	broker := sse.NewBroker(2 * time.Second)
	svc.Subscribe(func(ev treemodel.Event) {
		switch ev.Kind {
		case treemodel.Inserted:
			broker.PublishItemEvent("created", ev.ID, "")
		case treemodel.Renamed:
			broker.PublishItemEvent("renamed", ev.ID, "")
		case treemodel.Removed:
			broker.PublishItemEvent("removed", ev.ID, "")
		}
	})

	// Highlighter spec registry over the built-in and user dirs.
	if err := os.MkdirAll(cfg.Syntax.UserDir, 0o755); err != nil {
		return fmt.Errorf("create syntax user dir: %w", err)
	}
	// User dir first: on a name collision the user's spec shadows
	// the built-in one.
	registry := highlight.NewRegistry(logger)
	registry.LoadMetas([]highlight.Storage{
		highlight.NewDirStorage(cfg.Syntax.UserDir, false, logger),
		highlight.NewDirStorage(cfg.Syntax.Dir, true, logger),
	})

	// Open a catalog up front when one is configured or remembered.
	startPath := cfg.Catalog.Path
	if startPath == "" {
		startPath = sess.LastCatalog()
	}
	if startPath != "" {
		warnings, err := svc.OpenCatalog(ctx, startPath)
		if err != nil {
			logger.Warn("could not open catalog on startup",
				slog.String("path", startPath),
				slog.String("error", err.Error()))
		} else {
			for _, w := range warnings {
				logger.Warn("catalog load warning", slog.String("warning", w))
			}
		}
	}

	// Build API router.
	handler := api.NewHandler(svc)
	apiRouter := api.NewRouter(handler, api.RouterOptions{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		SSEHandler:  broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the user syntax dir for spec edits.
	g.Go(func() error {
		err := highlight.Watch(gCtx, registry, cfg.Syntax.UserDir, logger, func() {
			broker.Publish(sse.Event{Type: "syntax.updated", Data: map[string]any{}})
		})
		if err != nil {
			logger.Warn("syntax watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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

	err = g.Wait()

	broker.Close()
	if closeErr := svc.Shutdown(); closeErr != nil {
		logger.Error("catalog close error", slog.String("error", closeErr.Error()))
	}

	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the catalog tools over MCP stdio. The catalog at path (or
// the session's last catalog when path is empty) is opened first.
func RunMCP(ctx context.Context, cfg *Config, path string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	sess, err := session.Load(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	svc := catalogservice.NewService(sess, logger)

	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		path = sess.LastCatalog()
	}
	if path == "" {
		return fmt.Errorf("no catalog to open: pass a path or configure catalog.path")
	}
	if _, err := svc.OpenCatalog(ctx, path); err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if err := svc.Shutdown(); err != nil {
			logger.Error("catalog close error", slog.String("error", err.Error()))
		}
	}()

	return mcpserver.New(svc).ServeStdio()
}
