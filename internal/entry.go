// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/geotutor/internal/api"
	"github.com/starford/geotutor/internal/mcpserver"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(app.logOutput, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("frontend_path", cfg.Frontend.Path),
		slog.String("ontology_path", cfg.Ontology.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	// SSE broker.
	broker := sse.NewBroker(
		sse.WithStatsThrottle(cfg.Events.StatsThrottle),
		sse.WithStats(c.summary),
	)
	defer broker.Close()

	handler := newHTTPHandler(cfg, c, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the ontology when the file changes.
	if cfg.Ontology.Watch {
		g.Go(func() error {
			err := ontology.Watch(gCtx, c.ontology, cfg.Ontology.Path, logger, func(o *ontology.Ontology) {
				broker.Publish(sse.Event{Type: sse.TypeOntologyReloaded, Data: o.Stats()})
			})
			if err != nil {
				logger.Error("ontology watcher stopped", slog.String("error", err.Error()))
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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// newHTTPHandler builds the root router: health checks, the JSON API under
// /api and the static frontend for everything else.
func newHTTPHandler(cfg *Config, c *components, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","ontology_loaded":%t}`, c.ontology.Current().IsLoaded())
	})

	r.Mount("/api", api.NewRouter(api.Deps{
		Auth:     c.auth,
		Progress: c.progress,
		Tutor:    c.tutor,
		Ontology: c.ontology,
		Activity: c.activity,
		Events:   broker,
	}))

	r.Handle("/*", api.NewStaticHandler(cfg.Frontend.Path))
	return r
}

// RunMCP serves the tutor tools over stdio. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.logOutput, app.config.App.LogLevel)
	slog.SetDefault(logger)

	c, err := buildComponents(app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(mcpserver.Deps{
		Auth:     c.auth,
		Progress: c.progress,
		Tutor:    c.tutor,
		Ontology: c.ontology,
		Activity: c.activity,
	})
	logger.Info("MCP server listening on stdio")
	return srv.ServeStdio()
}

// InspectOntology loads the configured ontology and writes its statistics
// as JSON to w.
func InspectOntology(w io.Writer, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.logOutput, app.config.App.LogLevel)

	o, err := ontology.Read(app.config.Ontology.Path)
	if err != nil {
		return err
	}
	o.LogSummary(logger)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Path     string         `json:"path"`
		Checksum string         `json:"checksum,omitempty"`
		Stats    ontology.Stats `json:"stats"`
		Classes  []string       `json:"classes"`
	}{
		Path:     o.Path,
		Checksum: o.Checksum,
		Stats:    o.Stats(),
		Classes:  o.ClassNames(),
	})
}
