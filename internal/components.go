package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/auth"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/progress"
	"github.com/starford/geotutor/internal/storage"
	"github.com/starford/geotutor/internal/tutor"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// components are the services shared by the HTTP and MCP front ends.
type components struct {
	store    *storage.FS
	ontology *ontology.Holder
	activity *activity.Log
	auth     *auth.Service
	progress *progress.Service
	tutor    *tutor.Tutor
}

func (c *components) Close() error {
	if c.activity != nil {
		return c.activity.Close()
	}
	return nil
}

// summary is attached to stats.updated events.
func (c *components) summary() any {
	dir := c.auth.Directory(context.Background())
	active := 0
	for _, s := range dir.Sessions {
		if s.IsActive {
			active++
		}
	}
	return map[string]any{
		"students":        len(dir.Students),
		"guests":          len(dir.Guests),
		"active_sessions": active,
		"ontology_loaded": c.ontology.Current().IsLoaded(),
	}
}

// buildComponents prepares storage, loads the ontology and opens the
// activity log. A missing or broken ontology file is logged and the
// service runs without one.
func buildComponents(cfg *Config, logger *slog.Logger) (*components, error) {
	store, err := storage.Bootstrap(cfg.Data.Path, cfg.Frontend.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	onto, err := ontology.Read(cfg.Ontology.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("ontology file not found, continuing without it",
			slog.String("path", cfg.Ontology.Path))
	case err != nil:
		logger.Warn("ontology unavailable, continuing without it",
			slog.String("path", cfg.Ontology.Path),
			slog.String("error", err.Error()))
	}
	onto.LogSummary(logger)
	holder := ontology.NewHolder(onto)

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	log, err := activity.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init activity log: %w", err)
	}

	return &components{
		store:    store,
		ontology: holder,
		activity: log,
		auth:     auth.NewService(store),
		progress: progress.NewService(store, holder),
		tutor:    tutor.New(holder),
	}, nil
}
