package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/geotutor/internal"
	pkgconfig "github.com/starford/geotutor/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.Load(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Info("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func inspectOntology(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if path := cmd.String("file"); path != "" {
		cfg.Ontology.Path = path
	}
	return internal.InspectOntology(os.Stdout, internal.WithConfig(cfg))
}

func troubleshoot(err error) {
	slog.Error("application error", slog.String("error", err.Error()))
	fmt.Fprintln(os.Stderr, "Troubleshooting:")
	fmt.Fprintln(os.Stderr, "  1. Check that the HTTP port is free (GEOTUTOR_PORT, default 5000)")
	fmt.Fprintln(os.Stderr, "  2. Check that the data and frontend directories are writable")
	fmt.Fprintln(os.Stderr, "  3. Check that the ontology file is valid RDF/XML")
}

func main() {
	cmd := &cli.Command{
		Name:   "geotutor",
		Usage:  "Geometry tutoring backend with an ontology-driven chatbot and progress tracking",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and static frontend",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Expose the tutor as MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:  "ontology",
				Usage: "Print statistics for the ontology file as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Ontology file to inspect instead of the configured one",
					},
				},
				Action: inspectOntology,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		troubleshoot(err)
		os.Exit(1)
	}
}
