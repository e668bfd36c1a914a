package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	pkgconfig "github.com/starford/geotutor/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.App.HTTP.Address() != ":5000" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail", port)
		}
	}
}

func TestConfig_RequiredPaths(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"data", func(c *Config) { c.Data.Path = "" }, "Path"},
		{"frontend", func(c *Config) { c.Frontend.Path = "" }, "Path"},
		{"ontology", func(c *Config) { c.Ontology.Path = "" }, "Path"},
		{"sqlite", func(c *Config) { c.SQLite.Path = "" }, "Path"},
		{"cors", func(c *Config) { c.CORS.AllowedOrigins = nil }, "AllowedOrigins"},
		{"events", func(c *Config) { c.Events.StatsThrottle = -time.Second }, "StatsThrottle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %q", err, tt.field)
			}
		})
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `app:
  log_level: debug
  http:
    port: 8081
ontology:
  path: /srv/its.xml
  watch: true
cors:
  allowed_origins: ["http://localhost:3000"]
events:
  stats_throttle: 5s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEOTUTOR_DATA_DIR", "/var/lib/geotutor")
	t.Setenv("GEOTUTOR_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg := NewDefaultConfig()
	found, err := pkgconfig.Load(path, cfg)
	if err != nil || !found {
		t.Fatalf("Load = %v, %v", found, err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 8081 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Ontology.Path != "/srv/its.xml" || !cfg.Ontology.Watch {
		t.Errorf("ontology = %+v", cfg.Ontology)
	}
	if cfg.Data.Path != "/var/lib/geotutor" || cfg.Frontend.Path != "./frontend" {
		t.Errorf("paths = %+v %+v", cfg.Data, cfg.Frontend)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins); diff != "" {
		t.Errorf("origins (-want +got):\n%s", diff)
	}
	if cfg.Events.StatsThrottle != 5*time.Second {
		t.Errorf("throttle = %v", cfg.Events.StatsThrottle)
	}
}
