package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	Frontend FrontendConfig    `yaml:"frontend"`
	Ontology OntologyConfig    `yaml:"ontology"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	CORS     CORSConfig        `yaml:"cors"`
	Events   EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Data, &c.Frontend, &c.Ontology, &c.SQLite, &c.CORS, &c.Events} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"GEOTUTOR_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"GEOTUTOR_PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the directory with users.json and progress.json.
type DataConfig struct {
	Path string `yaml:"path" env:"GEOTUTOR_DATA_DIR"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// FrontendConfig holds the static frontend directory.
type FrontendConfig struct {
	Path string `yaml:"path" env:"GEOTUTOR_FRONTEND_DIR"`
}

// Validate validates the frontend configuration.
func (c *FrontendConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OntologyConfig holds the ontology file location. With Watch set the file
// is reloaded when it changes.
type OntologyConfig struct {
	Path  string `yaml:"path" env:"GEOTUTOR_ONTOLOGY_PATH"`
	Watch bool   `yaml:"watch" env:"GEOTUTOR_ONTOLOGY_WATCH"`
}

// Validate validates the ontology configuration.
func (c *OntologyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the activity log database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"GEOTUTOR_SQLITE_PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"GEOTUTOR_CORS_ORIGINS" envSeparator:","`
}

// Validate validates the CORS configuration.
func (c *CORSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AllowedOrigins, validation.Required),
	)
}

// EventsConfig holds SSE broker settings.
type EventsConfig struct {
	StatsThrottle time.Duration `yaml:"stats_throttle" env:"GEOTUTOR_STATS_THROTTLE"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StatsThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 5000,
			},
		},
		Data: DataConfig{
			Path: "./data",
		},
		Frontend: FrontendConfig{
			Path: "./frontend",
		},
		Ontology: OntologyConfig{
			Path: "./ontology/my_ontologyIts.xml",
		},
		SQLite: SQLiteConfig{
			Path: "./data/activity.db",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Events: EventsConfig{
			StatsThrottle: 2 * time.Second,
		},
	}
}
