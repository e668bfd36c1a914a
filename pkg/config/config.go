// Package config provides YAML-based configuration loading with environment
// variable expansion and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load fills target from a YAML file (with ${VAR} expansion), then applies
// `env` struct tag overrides, then validates. A missing file is not an
// error: target keeps its defaults. It reports whether the file was read.
func Load[T any](filename string, target *T) (bool, error) {
	found := true
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		found = false
	case err != nil:
		return false, fmt.Errorf("failed to read config file %s: %w", filename, err)
	default:
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
			return true, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	if err := ParseEnv(target); err != nil {
		return found, err
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return found, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return found, nil
}

// ParseEnv overrides target fields from environment variables. Fields whose
// variable is unset keep their current value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
