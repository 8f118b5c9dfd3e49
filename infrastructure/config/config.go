// Package config loads tool configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	pkgerrors "cartograph/pkg/errors"
)

// Config holds all tool configuration
type Config struct {
	// DatabasePath is the SQLite database file, or ":memory:" for a
	// throwaway in-process map
	DatabasePath string `yaml:"database_path" validate:"required"`

	Environment string `yaml:"environment" validate:"oneof=development production"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// BlendDistance widens edge intersection queries so edges rendered with
	// a blend region are still found when only their fringe overlaps
	BlendDistance float64 `yaml:"blend_distance" validate:"gte=0"`

	// MinTouchRadius is the floor radius used when querying object nodes by
	// area, so zero-radius objects remain clickable
	MinTouchRadius float64 `yaml:"min_touch_radius" validate:"gte=0"`
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides and validates the result. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DatabasePath:   ":memory:",
		Environment:    "development",
		LogLevel:       "info",
		BlendDistance:  0,
		MinTouchRadius: 1,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, pkgerrors.NewValidationError("cannot read config file").WithCause(err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, pkgerrors.NewValidationError("cannot parse config file").WithCause(err)
		}
	}

	cfg.DatabasePath = getEnv("CARTOGRAPH_DB", cfg.DatabasePath)
	cfg.Environment = getEnv("CARTOGRAPH_ENV", cfg.Environment)
	cfg.LogLevel = getEnv("CARTOGRAPH_LOG_LEVEL", cfg.LogLevel)
	cfg.BlendDistance = getEnvFloat("CARTOGRAPH_BLEND_DISTANCE", cfg.BlendDistance)
	cfg.MinTouchRadius = getEnvFloat("CARTOGRAPH_MIN_TOUCH_RADIUS", cfg.MinTouchRadius)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return pkgerrors.NewValidationError("invalid configuration").WithCause(err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
