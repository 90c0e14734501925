// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration shared by the server and posterctl.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	DataDir           string        `env:"DATA_DIR" envDefault:"data"`
	AssetsDir         string        `env:"ASSETS_DIR" envDefault:"data/assets"`
	TemplatesFile     string        `env:"TEMPLATES_FILE" envDefault:"data/templates.yaml"`
	OrganizationsFile string        `env:"ORGANIZATIONS_FILE" envDefault:"data/organizations.csv"`
	DBPath            string        `env:"DB_PATH" envDefault:"data/pledge.db"`
	SheetsURL         string        `env:"SHEETS_URL"`
	BackendURL        string        `env:"BACKEND_URL"`
	ShareURL          string        `env:"SHARE_URL" envDefault:"http://localhost:8080/"`
	ShareTitle        string        `env:"SHARE_TITLE" envDefault:"My Flag Pledge"`
	ShareText         string        `env:"SHARE_TEXT" envDefault:"I have taken the pledge to respect the National Flag."`
	AdminToken        string        `env:"ADMIN_TOKEN"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON           bool          `env:"LOG_JSON" envDefault:"false"`
	FontPath          string        `env:"FONT_PATH"`
	PreviewWidth      int           `env:"PREVIEW_WIDTH" envDefault:"350"`
	ExportWidth       int           `env:"EXPORT_WIDTH" envDefault:"1080"`
	Supersample       int           `env:"SUPERSAMPLE" envDefault:"2"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	RelayTimeout      time.Duration `env:"RELAY_TIMEOUT" envDefault:"12s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the renderer cannot work with.
func (c Config) Validate() error {
	if c.PreviewWidth <= 0 {
		return fmt.Errorf("PREVIEW_WIDTH must be positive, got %d", c.PreviewWidth)
	}
	if c.ExportWidth <= 0 {
		return fmt.Errorf("EXPORT_WIDTH must be positive, got %d", c.ExportWidth)
	}
	if c.Supersample < 1 || c.Supersample > 4 {
		return fmt.Errorf("SUPERSAMPLE must be between 1 and 4, got %d", c.Supersample)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
