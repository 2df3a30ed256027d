package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Addr        string        `env:"TASKBOARD_ADDR" envDefault:":8001"`
	DBPath      string        `env:"TASKBOARD_DB_PATH"`
	UploadDir   string        `env:"TASKBOARD_UPLOAD_DIR"`
	TokenSecret string        `env:"TASKBOARD_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TASKBOARD_TOKEN_TTL" envDefault:"72h"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ValidateForServe checks the settings the HTTP server cannot run without.
func (c Config) ValidateForServe() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TASKBOARD_TOKEN_SECRET is required")
	}
	return nil
}
