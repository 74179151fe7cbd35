// Package config loads application configuration from the environment.
// The loaded value is threaded explicitly through constructors; nothing
// reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the application reads.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.crossroads.
	DataDir string `env:"CROSSROADS_DATA_DIR"`
	// SessionsDir receives exported documents and fallback dumps.
	// Defaults to ~/crossroads_sessions.
	SessionsDir string `env:"CROSSROADS_SESSIONS_DIR"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	Model        string `env:"CROSSROADS_MODEL" envDefault:"gpt-4-turbo-preview"`

	MaxNodes      int `env:"CROSSROADS_MAX_NODES" envDefault:"50"`
	MaxDepth      int `env:"CROSSROADS_MAX_DEPTH" envDefault:"3"`
	SummaryBudget int `env:"CROSSROADS_SUMMARY_BUDGET" envDefault:"600"`
}

// Load parses configuration from environment variables and fills in the
// home-relative directory defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.DataDir == "" || cfg.SessionsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home dir: %w", err)
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(home, ".crossroads")
		}
		if cfg.SessionsDir == "" {
			cfg.SessionsDir = filepath.Join(home, "crossroads_sessions")
		}
	}

	return &cfg, nil
}
