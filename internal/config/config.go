// Package config loads DocManager client configuration from
// ~/.docmanager/config.yaml with environment overrides. A missing file
// yields the defaults; a malformed file is an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIBaseURL = "DOCMANAGER_API_URL"
	EnvTheme      = "DOCMANAGER_THEME"
	EnvWatchDir   = "DOCMANAGER_WATCH_DIR"
	EnvLogLevel   = "DOCMANAGER_LOG_LEVEL"
)

// Logging holds log output settings.
type Logging struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
}

// Config is the full client configuration.
type Config struct {
	// APIBaseURL is the DocManager backend root, e.g. http://localhost:8000.
	APIBaseURL string `yaml:"api_base_url" validate:"required,url"`

	// RequestTimeout bounds one backend request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Theme selects the TUI palette.
	Theme string `yaml:"theme" validate:"omitempty,oneof=light dark"`

	// WatchDir, when set, is auto-uploaded: files created there are
	// submitted to the backend without manual picking.
	WatchDir string `yaml:"watch_dir"`

	Logging Logging `yaml:"logging"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:     "http://localhost:8000",
		RequestTimeout: 60 * time.Second,
		Theme:          "dark",
		Logging:        Logging{Level: "info"},
	}
}

// DefaultPath returns ~/.docmanager/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docmanager", "config.yaml")
	}
	return filepath.Join(home, ".docmanager", "config.yaml")
}

// Load reads the file at path (missing file is fine), applies .env and
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	// Best-effort .env for local development, matching the backend's
	// own convention.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Default().RequestTimeout
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv(EnvWatchDir); v != "" {
		cfg.WatchDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}
