package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL            = "http://localhost:8080"
	DefaultTimeoutSecs        = 30
	DefaultSuccessDismissSecs = 3
	DefaultResultsDismissSecs = 60
	DefaultLogLevel           = "info"
)

// BackendConfig locates the retrieval service.
type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// UIConfig tunes the terminal views.
type UIConfig struct {
	SuccessDismissSecs int `yaml:"success_dismiss_secs"`
	ResultsDismissSecs int `yaml:"results_dismiss_secs"`
}

// LogConfig controls the slog handler. An empty File means the TUI discards
// logs and the CLI writes them to stderr.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend BackendConfig `yaml:"backend"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// Timeout is the per-request HTTP timeout; zero leaves the transport default.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// SuccessDismiss is how long an ingest confirmation stays on screen.
func (c *AppConfig) SuccessDismiss() time.Duration {
	return time.Duration(c.UI.SuccessDismissSecs) * time.Second
}

// ResultsDismiss is how long search results stay before the view returns to idle.
func (c *AppConfig) ResultsDismiss() time.Duration {
	return time.Duration(c.UI.ResultsDismissSecs) * time.Second
}

// Validate rejects values the client cannot work with.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url: %q is not an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSecs < 0 {
		return errors.New("backend.timeout_secs must not be negative")
	}
	if c.UI.SuccessDismissSecs < 0 {
		return errors.New("ui.success_dismiss_secs must not be negative")
	}
	if c.UI.ResultsDismissSecs < 0 {
		return errors.New("ui.results_dismiss_secs must not be negative")
	}
	return nil
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Keys the file omits keep their defaults; explicit zeros are kept.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./semret.yaml first, then ~/.config/semret/config.yaml.
// If neither exists, it writes defaults to ~/.config/semret/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "semret.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath is ~/.config/semret/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semret", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{BaseURL: DefaultBaseURL, TimeoutSecs: DefaultTimeoutSecs},
		UI:      UIConfig{SuccessDismissSecs: DefaultSuccessDismissSecs, ResultsDismissSecs: DefaultResultsDismissSecs},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// applyEnv lets SEMRET_* variables (or a .env file loaded earlier) override the file.
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("SEMRET_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SEMRET_TIMEOUT_SECS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SEMRET_TIMEOUT_SECS: %q is not a whole number of seconds", v)
		}
		cfg.Backend.TimeoutSecs = n
	}
	if v := os.Getenv("SEMRET_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SEMRET_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}
