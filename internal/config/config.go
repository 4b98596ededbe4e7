// Package config loads gitdeck settings from defaults, an optional YAML file
// and GITDECK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked up in the user config directory.
const DefaultConfigFile = "gitdeck.yaml"

type Config struct {
	Git     Git     `yaml:"git"`
	Refresh Refresh `yaml:"refresh"`
	Watch   Watch   `yaml:"watch"`
	Logging Logging `yaml:"logging"`
	UI      UI      `yaml:"ui"`
}

type Git struct {
	Binary        string `yaml:"binary"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	// CommandTimeout bounds one-off commands run from the CLI. Zero disables
	// it, which suits push and pull over slow links.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	PatchTempDir   string        `yaml:"patch_temp_dir"`
	// DetailsCacheMB bounds the commit details cache.
	DetailsCacheMB int64 `yaml:"details_cache_mb"`
}

type Refresh struct {
	PageSize     int           `yaml:"page_size"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type Watch struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type UI struct {
	Theme string `yaml:"theme"`
}

func Defaults() Config {
	return Config{
		Git: Git{
			Binary:         "git",
			MaxConcurrent:  8,
			DetailsCacheMB: 32,
		},
		Refresh: Refresh{
			PageSize:     100,
			QueryTimeout: 30 * time.Second,
			TickInterval: 50 * time.Millisecond,
		},
		Watch: Watch{
			Enabled:  true,
			Debounce: 350 * time.Millisecond,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		UI: UI{Theme: "auto"},
	}
}

// DefaultPath returns the config file in the user configuration directory,
// or the empty string when that directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gitdeck", DefaultConfigFile)
}

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom returns a Config using the hierarchy defaults < YAML < ENV. The
// YAML file is optional; an empty path or a missing file is not an error.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays non-empty environment variables onto cfg. Malformed
// values are reported instead of silently ignored.
func loadEnv(cfg *Config) error {
	return errors.Join(
		setString(&cfg.Git.Binary, "GITDECK_GIT_BINARY"),
		setInt(&cfg.Git.MaxConcurrent, "GITDECK_GIT_MAX_CONCURRENT"),
		setDuration(&cfg.Git.CommandTimeout, "GITDECK_GIT_COMMAND_TIMEOUT"),
		setString(&cfg.Git.PatchTempDir, "GITDECK_PATCH_TEMP_DIR"),
		setInt64(&cfg.Git.DetailsCacheMB, "GITDECK_DETAILS_CACHE_MB"),
		setInt(&cfg.Refresh.PageSize, "GITDECK_PAGE_SIZE"),
		setDuration(&cfg.Refresh.QueryTimeout, "GITDECK_QUERY_TIMEOUT"),
		setDuration(&cfg.Refresh.TickInterval, "GITDECK_TICK_INTERVAL"),
		setBool(&cfg.Watch.Enabled, "GITDECK_WATCH"),
		setDuration(&cfg.Watch.Debounce, "GITDECK_WATCH_DEBOUNCE"),
		setString(&cfg.Logging.Level, "GITDECK_LOG_LEVEL"),
		setString(&cfg.Logging.Format, "GITDECK_LOG_FORMAT"),
		setString(&cfg.UI.Theme, "GITDECK_THEME"),
	)
}

func validate(cfg *Config) error {
	if cfg.Git.Binary == "" {
		return errors.New("git.binary is required")
	}
	if cfg.Git.MaxConcurrent < 1 {
		return errors.New("git.max_concurrent must be >= 1")
	}
	if cfg.Git.CommandTimeout < 0 {
		return errors.New("git.command_timeout must not be negative")
	}
	if cfg.Git.DetailsCacheMB < 1 {
		return errors.New("git.details_cache_mb must be >= 1")
	}
	if cfg.Refresh.PageSize < 1 {
		return errors.New("refresh.page_size must be >= 1")
	}
	if cfg.Refresh.QueryTimeout < 0 {
		return errors.New("refresh.query_timeout must not be negative")
	}
	if cfg.Refresh.TickInterval <= 0 {
		return errors.New("refresh.tick_interval must be positive")
	}
	if cfg.Watch.Debounce <= 0 {
		return errors.New("watch.debounce must be positive")
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	switch strings.ToLower(cfg.UI.Theme) {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("ui.theme must be auto, light or dark, got %q", cfg.UI.Theme)
	}
	return nil
}

func setString(dst *string, key string) error {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
