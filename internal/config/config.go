// ABOUTME: Configuration loader for the metadash client and dev identity server
// ABOUTME: Layers .env files and METADASH_* environment variables over compiled defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is prepended to every configuration key in the environment
const EnvPrefix = "METADASH_"

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all metadash settings
type Config struct {
	Environment string `koanf:"environment"`

	// Identity service the client talks to
	APIURL      string        `koanf:"api_url"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// Per-user state directory holding session.json and debug.log
	ConfigDir string `koanf:"config_dir"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Break-glass admin credential, disabled unless user and hash are set
	BreakGlassUser  string `koanf:"breakglass_user"`
	BreakGlassHash  string `koanf:"breakglass_hash"`
	BreakGlassEmail string `koanf:"breakglass_email"`

	// Development identity server
	DevAddr     string        `koanf:"dev_addr"`
	DevSecret   string        `koanf:"dev_secret"`
	DevUsers    []string      `koanf:"dev_users"`
	DevTokenTTL time.Duration `koanf:"dev_token_ttl"`
}

func defaults() *Config {
	return &Config{
		Environment: "development",
		APIURL:      "http://localhost:8000",
		HTTPTimeout: 30 * time.Second,
		ConfigDir:   DefaultConfigDir(),
		LogLevel:    "info",
		LogFormat:   "text",
		DevAddr:     ":8000",
		DevTokenTTL: 30 * time.Minute,
	}
}

// DefaultConfigDir returns the default config directory following XDG
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "metadash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metadash"
	}
	return filepath.Join(home, ".config", "metadash")
}

// Load reads configuration with the precedence:
// 1. METADASH_* environment variables
// 2. the given .env files (default ".env"), which never override the environment
// 3. compiled defaults
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := defaults()
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail far from their source
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an http(s) URL", ErrInvalidConfig, c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive", ErrInvalidConfig)
	}
	if c.DevTokenTTL <= 0 {
		return fmt.Errorf("%w: dev_token_ttl must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if (c.BreakGlassUser == "") != (c.BreakGlassHash == "") {
		return fmt.Errorf("%w: breakglass_user and breakglass_hash must be set together", ErrInvalidConfig)
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("%w: config_dir is empty", ErrInvalidConfig)
	}
	return nil
}

// BreakGlassConfigured returns true if the break-glass credential is set
func (c *Config) BreakGlassConfigured() bool {
	return c.BreakGlassUser != "" && c.BreakGlassHash != ""
}

// IsProduction returns true if running in a production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DebugLogPath returns the log file used while the TUI owns the terminal
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.ConfigDir, "debug.log")
}
