// ABOUTME: Configuration loading and parsing for lot-admin
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is the production REST backend the console talks to.
const DefaultBackendURL = "https://lot-ecom-backend.onrender.com/api/v1"

// DBPathEnv overrides database.path for every command that opens the database.
const DBPathEnv = "LOT_ADMIN_DB_PATH"

// Config represents the complete lot-admin configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Backend   BackendConfig   `yaml:"backend" toml:"backend"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Session   SessionConfig   `yaml:"session" toml:"session"`
	Console   ConsoleConfig   `yaml:"console" toml:"console"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"` // serve on :443 with a tailnet certificate
}

// BackendConfig points the console at the REST backend.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// SessionConfig controls the client session cookie and its server-side row.
type SessionConfig struct {
	// CookieSecure forces the Secure flag even when the request arrived over plain HTTP
	// (for deployments behind a TLS-terminating proxy).
	CookieSecure bool          `yaml:"cookie_secure" toml:"cookie_secure"`
	IdleTTL      time.Duration `yaml:"-" toml:"-"`

	IdleTTLRaw string `yaml:"idle_ttl" toml:"idle_ttl"`
}

// ConsoleConfig holds behaviour knobs for the admin UI.
type ConsoleConfig struct {
	MinPasswordLength int           `yaml:"min_password_length" toml:"min_password_length"`
	MaxImageBytes     int64         `yaml:"max_image_bytes" toml:"max_image_bytes"`
	Issuer            string        `yaml:"issuer" toml:"issuer"` // printed on exported estimates
	CacheTTL          time.Duration `yaml:"-" toml:"-"`

	CacheTTLRaw string `yaml:"cache_ttl" toml:"cache_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if envPath := os.Getenv(DBPathEnv); envPath != "" {
		c.Database.Path = envPath
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = 30 * 24 * time.Hour
	}
	if c.Console.MinPasswordLength == 0 {
		c.Console.MinPasswordLength = 6
	}
	if c.Console.MaxImageBytes == 0 {
		c.Console.MaxImageBytes = 5 << 20
	}
	if c.Console.CacheTTL == 0 {
		c.Console.CacheTTL = 10 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Console.MinPasswordLength < 1 {
		return fmt.Errorf("console.min_password_length must be at least 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.TimeoutRaw != "" {
		cfg.Backend.Timeout, err = time.ParseDuration(cfg.Backend.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing backend.timeout %q: %w", cfg.Backend.TimeoutRaw, err)
		}
	}

	if cfg.Session.IdleTTLRaw != "" {
		cfg.Session.IdleTTL, err = time.ParseDuration(cfg.Session.IdleTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session.idle_ttl %q: %w", cfg.Session.IdleTTLRaw, err)
		}
	}

	if cfg.Console.CacheTTLRaw != "" {
		cfg.Console.CacheTTL, err = time.ParseDuration(cfg.Console.CacheTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing console.cache_ttl %q: %w", cfg.Console.CacheTTLRaw, err)
		}
	}

	return nil
}
