// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, "console.yaml", `
server:
  http_addr: "127.0.0.1:8090"

backend:
  base_url: "http://localhost:4000/api/v1/"
  timeout: "5s"

database:
  path: "./console.db"

session:
  cookie_secure: true
  idle_ttl: "48h"

console:
  min_password_length: 8
  cache_ttl: "2m"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:8090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:8090")
	}
	if cfg.Backend.BaseURL != "http://localhost:4000/api/v1" {
		t.Errorf("Backend.BaseURL = %q, want trailing slash trimmed", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("Backend.Timeout = %v, want %v", cfg.Backend.Timeout, 5*time.Second)
	}
	if cfg.Database.Path != "./console.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./console.db")
	}
	if !cfg.Session.CookieSecure {
		t.Error("Session.CookieSecure = false, want true")
	}
	if cfg.Session.IdleTTL != 48*time.Hour {
		t.Errorf("Session.IdleTTL = %v, want %v", cfg.Session.IdleTTL, 48*time.Hour)
	}
	if cfg.Console.MinPasswordLength != 8 {
		t.Errorf("Console.MinPasswordLength = %d, want 8", cfg.Console.MinPasswordLength)
	}
	if cfg.Console.CacheTTL != 2*time.Minute {
		t.Errorf("Console.CacheTTL = %v, want %v", cfg.Console.CacheTTL, 2*time.Minute)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8090"
database:
  path: "./console.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != DefaultBackendURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBackendURL)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("Backend.Timeout = %v, want 10s", cfg.Backend.Timeout)
	}
	if cfg.Console.MinPasswordLength != 6 {
		t.Errorf("Console.MinPasswordLength = %d, want 6", cfg.Console.MinPasswordLength)
	}
	if cfg.Console.MaxImageBytes != 5<<20 {
		t.Errorf("Console.MaxImageBytes = %d, want %d", cfg.Console.MaxImageBytes, 5<<20)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "console.toml", `
[server]
http_addr = ":9000"

[backend]
base_url = "https://api.example.com/v1"
timeout = "3s"

[database]
path = "/tmp/console.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPAddr != ":9000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, ":9000")
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("Backend.Timeout = %v, want 3s", cfg.Backend.Timeout)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("LOT_TEST_BACKEND", "http://backend.internal:4000")
	t.Setenv("LOT_TEST_DB", "/var/lib/lot-admin/console.db")

	path := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8090"
backend:
  base_url: "${LOT_TEST_BACKEND}"
database:
  path: "${LOT_TEST_DB}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend.internal:4000" {
		t.Errorf("Backend.BaseURL = %q, want expanded value", cfg.Backend.BaseURL)
	}
	if cfg.Database.Path != "/var/lib/lot-admin/console.db" {
		t.Errorf("Database.Path = %q, want expanded value", cfg.Database.Path)
	}
}

func TestLoad_DBPathOverride(t *testing.T) {
	t.Setenv(DBPathEnv, "/srv/lot-admin/override.db")

	path := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8090"
database:
  path: "/var/lib/lot-admin/console.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/srv/lot-admin/override.db" {
		t.Errorf("Database.Path = %q, want the %s value", cfg.Database.Path, DBPathEnv)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8090"
backend:
  timeout: "soon"
database:
  path: "./console.db"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "backend.timeout") {
		t.Errorf("error = %v, want mention of backend.timeout", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{
			Server:   ServerConfig{HTTPAddr: ":8090"},
			Database: DatabaseConfig{Path: "./console.db"},
		}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr is required"},
		{"tailscale without hostname", func(c *Config) { c.Tailscale.Enabled = true }, "tailscale.hostname is required"},
		{"tailscale replaces http addr", func(c *Config) {
			c.Server.HTTPAddr = ""
			c.Tailscale.Enabled = true
			c.Tailscale.Hostname = "lot-admin"
		}, ""},
		{"bad backend url", func(c *Config) { c.Backend.BaseURL = "ftp://nope" }, "backend.base_url"},
		{"missing database", func(c *Config) { c.Database.Path = "" }, "database.path is required"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
