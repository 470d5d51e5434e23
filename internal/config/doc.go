// Package config handles configuration loading for lot-admin.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LOT_ADMIN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/lot-admin/config.yaml
//  3. ~/.config/lot-admin/config.yaml
//
// A path ending in .toml is decoded as TOML; anything else is YAML.
// LOT_ADMIN_DB_PATH, when set, replaces database.path.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8090"
//
//	backend:
//	  base_url: "https://lot-ecom-backend.onrender.com/api/v1"
//	  timeout: "10s"
//
//	database:
//	  path: "~/.local/share/lot-admin/console.db"
//
//	session:
//	  cookie_secure: false
//	  idle_ttl: "720h"
//
//	console:
//	  min_password_length: 6
//	  max_image_bytes: 5242880
//	  cache_ttl: "10m"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
