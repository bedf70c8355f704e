// Package config handles CLI flags, optional TOML configuration loading,
// and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// TLS verification modes for outbound connections. Strict is accepted for
// CLI compatibility and behaves identically to Default (platform trust
// store); it is a reserved value.
const (
	TLSModeDefault = "default"
	TLSModeIgnore  = "ignore"
	TLSModeStrict  = "strict"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/cors-proxy/config.toml",
	"configs/config.toml",
}

// CLI holds command-line arguments parsed by Kong. Flags override config
// file values; the config file is optional.
type CLI struct {
	Config   string `kong:"short='c',help='Path to TOML config file (optional).',env='CONFIG_PATH'"`
	Host     string `kong:"short='H',help='Host to bind to.',env='HOST'"`
	Port     int    `kong:"short='p',help='Port to listen on.',env='PORT'"`
	Origin   string `kong:"help='CORS origin to allow: * | a single origin | a comma-separated list.',env='CORS_ORIGIN'"`
	Username string `kong:"short='u',help='Basic auth username.',env='PROXY_USERNAME'"`
	Password string `kong:"help='Basic auth password.',env='PROXY_PASSWORD'"`
	SSL      string `kong:"help='Outbound TLS verification: default|ignore|strict.',env='SSL_MODE'"`
	Verbose  bool   `kong:"short='v',help='Enable verbose logging.'"`
}

// Config is the top-level application configuration. It is immutable after
// Load returns and is safe for unsynchronized concurrent reads.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	CORS     CORSConfig     `toml:"cors"`
	Auth     AuthConfig     `toml:"auth"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`           // 0 means "use default" (9090); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64  `toml:"body_max_bytes"` // 0 means unlimited
}

// CORSConfig holds the allowed-origin policy. A non-empty AllowedOrigins
// list takes precedence over Origin.
type CORSConfig struct {
	Origin         string   `toml:"origin"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AuthConfig holds Basic-auth credentials. Authentication is enabled only
// when both fields are set.
type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// UpstreamConfig holds outbound connection settings.
type UpstreamConfig struct {
	TLSMode         string `toml:"tls_mode"`
	TimeoutSeconds  int    `toml:"timeout_seconds"` // 0 means no outbound timeout
	IdleConnections int    `toml:"idle_connections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Verbose bool   `toml:"verbose"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the optional TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/cors-proxy/config.toml then configs/config.toml; if none exists the
// proxy runs from flags and defaults alone.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.Origin != "" {
		c.CORS.Origin = cli.Origin
		c.CORS.AllowedOrigins = nil
	}
	if cli.Username != "" {
		c.Auth.Username = cli.Username
	}
	if cli.Password != "" {
		c.Auth.Password = cli.Password
	}
	if cli.SSL != "" {
		c.Upstream.TLSMode = cli.SSL
	}
	if cli.Verbose {
		c.Log.Verbose = true
	}
}

func (c *Config) validate() error {
	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", c.Upstream.IdleConnections)
	}

	// TLS mode.
	switch c.Upstream.TLSMode {
	case TLSModeDefault, TLSModeIgnore, TLSModeStrict, "":
		// valid
	default:
		return fmt.Errorf("upstream.tls_mode must be one of: default, ignore, strict; got %q", c.Upstream.TLSMode)
	}

	// Credentials must be set as a pair or not at all.
	if (c.Auth.Username == "") != (c.Auth.Password == "") {
		return fmt.Errorf("auth.username and auth.password must be set together")
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled). The metrics
	// endpoint shadows one relay path, so it must not collide with /health.
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		if p == "/health" || strings.HasPrefix(p, "/health/") {
			return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, "/health")
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields, zero means "unset" because TOML cannot distinguish
// between an explicit 0 and an omitted key. Setting port=0 in the config
// file therefore results in the default port (9090).
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9090
	}
	if c.CORS.Origin == "" && len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.Origin = "*"
	}
	if c.Upstream.TLSMode == "" {
		c.Upstream.TLSMode = TLSModeDefault
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Verbose {
		c.Log.Level = "debug"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// InsecureTLS reports whether outbound TLS verification is disabled.
func (c *Config) InsecureTLS() bool {
	return c.Upstream.TLSMode == TLSModeIgnore
}

// AuthEnabled reports whether Basic-auth credentials are configured.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Username != "" && c.Auth.Password != ""
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if a config file holding credentials is
// readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
