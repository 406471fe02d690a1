package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	WordPress WordPressConfig `toml:"wordpress"`
	Import    ImportConfig    `toml:"import"`
	Server    ServerConfig    `toml:"server"`
}

// WordPressConfig holds the remote site connection settings.
type WordPressConfig struct {
	SiteURL        string `toml:"site_url"`
	Username       string `toml:"username"`
	AppPassword    string `toml:"app_password"`
	DefaultStatus  string `toml:"default_status"`
	RequestDelayMs int    `toml:"request_delay_ms"`
}

// ImportConfig holds local import settings.
type ImportConfig struct {
	UploadsDir string `toml:"uploads_dir"` // base dir for local featured images
	LogsDir    string `toml:"logs_dir"`    // per-run JSON result artifacts
}

// ServerConfig holds HTTP front-end settings.
type ServerConfig struct {
	Port          int    `toml:"port"`
	Password      string `toml:"password"`       // login password for the web UI
	SessionSecret string `toml:"session_secret"` // cookie signing key
}

const defaultConfigContent = `[wordpress]
site_url = ""                # e.g. "https://example.com"
username = ""                # WP username (or set WP_USERNAME env var)
app_password = ""            # WP application password (or WP_APP_PASSWORD)
default_status = "draft"     # draft, publish, private or pending
request_delay_ms = 300       # pause before every write request

[import]
uploads_dir = "./uploads"
logs_dir = "./logs"

[server]
port = 8080
password = ""                # web UI login password (or CSVPRESS_PASSWORD)
session_secret = ""          # random string; auto-generated if empty
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "request_delay_ms = -1" is an error rather than
	// silently being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// ValidateConnection checks that the fields required to reach the remote
// site are present. An import must not start without them.
func (c *Config) ValidateConnection() error {
	if c.WordPress.SiteURL == "" {
		return errors.New("wordpress.site_url is not configured")
	}
	if c.WordPress.Username == "" || c.WordPress.AppPassword == "" {
		return errors.New("wordpress credentials are not configured")
	}
	return nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "request_delay_ms = -1" which would otherwise be
// silently replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("wordpress", "request_delay_ms") {
		if cfg.WordPress.RequestDelayMs < 0 {
			return fmt.Errorf("invalid wordpress.request_delay_ms %d: must be >= 0", cfg.WordPress.RequestDelayMs)
		}
	}
	if md.IsDefined("wordpress", "default_status") {
		if !validStatus(cfg.WordPress.DefaultStatus) {
			return fmt.Errorf("invalid wordpress.default_status %q: must be draft, publish, private or pending", cfg.WordPress.DefaultStatus)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.WordPress.DefaultStatus == "" {
		cfg.WordPress.DefaultStatus = "draft"
	}
	if cfg.WordPress.RequestDelayMs == 0 {
		cfg.WordPress.RequestDelayMs = 300
	}
	if cfg.Import.UploadsDir == "" {
		cfg.Import.UploadsDir = "./uploads"
	}
	if cfg.Import.LogsDir == "" {
		cfg.Import.LogsDir = "./logs"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WP_SITE_URL"); v != "" {
		cfg.WordPress.SiteURL = v
	}
	if v := os.Getenv("WP_USERNAME"); v != "" {
		cfg.WordPress.Username = v
	}
	if v := os.Getenv("WP_APP_PASSWORD"); v != "" {
		cfg.WordPress.AppPassword = v
	}
	if v := os.Getenv("CSVPRESS_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if !validStatus(cfg.WordPress.DefaultStatus) {
		return fmt.Errorf("invalid wordpress.default_status %q: must be draft, publish, private or pending", cfg.WordPress.DefaultStatus)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.WordPress.SiteURL != "" {
		u, err := url.Parse(cfg.WordPress.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid wordpress.site_url %q: must be an absolute http(s) URL", cfg.WordPress.SiteURL)
		}
		cfg.WordPress.SiteURL = strings.TrimRight(cfg.WordPress.SiteURL, "/")
	}

	if cfg.WordPress.SiteURL == "" || cfg.WordPress.Username == "" || cfg.WordPress.AppPassword == "" {
		slog.Warn("wordpress connection is not fully configured: set site_url, username and app_password before importing")
	}

	return nil
}

func validStatus(s string) bool {
	switch s {
	case "draft", "publish", "private", "pending":
		return true
	}
	return false
}
