// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIURL                string
	DatabasePath          string
	LogPath               string
	LogLevel              string
	PollInterval          time.Duration
	RedirectCountdown     time.Duration
	LogoutRedirectDelay   time.Duration
	RequestTimeout        time.Duration
	ManualRefreshInterval time.Duration
	WatchCredentials      bool
	DesktopNotifications  bool
}

// Default values
const (
	defaultAPIURL                = "http://localhost:8080"
	defaultPollInterval          = 10 * time.Second
	defaultRedirectCountdown     = 5 * time.Second
	defaultLogoutRedirectDelay   = 100 * time.Millisecond
	defaultRequestTimeout        = 15 * time.Second
	defaultManualRefreshInterval = 2 * time.Second
	defaultLogLevel              = "info"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIURL:                strings.TrimRight(getEnvString("PARKCONTROL_API_URL", defaultAPIURL), "/"),
		DatabasePath:          getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		LogPath:               getEnvString("LOG_PATH", getDefaultLogPath()),
		LogLevel:              getEnvString("LOG_LEVEL", defaultLogLevel),
		PollInterval:          getEnvDuration("POLL_INTERVAL", defaultPollInterval),
		RedirectCountdown:     getEnvDuration("REDIRECT_COUNTDOWN", defaultRedirectCountdown),
		LogoutRedirectDelay:   getEnvDuration("LOGOUT_REDIRECT_DELAY", defaultLogoutRedirectDelay),
		RequestTimeout:        getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		ManualRefreshInterval: getEnvDuration("MANUAL_REFRESH_INTERVAL", defaultManualRefreshInterval),
		WatchCredentials:      getEnvBool("WATCH_CREDENTIALS", true),
		DesktopNotifications:  getEnvBool("DESKTOP_NOTIFICATIONS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot fall back to a default.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PARKCONTROL_API_URL must be an absolute URL, got %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("PARKCONTROL_API_URL must use http or https, got %q", u.Scheme)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.RedirectCountdown < time.Second {
		return fmt.Errorf("REDIRECT_COUNTDOWN must be at least 1s, got %s", c.RedirectCountdown)
	}
	return nil
}

// CountdownSeconds returns the redirect countdown as whole seconds.
func (c *Config) CountdownSeconds() int {
	return int(c.RedirectCountdown / time.Second)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "parkcontrol", ".env"),
			filepath.Join(home, ".parkcontrol", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "parkcontrol.db"
	}
	return filepath.Join(home, ".config", "parkcontrol", "parkcontrol.db")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "parkcontrol.log"
	}
	return filepath.Join(home, ".config", "parkcontrol", "parkcontrol.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
