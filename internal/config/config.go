// Package config handles the XDG configuration directory, file paths, and
// environment overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskwire"

	// OAuthClientFile is the OAuth client credentials filename (export).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (export).
	TokenFile = "token.json"

	// ThreadFile holds the persisted conversation thread token.
	ThreadFile = "thread.json"

	// EnvFile is the optional env-style settings file in the config dir.
	EnvFile = ".env"

	// DefaultGatewayURL is used when neither flag nor environment set one.
	// The gateway mounts its API under /api.
	DefaultGatewayURL = "http://localhost:3000/api"

	// GatewayURLEnv overrides the gateway base URL.
	GatewayURLEnv = "TASKWIRE_GATEWAY_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// GatewayURL is the base URL of the reasoning gateway API.
	GatewayURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskwire or
// $HOME/.config/taskwire. A .env file in the config dir is loaded into the
// process environment before resolving the gateway URL; explicit flags win
// over environment, environment over the default.
func New(configDir, gatewayURL string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	// Missing .env is fine; only already-unset variables are filled in.
	godotenv.Load(filepath.Join(dir, EnvFile))

	url := gatewayURL
	if url == "" {
		url = os.Getenv(GatewayURLEnv)
	}
	if url == "" {
		url = DefaultGatewayURL
	}

	return &Config{Dir: dir, GatewayURL: url}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// ThreadPath returns the path to the persisted thread token file.
func (c *Config) ThreadPath() string {
	return filepath.Join(c.Dir, ThreadFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the OAuth token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the OAuth token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
