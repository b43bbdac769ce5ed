// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by [Config.ApplyEnvironment].
const (
	EnvConfig     = "INFEREX_CONFIG"
	EnvAPI        = "INFEREX_API"
	EnvAPIVersion = "INFEREX_API_VERSION"
	EnvToken      = "INFEREX_TOKEN"
	EnvUsername   = "INFEREX_USERNAME"
	EnvPassword   = "INFEREX_PASSWORD"
	EnvLogLevel   = "INFEREX_LOG_LEVEL"
	EnvTimeout    = "INFEREX_TIMEOUT"
)

// Config is the client configuration.
type Config struct {
	// API configures the server endpoint.
	API APIConfig `yaml:"api"`

	// Auth holds credentials. When Token is empty the token saved by
	// "inferex login" is used.
	Auth AuthConfig `yaml:"auth"`

	// Deploy holds defaults for "inferex deploy".
	Deploy DeployConfig `yaml:"deploy"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// APIConfig configures the server endpoint.
type APIConfig struct {
	// URL is the API root. Default: https://api.inferex.com
	URL string `yaml:"url"`

	// Version is appended to URL as a path segment when set.
	Version string `yaml:"version"`

	// Timeout bounds each HTTP exchange, as a Go duration string.
	// Default: 10m (bundle uploads can be large).
	Timeout string `yaml:"timeout"`
}

// AuthConfig holds credentials.
type AuthConfig struct {
	// Token is a bearer token.
	Token string `yaml:"token"`

	// Username and Password are used to log in again when the server
	// rejects the token.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// SessionFile overrides where "inferex login" stores its token.
	SessionFile string `yaml:"session_file"`
}

// DeployConfig holds deployment defaults.
type DeployConfig struct {
	// Compression is the bundle codec: xz, zstd, gzip, or lz4.
	// Default: xz
	Compression string `yaml:"compression"`

	// SizeWarningBytes is the bundle size above which a warning is
	// logged. Default: 100000000
	SizeWarningBytes int64 `yaml:"size_warning_bytes"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: warn
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     "https://api.inferex.com",
			Timeout: "10m",
		},
		Deploy: DeployConfig{
			Compression:      "xz",
			SizeWarningBytes: 100_000_000,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load resolves the configuration. path is the --config flag value;
// when empty, INFEREX_CONFIG is consulted, and when that is empty too
// only the defaults are used. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = Default()
	} else if cfg, err = LoadFile(path); err != nil {
		return nil, err
	}

	cfg.ApplyEnvironment(os.LookupEnv)
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a specific file path on top of
// the defaults. No environment overrides are applied.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// ApplyEnvironment overrides fields from INFEREX_* variables. lookup
// is os.LookupEnv outside of tests. A variable that is set but empty
// is ignored.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	override := func(target *string, name string) {
		if value, ok := lookup(name); ok && value != "" {
			*target = value
		}
	}
	override(&c.API.URL, EnvAPI)
	override(&c.API.Version, EnvAPIVersion)
	override(&c.API.Timeout, EnvTimeout)
	override(&c.Auth.Token, EnvToken)
	override(&c.Auth.Username, EnvUsername)
	override(&c.Auth.Password, EnvPassword)
	override(&c.Log.Level, EnvLogLevel)
}

// RequestTimeout parses API.Timeout. An empty value means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("api.timeout: must not be negative (got %s)", c.API.Timeout)
	}
	return timeout, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	parsed, err := url.Parse(c.API.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("api.url must be an http or https URL (got %q)", c.API.URL))
	}

	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}

	switch c.Deploy.Compression {
	case "", "xz", "zstd", "gzip", "lz4":
	default:
		errs = append(errs, fmt.Errorf("deploy.compression: unsupported codec %q", c.Deploy.Compression))
	}

	if c.Deploy.SizeWarningBytes < 0 {
		errs = append(errs, fmt.Errorf("deploy.size_warning_bytes must not be negative"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func (c *Config) expandVariables() {
	c.Auth.SessionFile = expandVars(c.Auth.SessionFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
