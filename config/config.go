// Package config provides YAML and TOML configuration parsing for runboard.
//
// This package enables running runboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Download Job
//	port: 8080
//	poll_interval: 3s
//	log_limit: 100
//
//	backend:
//	  url: ${RUNBOARD_BACKEND:-http://localhost:5000}
//	  timeout: 10s
//	  headers:
//	    Authorization: Bearer ${RUNBOARD_TOKEN}
//
//	log:
//	  level: info
//	  format: json
//
// Files ending in ".toml" are read as TOML with the same keys.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval.
// This prevents accidental hammering of the backend with overly aggressive polling.
const minPollInterval = 1 * time.Second

// maxLogLimit caps how many log entries a single refresh may request.
const maxLogLimit = 10000

const (
	defaultPort          = 8080
	defaultPollInterval  = 3 * time.Second
	defaultLogLimit      = 100
	defaultStartLogDelay = 2 * time.Second
	defaultResumeDelay   = 300 * time.Millisecond
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
)

// Config is the root configuration structure for runboard.
//
// Use [Load] or [Parse] to create a Config from a file.
type Config struct {
	// Title is the dashboard title. Defaults to "Runboard" if not set.
	Title string `yaml:"title" toml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port" toml:"port"`

	// PollInterval is the time between refresh cycles while someone is
	// watching. Defaults to 3s.
	PollInterval Duration `yaml:"poll_interval" toml:"poll_interval"`

	// LogLimit is how many recent log entries are shown. Defaults to 100.
	LogLimit int `yaml:"log_limit" toml:"log_limit"`

	// StartLogDelay is the wait before the extra log refresh that follows a
	// successful start. Defaults to 2s.
	StartLogDelay Duration `yaml:"start_log_delay" toml:"start_log_delay"`

	// ResumeDelay is the wait before the catch-up refresh when a viewer
	// returns. Defaults to 300ms.
	ResumeDelay Duration `yaml:"resume_delay" toml:"resume_delay"`

	// Backend describes the job service.
	Backend BackendConfig `yaml:"backend" toml:"backend"`

	// Log configures the CLI's own logging.
	Log LogConfig `yaml:"log" toml:"log"`
}

// BackendConfig describes the job service.
type BackendConfig struct {
	// URL is the backend base URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url" toml:"url"`

	// Timeout bounds each request. Zero means no per-request timeout.
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers" toml:"headers"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level" toml:"level"`

	// Format is json or text. Defaults to json.
	Format string `yaml:"format" toml:"format"`
}

// SlogLevel returns the configured level as a [slog.Level].
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Duration wraps time.Duration for YAML and TOML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration, which is
// how TOML strings are decoded.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns a configuration with every default applied and no
// backend URL.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a configuration file.
//
// Files with a ".toml" extension are parsed as TOML, anything else as YAML.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the backend URL and header values.
// Defaults are applied for every unset field. The backend URL is checked
// only when present; use [Config.Validate] to require it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(&cfg)
}

// ParseTOML parses TOML configuration data. It behaves like [Parse].
func ParseTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	if err := cfg.expandAndCheck(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.LogLimit == 0 {
		c.LogLimit = defaultLogLimit
	}
	if c.StartLogDelay == 0 {
		c.StartLogDelay = Duration(defaultStartLogDelay)
	}
	if c.ResumeDelay == 0 {
		c.ResumeDelay = Duration(defaultResumeDelay)
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

// expandAndCheck expands environment variables and validates every field
// that is set.
func (c *Config) expandAndCheck() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.LogLimit < 1 || c.LogLimit > maxLogLimit {
		return fmt.Errorf("log_limit must be between 1 and %d, got %d", maxLogLimit, c.LogLimit)
	}
	if c.StartLogDelay.Duration() < 0 {
		return fmt.Errorf("start_log_delay cannot be negative, got %s", c.StartLogDelay.Duration())
	}
	if c.ResumeDelay.Duration() < 0 {
		return fmt.Errorf("resume_delay cannot be negative, got %s", c.ResumeDelay.Duration())
	}

	if c.Backend.URL != "" {
		expanded, err := expandEnvVars(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("backend.url: %w", err)
		}
		c.Backend.URL = expanded

		if err := checkURL(c.Backend.URL); err != nil {
			return fmt.Errorf("backend.url: %w", err)
		}
	}

	for k, v := range c.Backend.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("backend.headers[%s]: %w", k, err)
		}
		c.Backend.Headers[k] = expanded
	}

	if c.Backend.Timeout != 0 && c.Backend.Timeout.Duration() < 100*time.Millisecond {
		return fmt.Errorf("backend.timeout must be at least 100ms if specified, got %s", c.Backend.Timeout.Duration())
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// Validate checks the configuration is complete enough to run: on top of
// what [Parse] checks, the backend URL is required.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	return c.expandAndCheck()
}

// SetBackendURL overrides the backend URL, as the --backend flag does.
func (c *Config) SetBackendURL(raw string) error {
	if err := checkURL(raw); err != nil {
		return fmt.Errorf("backend url: %w", err)
	}
	c.Backend.URL = raw
	return nil
}

func checkURL(raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("url must have a host")
	}
	return nil
}
