// Package config loads actionspec settings from an optional YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/actionspec/pkg/lint"
)

// Environment variables that override file settings.
const (
	EnvLogLevel     = "ACTIONSPEC_LOG_LEVEL"
	EnvAddr         = "ACTIONSPEC_ADDR"
	EnvPinataKey    = "PINATA_API_KEY"
	EnvPinataSecret = "PINATA_API_SECRET_KEY"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultPinataEndpoint  = "https://api.pinata.cloud/pinning/pinJSONToIPFS"
	DefaultPublishTimeout  = 30 * time.Second
	DefaultPublishAttempts = 3
)

// Config is the full settings tree.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Server   Server  `yaml:"server"`
	Publish  Publish `yaml:"publish"`
	Lint     Lint    `yaml:"lint"`
}

// Server configures the HTTP validation service.
type Server struct {
	Addr string `yaml:"addr"`
}

// Publish configures the pinning collaborator.
type Publish struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	APISecret   string        `yaml:"api_secret"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// Lint configures the rule set. An empty list selects lint.DefaultRules;
// Disabled turns linting off.
type Lint struct {
	Disabled bool        `yaml:"disabled"`
	Rules    []lint.Rule `yaml:"rules"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   Server{Addr: DefaultAddr},
		Publish: Publish{
			Endpoint:    DefaultPinataEndpoint,
			Timeout:     DefaultPublishTimeout,
			MaxAttempts: DefaultPublishAttempts,
		},
	}
}

// LoadFile reads path, applies defaults and environment overrides. An empty
// path skips the file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv(os.Getenv)
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return Load(bytes.NewReader(data), os.Getenv)
}

// Load decodes YAML from r over the defaults. Unknown keys are rejected.
// getenv supplies overrides; pass nil to ignore the environment.
func Load(r io.Reader, getenv func(string) string) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // strict: reject unknown fields
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if getenv != nil {
		cfg.applyEnv(getenv)
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvPinataKey); v != "" {
		c.Publish.APIKey = v
	}
	if v := getenv(EnvPinataSecret); v != "" {
		c.Publish.APISecret = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Publish.MaxAttempts < 1 {
		return fmt.Errorf("publish.max_attempts must be at least 1, got %d", c.Publish.MaxAttempts)
	}
	if c.Publish.Timeout <= 0 {
		return fmt.Errorf("publish.timeout must be positive, got %s", c.Publish.Timeout)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	return nil
}

// LintRules returns the rules to compile, or nil when linting is disabled.
func (c *Config) LintRules() []lint.Rule {
	if c.Lint.Disabled {
		return nil
	}
	if len(c.Lint.Rules) == 0 {
		return lint.DefaultRules()
	}
	return c.Lint.Rules
}
