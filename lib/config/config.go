// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnvironmentVariable names the variable [Load] reads the
// configuration path from.
const ConfigEnvironmentVariable = "FWCONSOLE_CONFIG"

// Environment selects which override section applies.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Codec names accepted by server.codec.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Config is the complete console configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Server   ServerConfig   `yaml:"server"`
	Terminal TerminalConfig `yaml:"terminal"`
	Rules    RulesConfig    `yaml:"rules"`
	Paths    PathsConfig    `yaml:"paths"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides holds the per-environment sections. Only non-empty
// values replace base values.
type ConfigOverrides struct {
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Terminal *TerminalConfig `yaml:"terminal,omitempty"`
	Rules    *RulesConfig    `yaml:"rules,omitempty"`
	Paths    *PathsConfig    `yaml:"paths,omitempty"`
}

// ServerConfig describes the simulator endpoint and the connection
// policy used to reach it. Durations are Go duration strings.
type ServerConfig struct {
	// URL is the websocket endpoint, ws:// or wss://.
	URL string `yaml:"url"`

	// Codec is the preferred framing: "json" or "cbor". The server
	// may still answer with JSON.
	Codec string `yaml:"codec"`

	DialTimeout       string `yaml:"dial_timeout"`
	KeepaliveInterval string `yaml:"keepalive_interval"`
	ReconnectMin      string `yaml:"reconnect_min"`
	ReconnectMax      string `yaml:"reconnect_max"`
}

// Timing is ServerConfig's durations, parsed.
type Timing struct {
	DialTimeout       time.Duration
	KeepaliveInterval time.Duration
	ReconnectMin      time.Duration
	ReconnectMax      time.Duration
}

// TerminalConfig controls the terminal screens.
type TerminalConfig struct {
	// ScrollbackLines bounds the lines each terminal keeps.
	ScrollbackLines int `yaml:"scrollback_lines"`
}

// RulesConfig controls rule-set artifacts.
type RulesConfig struct {
	// Extension is the file extension, without the dot, that exported
	// rule sets carry and imported ones must carry.
	Extension string `yaml:"extension"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Exports is where rule and log exports are written.
	Exports string `yaml:"exports"`
}

// Default returns the development configuration used when no file is
// given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			URL:               "ws://localhost:5000/ws",
			Codec:             CodecJSON,
			DialTimeout:       "10s",
			KeepaliveInterval: "25s",
			ReconnectMin:      "500ms",
			ReconnectMax:      "10s",
		},
		Terminal: TerminalConfig{
			ScrollbackLines: 1000,
		},
		Rules: RulesConfig{
			Extension: "rules",
		},
		Paths: PathsConfig{
			Exports: filepath.Join(homeDir, "fwconsole"),
		},
	}
}

// Load loads the file named by FWCONSOLE_CONFIG. It fails when the
// variable is unset; callers wanting defaults use [Default] instead.
func Load() (*Config, error) {
	configPath := os.Getenv(ConfigEnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your fwconsole.yaml, or use --config", ConfigEnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of [Default], applies
// the matching environment section and expands path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if server := overrides.Server; server != nil {
		overrideString(&c.Server.URL, server.URL)
		overrideString(&c.Server.Codec, server.Codec)
		overrideString(&c.Server.DialTimeout, server.DialTimeout)
		overrideString(&c.Server.KeepaliveInterval, server.KeepaliveInterval)
		overrideString(&c.Server.ReconnectMin, server.ReconnectMin)
		overrideString(&c.Server.ReconnectMax, server.ReconnectMax)
	}
	if overrides.Terminal != nil && overrides.Terminal.ScrollbackLines != 0 {
		c.Terminal.ScrollbackLines = overrides.Terminal.ScrollbackLines
	}
	if overrides.Rules != nil {
		overrideString(&c.Rules.Extension, overrides.Rules.Extension)
	}
	if overrides.Paths != nil {
		overrideString(&c.Paths.Exports, overrides.Paths.Exports)
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Exports = expandVars(c.Paths.Exports, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. Values in vars win
// over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Timing parses the server durations.
func (s ServerConfig) Timing() (Timing, error) {
	var timing Timing
	var errs []error
	parse := func(field, value string, target *time.Duration) {
		duration, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("server.%s: %w", field, err))
			return
		}
		if duration <= 0 {
			errs = append(errs, fmt.Errorf("server.%s must be positive, got %s", field, value))
			return
		}
		*target = duration
	}
	parse("dial_timeout", s.DialTimeout, &timing.DialTimeout)
	parse("keepalive_interval", s.KeepaliveInterval, &timing.KeepaliveInterval)
	parse("reconnect_min", s.ReconnectMin, &timing.ReconnectMin)
	parse("reconnect_max", s.ReconnectMax, &timing.ReconnectMax)
	if len(errs) == 0 && timing.ReconnectMax < timing.ReconnectMin {
		errs = append(errs, fmt.Errorf("server.reconnect_max (%s) is below server.reconnect_min (%s)", s.ReconnectMax, s.ReconnectMin))
	}
	return timing, errors.Join(errs...)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.URL == "" {
		errs = append(errs, fmt.Errorf("server.url is required"))
	} else if parsed, err := url.Parse(c.Server.URL); err != nil {
		errs = append(errs, fmt.Errorf("server.url: %w", err))
	} else if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		errs = append(errs, fmt.Errorf("server.url must use ws:// or wss://, got %q", c.Server.URL))
	}

	if c.Server.Codec != CodecJSON && c.Server.Codec != CodecCBOR {
		errs = append(errs, fmt.Errorf("server.codec must be one of: %s, %s", CodecJSON, CodecCBOR))
	}

	if _, err := c.Server.Timing(); err != nil {
		errs = append(errs, err)
	}

	if c.Terminal.ScrollbackLines < 1 {
		errs = append(errs, fmt.Errorf("terminal.scrollback_lines must be at least 1"))
	}

	if c.Rules.Extension == "" {
		errs = append(errs, fmt.Errorf("rules.extension is required"))
	} else if strings.ContainsAny(c.Rules.Extension, "./\\") {
		errs = append(errs, fmt.Errorf("rules.extension %q must be a bare extension without dots or separators", c.Rules.Extension))
	}

	if c.Paths.Exports == "" {
		errs = append(errs, fmt.Errorf("paths.exports is required"))
	}

	return errors.Join(errs...)
}
