// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the riskapi console.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.riskapi/config.toml
//   - ~/.riskapi/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultHost is the public RiskAPI endpoint.
	DefaultHost = "api.risk.statpro.com"
	// DefaultCustomer is used when no customer is configured.
	DefaultCustomer = "internal"
	// DefaultLocalHost is where a development server listens.
	DefaultLocalHost = "localhost:8000"
	// DefaultPageSize is the page size used by paginated resources.
	DefaultPageSize = 20000
	// DefaultTimeoutSecs bounds a single HTTP request.
	DefaultTimeoutSecs = 60
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete console configuration.
type Config struct {
	Client    ClientConfig    `toml:"client" json:"client" envPrefix:"RISKAPI_"`
	Local     LocalConfig     `toml:"local" json:"local" envPrefix:"RISKAPI_LOCAL_"`
	Transport TransportConfig `toml:"transport" json:"transport" envPrefix:"RISKAPI_"`
	Console   ConsoleConfig   `toml:"console" json:"console" envPrefix:"RISKAPI_"`
}

// ClientConfig holds the connection parameters used when a flag is absent.
type ClientConfig struct {
	Host     string `toml:"host" json:"host,omitempty" env:"HOST"`
	Customer string `toml:"customer" json:"customer,omitempty" env:"CUSTOMER"`
	User     string `toml:"user" json:"user,omitempty" env:"USER"`
	// SECURITY: stored in plain text, the file is forced to 0600 on load.
	Password string `toml:"password" json:"password,omitempty" env:"PASSWORD"`
}

// LocalConfig describes the development server targeted by --local.
type LocalConfig struct {
	Host string `toml:"host" json:"host,omitempty" env:"HOST"`
}

// TransportConfig tunes the HTTP client.
type TransportConfig struct {
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs,omitempty" env:"TIMEOUT_SECS"`
	// RequestsPerSecond throttles outgoing calls; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second,omitempty" env:"REQUESTS_PER_SECOND"`
	PageSize          int     `toml:"page_size" json:"page_size,omitempty" env:"PAGE_SIZE"`
}

// ConsoleConfig controls the interactive shell.
type ConsoleConfig struct {
	HistoryFile string `toml:"history_file" json:"history_file,omitempty" env:"HISTORY_FILE"`
	LogFile     string `toml:"log_file" json:"log_file,omitempty" env:"LOG_FILE"`
	LogLevel    string `toml:"log_level" json:"log_level,omitempty" env:"LOG_LEVEL"`
	// Color is one of "auto", "always" or "never".
	Color string `toml:"color" json:"color,omitempty" env:"COLOR"`
}

// Default returns a configuration with built-in defaults.
// Client credentials are left empty on purpose so that a missing password
// triggers the interactive prompt.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &Config{
		Client: ClientConfig{
			Host:     DefaultHost,
			Customer: DefaultCustomer,
		},
		Local: LocalConfig{
			Host: DefaultLocalHost,
		},
		Transport: TransportConfig{
			TimeoutSecs: DefaultTimeoutSecs,
			PageSize:    DefaultPageSize,
		},
		Console: ConsoleConfig{
			HistoryFile: filepath.Join(dir, "history"),
			LogFile:     filepath.Join(dir, "console.log"),
			LogLevel:    "info",
			Color:       "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the console configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".riskapi"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
// SECURITY: the file may hold a RiskAPI password.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file (TOML first, then JSON), applies
// environment overrides and fills defaults. A missing file is not an error.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(&Config{})
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are decoded as JSON, everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// finish layers environment overrides over cfg, fills the remaining gaps
// from Default() and validates the result.
func finish(cfg *Config) (*Config, error) {
	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("error merging defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides overwrites fields of cfg with any RISKAPI_* variables
// that are set.
func ApplyEnvOverrides(cfg *Config) error {
	envCfg := &Config{}
	if err := env.Parse(envCfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	if err := mergo.Merge(cfg, envCfg, mergo.WithOverride); err != nil {
		return fmt.Errorf("error merging env configs: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	validColors    = map[string]bool{"auto": true, "always": true, "never": true}
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.Contains(c.Client.Host, "://") {
		errs = append(errs, ValidationError{"client.host", "must be host[:port] without a scheme"})
	}
	if strings.TrimSpace(c.Local.Host) == "" {
		errs = append(errs, ValidationError{"local.host", "must not be empty"})
	}
	if c.Transport.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{"transport.timeout_secs", "must not be negative"})
	}
	if c.Transport.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{"transport.requests_per_second", "must not be negative"})
	}
	if c.Transport.PageSize <= 0 {
		errs = append(errs, ValidationError{"transport.page_size", "must be positive"})
	}
	if !validLogLevels[strings.ToLower(c.Console.LogLevel)] {
		errs = append(errs, ValidationError{"console.log_level", fmt.Sprintf("unknown level %q", c.Console.LogLevel)})
	}
	if !validColors[strings.ToLower(c.Console.Color)] {
		errs = append(errs, ValidationError{"console.color", fmt.Sprintf("must be auto, always or never, got %q", c.Console.Color)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String renders the configuration as TOML with the password masked.
func (c *Config) String() string {
	clone := *c
	if clone.Client.Password != "" {
		clone.Client.Password = "********"
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(clone); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return sb.String()
}
