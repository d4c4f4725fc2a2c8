// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatbot.
//
// The completion API key comes only from the environment. An optional TOML
// file holds presentation and logging preferences:
//   - ~/.chatbot/config.toml
//   - Built-in defaults
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Environment variables read by ApplyEnvOverrides.
const (
	EnvAPIKey       = "TOGETHER_API_KEY"
	EnvAPIKeyLegacy = "VITE_TOGETHER_API_KEY"
	EnvLogLevel     = "CHATBOT_LOG_LEVEL"
	EnvLogFile      = "CHATBOT_LOG_FILE"
	EnvLanguage     = "CHATBOT_LANG"
	EnvTheme        = "CHATBOT_THEME"
)

// ErrMissingAPIKey is returned by Validate when no API key was found.
var ErrMissingAPIKey = errors.New("API key not set: export " + EnvAPIKey)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatbot configuration.
type Config struct {
	// APIKey authenticates against the completion endpoint. Never read from
	// or written to the config file.
	APIKey string `toml:"-"`

	Log LogConfig `toml:"log"`
	UI  UIConfig  `toml:"ui"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of: debug, info, warn, error, disabled
	Level string `toml:"level"`
	// File receives logs in interactive mode. Empty means the default path.
	File string `toml:"file"`
	// Pretty switches from JSON lines to console formatting.
	Pretty bool `toml:"pretty"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Language selects the interface strings: "id", "en"
	Language string `toml:"language"`
	// Markdown renders assistant replies as markdown.
	Markdown bool `toml:"markdown"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme:    "auto",
			Language: "id",
			Markdown: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatbot configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatbot"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns the log file used when none is configured.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chatbot.log")
	}
	return filepath.Join(dir, "chatbot.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path when it exists, then
// applies environment overrides, defaults and validation.
// On validation failure the populated config is returned with the error so
// callers can still display it.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return ValidateErrors{{Field: strings.Join(keys, ", "), Message: "unknown configuration key"}}
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is find ErrMissingAPIKey inside a collection.
func (e ValidateErrors) Is(target error) bool {
	if target != ErrMissingAPIKey {
		return false
	}
	for _, v := range e {
		if v.Field == "api_key" {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, ValidationError{
			Field:   "api_key",
			Message: ErrMissingAPIKey.Error(),
		})
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	validLanguages := map[string]bool{"id": true, "en": true}
	if !validLanguages[strings.ToLower(c.UI.Language)] {
		errs = append(errs, ValidationError{
			Field:   "ui.language",
			Message: fmt.Sprintf("invalid language '%s', must be one of: id, en", c.UI.Language),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty fields with defaults and normalizes case.
func (c *Config) SetDefaults() {
	defaults := Default()

	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = defaults.UI.Language
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	c.UI.Language = strings.ToLower(c.UI.Language)
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	// TOGETHER_API_KEY, falling back to the web build's variable name
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	} else if key := os.Getenv(EnvAPIKeyLegacy); key != "" {
		c.APIKey = key
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}

	if file := os.Getenv(EnvLogFile); file != "" {
		c.Log.File = file
	}

	if lang := os.Getenv(EnvLanguage); lang != "" {
		c.UI.Language = lang
	}

	if theme := os.Getenv(EnvTheme); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// APIKeyMasked returns a masked version of the API key for display.
// No part of the key is shown; a short hash identifies it instead.
func (c *Config) APIKeyMasked() string {
	if c.APIKey == "" {
		return "[not set]"
	}
	h := sha256.Sum256([]byte(c.APIKey))
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.APIKey), hex.EncodeToString(h[:4]))
}

// String renders the config as TOML with the API key masked.
func (c *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# api_key = %s\n", c.APIKeyMasked())
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		fmt.Fprintf(&sb, "# encode error: %v\n", err)
	}
	return sb.String()
}
