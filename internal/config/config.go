// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete llamachat configuration.
type Config struct {
	// General settings
	Version        string `toml:"version" json:"version"`
	DefaultModel   string `toml:"default_model" json:"default_model"`
	DefaultProfile string `toml:"default_profile" json:"default_profile"`

	// API endpoint configuration
	API APIConfig `toml:"api" json:"api"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Session archive configuration
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// APIConfig contains Groq API endpoint configuration.
type APIConfig struct {
	// BaseURL is the Groq OpenAI-compatible endpoint. Override for
	// proxies or testing. The API key itself never lives here.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowStats displays response statistics (tokens/sec, TTFT) after replies
	ShowStats bool `toml:"show_stats" json:"show_stats"`
	// Markdown renders assistant replies as markdown in terminal output
	Markdown bool `toml:"markdown" json:"markdown"`
}

// StorageConfig contains session archive configuration.
type StorageConfig struct {
	// Dir is the archive directory (empty = ~/.llamachat)
	Dir string `toml:"dir" json:"dir"`
	// MaxSessions caps the number of archived sessions. Oldest sessions
	// are pruned when the cap is exceeded. Zero selects the default cap.
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
	// Encrypt enables at-rest encryption of archived message content.
	// Requires LLAMACHAT_ARCHIVE_KEY to be set.
	Encrypt bool `toml:"encrypt" json:"encrypt"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:        "1.0.0",
		DefaultModel:   model.DefaultModelName,
		DefaultProfile: model.DefaultProfileName,

		API: APIConfig{
			BaseURL: "https://api.groq.com/openai/v1",
		},

		UI: UIConfig{
			Theme:     "dark",
			ShowStats: true,
			Markdown:  true,
		},

		Storage: StorageConfig{
			Dir:         "",
			MaxSessions: 100,
			Encrypt:     false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the llamachat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".llamachat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only).
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

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last, then the
// result is normalized and validated.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	path, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				loadErr = fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file into cfg.
// Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all filesystems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// normalization and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = defaults.DefaultProfile
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Storage.MaxSessions == 0 {
		cfg.Storage.MaxSessions = defaults.Storage.MaxSessions
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// The file is written atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# llamachat configuration file")
	fmt.Fprintln(&buf, "# Generated by llamachat - edit with care")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# The Groq API key is read from GROQ_API_KEY and is never stored here.")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Model must resolve against the built-in registry.
	if _, ok := model.GetModelChoice(c.DefaultModel); !ok {
		errs = append(errs, ValidationError{
			Field:   "default_model",
			Message: fmt.Sprintf("unknown model '%s', must be one of: %s", c.DefaultModel, strings.Join(model.ChoiceNames(), ", ")),
		})
	}

	// Profile must resolve against the built-in presets.
	if _, ok := model.GetProfile(c.DefaultProfile); !ok {
		errs = append(errs, ValidationError{
			Field:   "default_profile",
			Message: fmt.Sprintf("unknown profile '%s', must be one of: %s", c.DefaultProfile, strings.Join(model.ProfileNames(), ", ")),
		})
	}

	// Base URL must parse and use an http scheme.
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "api.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "api.base_url",
				Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
			})
		}
	}

	// Theme must be a known value.
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Session cap must stay in a sane range (0 = unlimited).
	if c.Storage.MaxSessions < 0 || c.Storage.MaxSessions > 10000 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_sessions",
			Message: fmt.Sprintf("max_sessions must be 0-10000, got %d", c.Storage.MaxSessions),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize rewrites loosely-cased values to their canonical form.
// "balanced" becomes "Balanced", a model ID becomes its display name,
// and themes are lower-cased. Unknown values pass through for Validate
// to reject with a precise message.
func (c *Config) Normalize() {
	if choice, ok := model.GetModelChoice(c.DefaultModel); ok {
		c.DefaultModel = choice.Name
	}

	for _, name := range model.ProfileNames() {
		if strings.EqualFold(c.DefaultProfile, name) {
			c.DefaultProfile = name
			break
		}
	}

	c.UI.Theme = strings.ToLower(c.UI.Theme)
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LLAMACHAT_MODEL: overrides default_model
//   - LLAMACHAT_PROFILE: overrides default_profile
//   - LLAMACHAT_BASE_URL: overrides api.base_url
//   - LLAMACHAT_THEME: overrides ui.theme
//   - LLAMACHAT_STORAGE_DIR: overrides storage.dir
//
// GROQ_API_KEY is read directly at startup and never passes through the
// config layer.
func (c *Config) ApplyEnvOverrides() {
	if m := os.Getenv("LLAMACHAT_MODEL"); m != "" {
		c.DefaultModel = m
	}

	if profile := os.Getenv("LLAMACHAT_PROFILE"); profile != "" {
		c.DefaultProfile = profile
	}

	if baseURL := os.Getenv("LLAMACHAT_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}

	if theme := os.Getenv("LLAMACHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if dir := os.Getenv("LLAMACHAT_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// String input gets converted to the target type, so the config CLI
	// can pass everything as text.
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"default_model",
		"default_profile",
		"api.base_url",
		"ui.theme",
		"ui.show_stats",
		"ui.markdown",
		"storage.dir",
		"storage.max_sessions",
		"storage.encrypt",
	}
}

// String returns a string representation of the config for debugging.
// The config holds no secrets: the API key lives only in the environment.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Fall back to defaults rather than failing startup.
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
