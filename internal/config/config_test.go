// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/llamachat/internal/model"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.DefaultModel != model.DefaultModelName {
		t.Errorf("DefaultModel = %q, want %q", cfg.DefaultModel, model.DefaultModelName)
	}
	if cfg.DefaultProfile != model.DefaultProfileName {
		t.Errorf("DefaultProfile = %q, want %q", cfg.DefaultProfile, model.DefaultProfileName)
	}
	if cfg.API.BaseURL == "" {
		t.Error("Default config should have an API base URL")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.Storage.MaxSessions == 0 {
		t.Error("Default config should cap archived sessions")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"unknown model", func(c *Config) { c.DefaultModel = "GPT-9" }, true},
		{"unknown profile", func(c *Config) { c.DefaultProfile = "Verbose" }, true},
		{"invalid theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, true},
		{"negative max sessions", func(c *Config) { c.Storage.MaxSessions = -1 }, true},
		{"excessive max sessions", func(c *Config) { c.Storage.MaxSessions = 50000 }, true},
		{"second model choice", func(c *Config) { c.DefaultModel = "DeepSeek-V2-70B" }, false},
		{"auto theme", func(c *Config) { c.UI.Theme = "auto" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidationErrorNamesField(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "solarized"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ui.theme") {
		t.Errorf("error %q should name the offending field", err.Error())
	}
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantModel   string
		wantProfile string
		wantTheme   string
	}{
		{
			name:        "canonical values pass through",
			mutate:      func(c *Config) {},
			wantModel:   model.DefaultModelName,
			wantProfile: "Balanced",
			wantTheme:   "dark",
		},
		{
			name:        "lowercase profile is canonicalized",
			mutate:      func(c *Config) { c.DefaultProfile = "long" },
			wantModel:   model.DefaultModelName,
			wantProfile: "Long",
			wantTheme:   "dark",
		},
		{
			name:        "api model id resolves to display name",
			mutate:      func(c *Config) { c.DefaultModel = "deepseek-r1-distill-llama-70b" },
			wantModel:   "DeepSeek-V2-70B",
			wantProfile: "Balanced",
			wantTheme:   "dark",
		},
		{
			name:        "theme is lowercased",
			mutate:      func(c *Config) { c.UI.Theme = "Dark" },
			wantModel:   model.DefaultModelName,
			wantProfile: "Balanced",
			wantTheme:   "dark",
		},
		{
			name:        "unknown profile passes through for validation",
			mutate:      func(c *Config) { c.DefaultProfile = "Verbose" },
			wantModel:   model.DefaultModelName,
			wantProfile: "Verbose",
			wantTheme:   "dark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			cfg.Normalize()

			if cfg.DefaultModel != tt.wantModel {
				t.Errorf("DefaultModel = %q, want %q", cfg.DefaultModel, tt.wantModel)
			}
			if cfg.DefaultProfile != tt.wantProfile {
				t.Errorf("DefaultProfile = %q, want %q", cfg.DefaultProfile, tt.wantProfile)
			}
			if cfg.UI.Theme != tt.wantTheme {
				t.Errorf("Theme = %q, want %q", cfg.UI.Theme, tt.wantTheme)
			}
		})
	}
}

func TestConfig_NormalizeTrimsBaseURL(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "https://proxy.example.com/v1/"
	cfg.Normalize()

	if cfg.API.BaseURL != "https://proxy.example.com/v1" {
		t.Errorf("BaseURL = %q, want trailing slash removed", cfg.API.BaseURL)
	}
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModel != model.DefaultModelName {
		t.Errorf("DefaultModel = %q, want default", cfg.DefaultModel)
	}
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.DefaultProfile = "Long"
	cfg.UI.ShowStats = false
	cfg.Storage.MaxSessions = 42

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.DefaultProfile != "Long" {
		t.Errorf("DefaultProfile = %q, want Long", loaded.DefaultProfile)
	}
	if loaded.UI.ShowStats {
		t.Error("ShowStats should survive the round trip as false")
	}
	if loaded.Storage.MaxSessions != 42 {
		t.Errorf("MaxSessions = %d, want 42", loaded.Storage.MaxSessions)
	}
}

func TestConfig_SaveCreatesSecureFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Save(Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, err := ConfigPathTOML()
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing after Save: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}
}

func TestConfig_LoadFixesLoosePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".llamachat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"Short\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultProfile != "Short" {
		t.Errorf("DefaultProfile = %q, want Short", cfg.DefaultProfile)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

func TestConfig_LoadRejectsInvalidValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".llamachat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("default_model = \"GPT-9\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown model")
	}
}

func TestConfig_FillDefaults(t *testing.T) {
	cfg := &Config{DefaultProfile: "Short"}
	if err := fillDefaults(cfg); err != nil {
		t.Fatalf("fillDefaults() error = %v", err)
	}

	if cfg.DefaultProfile != "Short" {
		t.Error("fillDefaults overwrote an explicit value")
	}
	if cfg.DefaultModel == "" || cfg.API.BaseURL == "" || cfg.UI.Theme == "" {
		t.Errorf("fillDefaults left gaps: %+v", cfg)
	}
	if cfg.Storage.MaxSessions == 0 {
		t.Error("fillDefaults should apply the session cap")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("LLAMACHAT_MODEL", "DeepSeek-V2-70B")
	t.Setenv("LLAMACHAT_PROFILE", "short")
	t.Setenv("LLAMACHAT_BASE_URL", "https://proxy.example.com/v1")
	t.Setenv("LLAMACHAT_THEME", "light")
	t.Setenv("LLAMACHAT_STORAGE_DIR", "/tmp/llamachat-test")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.Normalize()

	if cfg.DefaultModel != "DeepSeek-V2-70B" {
		t.Errorf("DefaultModel = %q, want DeepSeek-V2-70B", cfg.DefaultModel)
	}
	if cfg.DefaultProfile != "Short" {
		t.Errorf("DefaultProfile = %q, want Short", cfg.DefaultProfile)
	}
	if cfg.API.BaseURL != "https://proxy.example.com/v1" {
		t.Errorf("BaseURL = %q, want override", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
	if cfg.Storage.Dir != "/tmp/llamachat-test" {
		t.Errorf("Storage.Dir = %q, want override", cfg.Storage.Dir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config failed validation: %v", err)
	}
}

func TestConfig_EnvOverridesBeatFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LLAMACHAT_PROFILE", "Long")

	dir := filepath.Join(home, ".llamachat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"Short\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultProfile != "Long" {
		t.Errorf("DefaultProfile = %q, env override should beat the file", cfg.DefaultProfile)
	}
}

// =============================================================================
// GET/SET (DOT NOTATION)
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "dark" {
		t.Errorf("Get('ui.theme') = %v, want 'dark'", val)
	}

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("ui.theme")
	if val != "light" {
		t.Errorf("Get('ui.theme') after Set = %v, want 'light'", val)
	}

	// String values convert to the field's type.
	if err := cfg.Set("storage.max_sessions", "25"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("storage.max_sessions")
	if val != 25 {
		t.Errorf("Get('storage.max_sessions') = %v, want 25", val)
	}

	if err := cfg.Set("ui.show_stats", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("ui.show_stats")
	if val != false {
		t.Errorf("Get('ui.show_stats') = %v, want false", val)
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if err := cfg.Set("invalid.key", "x"); err == nil {
		t.Error("Set() with invalid key should return error")
	}
}

func TestConfig_GetAllKeysResolvable(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

func TestConfig_ConcurrentAccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

func TestConfig_ConcurrentReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	if got := Global(); got.Version != "custom-version" {
		t.Errorf("Version = %q, want custom-version", got.Version)
	}
}

func TestConfig_StringContainsNoKeyField(t *testing.T) {
	cfg := Default()
	dump := cfg.String()

	// The config never carries the API key; make sure no field resembling
	// one sneaks into the debug dump.
	for _, forbidden := range []string{"api_key", "apikey", "GROQ"} {
		if strings.Contains(strings.ToLower(dump), strings.ToLower(forbidden)) {
			t.Errorf("config dump contains %q: %s", forbidden, dump)
		}
	}
}
