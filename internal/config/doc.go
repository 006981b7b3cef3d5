// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for llamachat.
//
// Configuration lives in a single TOML file with sensible defaults,
// environment variable overrides, and validation. A file watcher can
// reload the configuration while the app is running.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Groq endpoint configuration
//   - UIConfig: Theme and display settings
//   - StorageConfig: Session archive settings
//   - Watcher: Hot-reload support backed by fsnotify
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LLAMACHAT_*)
//   - ~/.llamachat/config.toml
//   - Built-in defaults
//
// The Groq API key is deliberately not part of the configuration file.
// It is read from the GROQ_API_KEY environment variable at startup and
// never written to disk.
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	theme := cfg.UI.Theme
//	profile := cfg.DefaultProfile
package config
