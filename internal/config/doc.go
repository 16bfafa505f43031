// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for citelink.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation, and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CitationsConfig: Citations panel behavior (highlight duration, defaults)
//   - StreamConfig: Transcript replay pacing and chunk batching
//   - ValidateErrors: Every validation problem found in one pass
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CITELINK_*)
//   - ~/.citelink/config.toml
//   - ~/.citelink/config.json
//   - Built-in defaults
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
//	highlight := cfg.Citations.HighlightDuration()
//	fps := cfg.UI.FrameFPS
package config
