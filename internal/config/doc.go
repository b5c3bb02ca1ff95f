// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for seekr.
//
// # Key Types
//
//   - Config: the full configuration tree (search, completion, storage, ui)
//   - Watcher: fsnotify-based hot reload for credential rotation
//
// # Sources
//
// Configuration merges, lowest to highest precedence:
//
//  1. Built-in defaults (Default)
//  2. ~/.seekr/config.toml, falling back to ~/.seekr/config.json
//  3. SEEKR_* environment variables
//
// Files holding API keys are kept at 0600 and rewritten atomically.
package config
