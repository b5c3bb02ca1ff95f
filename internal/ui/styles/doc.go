// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the seekr TUI.
//
// # Key Types
//
//   - Theme: the full set of lipgloss styles used by the chat view
//   - StatusIndicatorSet: ASCII shape indicators for colorblind accessibility
//
// # Usage
//
//	theme := styles.New(cfg.UI.Theme) // "dark", "light", or "auto"
//	fmt.Println(theme.HeaderTitle.Render("seekr"))
//
// Colors are lipgloss.AdaptiveColor pairs so the same palette reads well on
// both light and dark terminal backgrounds.
package styles
