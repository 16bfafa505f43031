// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across citelink.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, PadRight: terminal column math
//
// File Operations:
//   - WriteFileAtomic: replace a file without readers seeing a partial write
//
// # Usage
//
//	title := util.TruncateWidth(record.DisplayTitle(), 40)
//	err := util.WriteFileAtomic(path, data, 0644)
package util
