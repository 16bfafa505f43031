// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the text side of citation linking.
//
// Streaming responses cite their sources with bracket markers such as [3] or
// [1][2]. This package rewrites those markers into markdown links whose
// targets follow a fixed convention, and provides the helpers the rest of the
// application uses to read that convention back.
//
// # Link Targets
//
// A single marker [n] becomes [n](#cite-n). A run of adjacent markers
// [n1][n2]...[nk] becomes one link [n1,n2,...,nk](#cite-group-n1-n2-...-nk).
// Numbers keep their original order and multiplicity.
//
// # Key Functions
//
//   - Rewrite: idempotent marker rewriting, safe on cumulative stream text
//   - Unescape: normalization run before Rewrite (\[1\] -> [1], NFC)
//   - ParseHref: href -> citation numbers, for both target shapes
//   - FromHrefs / FromText: the two discovery strategies behind the cited subset
//   - FirstMatch: composes strategies, first non-empty result wins
//
// # Usage
//
//	md := citation.Rewrite(citation.Unescape(raw))
//	nums, ok := citation.ParseHref("#cite-group-1-2") // [1 2], true
package citation
