// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI pieces of the citelink TUI, built on
Bubble Tea, Bubbles and Lip Gloss.

# Display Components

Header (header.go) - Title bar with the current prompt.
StatusBar (statusbar.go) - Status, focused citation link and key hints.
MessageBubble (message.go) - Styled chat messages.
Spinner (spinner.go) - Streaming indicator.

# Citations

CitationsPanel (citations.go) renders the source cards under an assistant
message and reports the line span of every card. MirrorCards keeps a copy of
the visible cards in the message document so card ids resolve there too.

ChatViewport (viewport.go) scrolls the conversation and knows where each
card sits, which lets it answer FullyVisible and ScrollIntoView for the
citation tracker.
*/
package components
