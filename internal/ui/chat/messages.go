// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/citelink/internal/config"
	"github.com/jeranaias/citelink/internal/replay"
)

// Streaming itself arrives as replay.ChunkMsg and replay.DoneMsg; frame work
// arrives as frame.FrameMsg. The messages below come from outside the chat.

// ConfigReloadedMsg delivers a configuration reloaded from disk. Err is set
// when the file changed but could not be loaded.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// ReplayMsg asks the chat to stream a transcript as a new exchange.
type ReplayMsg struct {
	Transcript *replay.Transcript
}
