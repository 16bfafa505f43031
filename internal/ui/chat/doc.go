// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view for the citelink TUI.

The chat replays a transcript as a streamed assistant answer and shows the
sources it cites below each message.

# Key Components

## Model (model.go)

Model is the Bubble Tea model. It owns the conversation, the message
document (package dom), the frame loop (package frame) and one citation
tracker per assistant message. Trackers hold callbacks into the model, so
the model is used by pointer.

## Update Loop (update.go)

  - replay.ChunkMsg chunks are buffered and applied on frames
  - every applied batch re-renders the message into the document
  - frame.FrameMsg runs queued tracker scans, scrolls and highlight timers
  - keys move focus between citation links and click them

## View Rendering (view.go)

Every update that changes the layout re-renders the messages and panels into
the viewport and records where each citation card landed, so a tracker's
scroll on the next frame sees current positions. Cards are also mirrored
into the document under an aside element per message.

## Streaming (streaming.go)

StreamingBuffer batches chunks by count and frame rate.

# Usage

	m := chat.New(cfg, logger, chat.WithTranscript(t))
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)
	_, err := p.Run()

# Keys

	tab/n, shift+tab/N   focus next/previous citation link
	enter                open the focused citation
	c / a                show/hide sources, cited/all sources
	y                    copy the source URL
	r / esc              replay / stop streaming
	? / q                help / quit
*/
package chat
