// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is the status bar indicator of a running replay. Next to the
// animation it shows how many chunks arrived, how many sources the answer
// cites so far, and the elapsed time.
type Spinner struct {
	spinner spinner.Model
	theme   *styles.Theme
	now     func() time.Time

	started time.Time
	active  bool
	chunks  int
	cited   int
}

// NewSpinner creates an ASCII line spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return Spinner{spinner: s, theme: theme, now: time.Now}
}

// WithClock returns the spinner timing elapsed time on now.
func (s Spinner) WithClock(now func() time.Time) Spinner {
	s.now = now
	return s
}

// Start resets the counters and returns the first animation tick.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	s.started = s.now()
	s.chunks, s.cited = 0, 0
	return s.spinner.Tick
}

// Progress updates the counters shown next to the animation.
func (s *Spinner) Progress(chunks, cited int) {
	s.chunks, s.cited = chunks, cited
}

func (s *Spinner) Stop() {
	s.active = false
}

func (s *Spinner) Active() bool {
	return s.active
}

// Update advances the animation. Ticks arriving after Stop end the loop.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders e.g. "| Streaming 42 chunks, 3 cited (1.2s)".
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	elapsed := s.now().Sub(s.started).Truncate(100 * time.Millisecond)
	text := fmt.Sprintf("Streaming %d chunks, %d cited (%s)", s.chunks, s.cited, elapsed)
	return s.theme.Spinner.Render(s.spinner.View()) + " " + s.theme.ThinkingText.Render(text)
}
