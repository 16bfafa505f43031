// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	if !NewTheme(ThemeDark).IsDark {
		t.Error("dark theme should report IsDark")
	}
	if NewTheme(ThemeLight).IsDark {
		t.Error("light theme should not report IsDark")
	}
}

func TestTheme_ContentWidth(t *testing.T) {
	th := NewTheme(ThemeDark)
	th.SetSize(100, 40)
	if got := th.ContentWidth(); got != 92 {
		t.Errorf("ContentWidth() = %d, want 92", got)
	}
	th.SetSize(10, 40)
	if got := th.ContentWidth(); got != 20 {
		t.Errorf("narrow ContentWidth() = %d, want 20", got)
	}
}

func TestTheme_GlamourStyle(t *testing.T) {
	th := NewTheme(ThemeLight)
	switch got := th.GlamourStyle(); got {
	case "light", "notty":
	default:
		t.Errorf("GlamourStyle() = %q", got)
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderError("boom"), StatusIndicators.Error) {
		t.Error("RenderError should include the error indicator")
	}
	if !strings.Contains(RenderInfo("note"), StatusIndicators.Info) {
		t.Error("RenderInfo should include the info indicator")
	}
	if !strings.Contains(RenderLink("go.dev"), "go.dev") {
		t.Error("RenderLink should keep its text")
	}
}
