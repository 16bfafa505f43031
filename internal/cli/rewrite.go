// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// rewrite.go - The rewrite and render commands.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/render"
)

// =============================================================================
// REWRITE
// =============================================================================

// HandleRewrite rewrites citation markers in the given text, or stdin, and
// prints the result.
func HandleRewrite(args Args, stdin io.Reader, stdout io.Writer) error {
	input, err := readInput(args.Raw, "", stdin)
	if err != nil {
		return err
	}

	text := input
	if !args.NoNormalize {
		text = citation.Unescape(text)
	}
	out := citation.Rewrite(text)

	if args.JSON {
		return NewJSONResponse("rewrite", RewriteData{
			Input:   input,
			Output:  out,
			Markers: citation.MarkerNumbers(text),
		}).Write(stdout)
	}

	_, err = io.WriteString(stdout, out)
	if err == nil && !strings.HasSuffix(out, "\n") {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

// =============================================================================
// RENDER
// =============================================================================

// HandleRender runs the full message pipeline on a file, or stdin, and
// prints either the HTML fragment or the terminal rendering.
func HandleRender(args Args, stdin io.Reader, stdout io.Writer) error {
	path := ""
	if len(args.Raw) > 0 {
		path = args.Raw[0]
	}
	raw, err := readInput(nil, path, stdin)
	if err != nil {
		return err
	}

	rendered, err := render.Pipeline(raw)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if args.HTML {
		_, err = io.WriteString(stdout, rendered.HTML)
		return err
	}

	width := args.Width
	if width == 0 {
		width = TerminalWidth()
	}
	out, err := render.Terminal(rendered.Markdown, width, GlamourStyle())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = io.WriteString(stdout, out)
	return err
}
