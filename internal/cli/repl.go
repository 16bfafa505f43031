// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive marker rewriting with line editing and history.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader provides line editing and history for the REPL.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a LineReader with history loaded from the config
// directory.
func NewLineReader() *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &LineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}
	r.LoadHistory()
	return r
}

// LoadHistory loads command history from file.
func (r *LineReader) LoadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine reads one line. Non-empty lines are added to history.
func (r *LineReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with owner-only permissions.
func (r *LineReader) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *LineReader) Close() {
	r.SaveHistory()
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// ReadLiner is the input side of the REPL.
type ReadLiner interface {
	ReadLine(prompt string) (string, error)
}

// Repl rewrites each line it reads. Lines starting with "/" are commands.
type Repl struct {
	in        ReadLiner
	out       io.Writer
	normalize bool
}

const replHelp = `Type text with [n] markers to see it rewritten.
  /normalize   toggle unescaping of \[n\] markers (default on)
  /help        show this help
  /quit        exit (also Ctrl+D)`

// HandleRepl starts the interactive REPL on the terminal.
func HandleRepl(args Args, stdout io.Writer) error {
	if !IsTTY() {
		return &UsageError{Command: "repl", Reason: "stdin is not a terminal; use 'citelink rewrite' for piped input"}
	}
	lr := NewLineReader()
	defer lr.Close()

	fmt.Fprintln(stdout, TitleStyle.Render("citelink repl"))
	fmt.Fprintln(stdout, DimStyle.Render("Type /help for commands."))
	return NewRepl(lr, stdout).Run()
}

// NewRepl creates a REPL reading from in.
func NewRepl(in ReadLiner, out io.Writer) *Repl {
	return &Repl{in: in, out: out, normalize: true}
}

// Run reads lines until EOF, Ctrl+C or /quit.
func (r *Repl) Run() error {
	for {
		input, err := r.in.ReadLine("cite> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if !r.command(input) {
				return nil
			}
			continue
		}
		r.rewrite(input)
	}
}

// command runs a slash command and reports whether to keep reading.
func (r *Repl) command(input string) bool {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit", "/q":
		return false
	case "/normalize":
		r.normalize = !r.normalize
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("normalize: %t", r.normalize)))
	case "/help", "/?":
		fmt.Fprintln(r.out, replHelp)
	default:
		fmt.Fprintf(r.out, "%s unknown command %s\n", ErrorStyle.Render("Error:"), input)
	}
	return true
}

func (r *Repl) rewrite(input string) {
	text := input
	if r.normalize {
		text = citation.Unescape(text)
	}
	fmt.Fprintln(r.out, citation.Rewrite(text))

	if numbers := citation.MarkerNumbers(text); len(numbers) > 0 {
		parts := make([]string, len(numbers))
		for i, n := range numbers {
			parts[i] = fmt.Sprint(n)
		}
		fmt.Fprintln(r.out, DimStyle.Render("markers: "+strings.Join(parts, " ")))
	}
}
