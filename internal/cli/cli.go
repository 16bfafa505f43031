// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for citelink.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdRewrite
	CmdRender
	CmdScan
	CmdRepl
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"tui":     CmdTUI,
	"rewrite": CmdRewrite,
	"render":  CmdRender,
	"scan":    CmdScan,
	"repl":    CmdRepl,
	"config":  CmdConfig,
	"version": CmdVersion,
	"help":    CmdHelp,
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "tui"
}

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	ConfigFile string
	LogLevel   string
	JSON       bool

	// tui
	Transcript  string
	MetricsAddr string

	// rewrite
	NoNormalize bool

	// render
	HTML  bool
	Width int

	// scan
	CitationsFile string
	TextFile      string

	// config
	Subcommand string

	// HelpTopic is the command whose help was asked for with -h.
	HelpTopic string

	// Positional arguments after the command name.
	Raw []string
}

const usageText = `citelink - citation-aware answer viewer for the terminal

Usage:
  citelink                         Start the TUI with the sample transcript
  citelink tui [--transcript F]    Start the TUI replaying a transcript
  citelink rewrite [text...]       Rewrite [n] markers into citation links
  citelink render [file]           Render an answer for the terminal or as HTML
  citelink scan --citations F FILE Report which citations an HTML answer uses
  citelink repl                    Rewrite lines interactively
  citelink config [show|path|get|set]
  citelink version
  citelink help [command]

Global Flags:
      --config FILE      Config file (default ~/.citelink/config.toml)
      --log-level LEVEL  debug, info, warn or error
      --json             Machine-readable output where supported

Environment:
  CITELINK_*             Override config keys, e.g. CITELINK_UI_THEME=light
  NO_COLOR               Disable colored output

Run 'citelink help <command>' for command flags.
`

// Parse parses os.Args.
func Parse() (Args, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a command line without the program name. With no
// command, or when the first argument is a flag, the TUI is started.
func ParseArgs(argv []string) (Args, error) {
	args := Args{Command: CmdTUI}
	name := "tui"
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") {
		cmd, ok := commandNames[argv[0]]
		if !ok {
			return args, &UsageError{Command: argv[0], Reason: "unknown command"}
		}
		args.Command = cmd
		name = argv[0]
		argv = argv[1:]
	}

	fs := newFlagSet(name, &args)
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Args{Command: CmdHelp, HelpTopic: name}, nil
		}
		return args, &UsageError{Command: name, Reason: err.Error()}
	}
	args.Raw = fs.Args()

	switch args.Command {
	case CmdHelp:
		if len(args.Raw) > 0 {
			args.HelpTopic = args.Raw[0]
		}
	case CmdConfig:
		if len(args.Raw) > 0 {
			args.Subcommand = args.Raw[0]
			args.Raw = args.Raw[1:]
		}
	case CmdScan:
		if args.CitationsFile == "" {
			return args, &UsageError{Command: name, Reason: "--citations is required"}
		}
		if len(args.Raw) != 1 {
			return args, &UsageError{Command: name, Reason: "expected one HTML file"}
		}
	case CmdRender:
		if args.Width < 0 {
			return args, &UsageError{Command: name, Reason: "--width must not be negative"}
		}
	}
	return args, nil
}

// newFlagSet builds the flags of one command bound to args.
func newFlagSet(name string, args *Args) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVar(&args.ConfigFile, "config", "", "config file")
	fs.StringVar(&args.LogLevel, "log-level", "", "log level")
	fs.BoolVar(&args.JSON, "json", false, "machine-readable output")

	switch name {
	case "tui":
		fs.StringVarP(&args.Transcript, "transcript", "t", "", "transcript file (TOML or JSON)")
		fs.StringVar(&args.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	case "rewrite":
		fs.BoolVar(&args.NoNormalize, "no-normalize", false, "do not unescape \\[n\\] markers first")
	case "render":
		fs.BoolVar(&args.HTML, "html", false, "print the HTML fragment instead of terminal output")
		fs.IntVarP(&args.Width, "width", "w", 0, "wrap width (default: terminal width)")
	case "scan":
		fs.StringVarP(&args.CitationsFile, "citations", "c", "", "citation list (TOML or JSON)")
		fs.StringVar(&args.TextFile, "text", "", "raw message text for the fallback scan")
	}
	return fs
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// ShowHelp writes the usage text, or the flags of a single command.
func ShowHelp(w io.Writer, topic string) {
	if topic == "" || topic == "help" {
		fmt.Fprint(w, usageText)
		return
	}
	if _, ok := commandNames[topic]; !ok {
		fmt.Fprintf(w, "Unknown command %q.\n\n", topic)
		fmt.Fprint(w, usageText)
		return
	}

	var args Args
	fs := newFlagSet(topic, &args)
	fmt.Fprintf(w, "Usage: citelink %s [flags]%s\n\nFlags:\n", topic, positionalHint(topic))
	fmt.Fprint(w, fs.FlagUsages())
}

func positionalHint(topic string) string {
	switch topic {
	case "rewrite":
		return " [text...]"
	case "render":
		return " [file]"
	case "scan":
		return " <html-file>"
	case "config":
		return " [show|path|get KEY|set KEY VALUE|keys]"
	}
	return ""
}

// ShowVersion writes version information.
func ShowVersion(w io.Writer) {
	fmt.Fprintf(w, "citelink %s\n", Version)
	fmt.Fprintf(w, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
