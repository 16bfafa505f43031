// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of citelink.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed arguments with global and command-specific flags
//   - JSONResponse: Output format for --json
//
// # Usage
//
//	args, err := cli.Parse()
//	switch args.Command {
//	case cli.CmdRewrite:
//	    err = cli.HandleRewrite(args, os.Stdin, os.Stdout)
//	case cli.CmdScan:
//	    err = cli.HandleScan(args, os.Stdout)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - tui: the chat view (started by main)
//   - rewrite: rewrite [n] markers into citation links
//   - render: rewrite, render to HTML, then print HTML or terminal output
//   - scan: report the cited subset of an HTML answer
//   - repl: interactive rewriting with history
//   - config: show, path, keys, get and set
//
// Each command parses its own pflag flag set.
package cli
