// citelink - a terminal viewer for AI answers that cite their sources.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/citelink/internal/cli"
	"github.com/jeranaias/citelink/internal/config"
	"github.com/jeranaias/citelink/internal/logging"
	"github.com/jeranaias/citelink/internal/metrics"
	"github.com/jeranaias/citelink/internal/replay"
	"github.com/jeranaias/citelink/internal/ui/chat"
	"github.com/jeranaias/citelink/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse()
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}

	if err := run(args); err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// run dispatches the parsed command.
func run(args cli.Args) error {
	switch args.Command {
	case cli.CmdHelp:
		cli.ShowHelp(os.Stdout, args.HelpTopic)
		return nil
	case cli.CmdVersion:
		cli.ShowVersion(os.Stdout)
		return nil
	case cli.CmdRewrite:
		return cli.HandleRewrite(args, os.Stdin, os.Stdout)
	case cli.CmdScan:
		return cli.HandleScan(args, os.Stdout)
	case cli.CmdRepl:
		return cli.HandleRepl(args, os.Stdout)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	switch args.Command {
	case cli.CmdConfig:
		return cli.HandleConfig(args, cfg, os.Stdout)
	case cli.CmdRender:
		if args.Width == 0 && cfg.UI.WordWrap > 0 {
			args.Width = min(cli.TerminalWidth(), cfg.UI.WordWrap)
		}
		return cli.HandleRender(args, os.Stdin, os.Stdout)
	default:
		return runTUI(args, cfg)
	}
}

// loadConfig loads the config named by --config, or the default files, and
// applies flag overrides on top.
func loadConfig(args cli.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigFile != "" {
		cfg, err = config.LoadFromPath(args.ConfigFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.LogLevel != "" {
		cfg.Logging.Level = args.LogLevel
	}
	if args.MetricsAddr != "" {
		cfg.Metrics.Addr = args.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// configWatchPath returns the file to watch for live reloads, or "" when
// there is none.
func configWatchPath(args cli.Args) string {
	if args.ConfigFile != "" {
		return args.ConfigFile
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// =============================================================================
// TUI
// =============================================================================

// runTUI starts the chat view and its background services.
func runTUI(args cli.Args, cfg *config.Config) error {
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, logErr := logging.NewOrNop(cfg.Logging.Level, logPath)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", logErr)
	}
	defer func() { _ = logger.Sync() }()

	transcript := replay.Sample()
	if args.Transcript != "" {
		transcript, err = replay.Load(args.Transcript)
		if err != nil {
			return &cli.InputError{Path: args.Transcript, Err: err}
		}
	}

	m := chat.New(cfg, logger, chat.WithTranscript(transcript))
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)
	m.SetProgram(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			if err := metrics.Serve(gctx, cfg.Metrics.Addr, logger); err != nil {
				// A busy port should not take the viewer down with it.
				logger.Warn("Metrics server stopped", zap.Error(err))
			}
			return nil
		})
	}

	if path := configWatchPath(args); path != "" {
		g.Go(func() error {
			err := config.Watch(gctx, path, config.DefaultWatchDebounce, func(c *config.Config, err error) {
				if err == nil {
					config.SetGlobal(c)
				}
				p.Send(chat.ConfigReloadedMsg{Config: c, Err: err})
			})
			if err != nil {
				logger.Warn("Config watcher stopped", zap.String("path", path), zap.Error(err))
			}
			return nil
		})
	}

	logger.Info("Starting TUI",
		zap.String("version", Version),
		zap.String("prompt", util.TruncateRunes(transcript.Prompt, 80)),
		zap.Int("citations", len(transcript.Citations)))

	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Background service error", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("running citelink: %w", runErr)
	}
	return nil
}
