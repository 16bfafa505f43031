// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The config command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/citelink/internal/config"
)

// HandleConfig shows or edits the configuration. cfg is the configuration
// main loaded; set writes to args.ConfigFile or the default TOML path.
func HandleConfig(args Args, cfg *config.Config, stdout io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config show", cfg).Write(stdout)
		}
		return handleConfigShow(cfg, stdout)

	case "path":
		return handleConfigPath(args, stdout)

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(stdout, k)
		}
		return nil

	case "get":
		if len(args.Raw) != 1 {
			return &UsageError{Command: "config", Reason: "usage: config get KEY"}
		}
		v, err := cfg.Get(args.Raw[0])
		if err != nil {
			return err
		}
		if args.JSON {
			return outputJSON(stdout, map[string]interface{}{"key": args.Raw[0], "value": v})
		}
		fmt.Fprintln(stdout, v)
		return nil

	case "set":
		if len(args.Raw) != 2 {
			return &UsageError{Command: "config", Reason: "usage: config set KEY VALUE"}
		}
		return handleConfigSet(args, cfg, args.Raw[0], args.Raw[1], stdout)

	default:
		return &UsageError{Command: "config", Reason: "unknown subcommand " + args.Subcommand}
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigFile != "" {
		return args.ConfigFile, nil
	}
	return config.ConfigPathTOML()
}

func handleConfigShow(cfg *config.Config, stdout io.Writer) error {
	fmt.Fprintln(stdout, TitleStyle.Render("citelink configuration"))
	fmt.Fprintln(stdout, RenderSeparator())
	for _, k := range config.GetAllKeys() {
		v, err := cfg.Get(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%-28s %v\n", k, v)
	}
	return nil
}

func handleConfigPath(args Args, stdout io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": exists,
		}).Write(stdout)
	}
	fmt.Fprintln(stdout, path)
	if !exists {
		fmt.Fprintln(stdout, DimStyle.Render("(not created yet; defaults in use)"))
	}
	return nil
}

func handleConfigSet(args Args, cfg *config.Config, key, value string, stdout io.Writer) error {
	updated := cfg.Clone()
	if err := updated.Set(key, value); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	path, err := configPath(args)
	if err != nil {
		return err
	}
	if args.ConfigFile == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
	}
	if err := config.SaveTOML(updated, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(stdout, "%s %s = %s\n", SuccessStyle.Render("Set"), key, value)
	return nil
}
