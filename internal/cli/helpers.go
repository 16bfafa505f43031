// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"
)

// readInput returns the joined positional text, the contents of path, or
// everything on stdin, in that order of preference.
func readInput(words []string, path string, stdin io.Reader) (string, error) {
	if len(words) > 0 {
		return strings.Join(words, " "), nil
	}
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &InputError{Path: path, Err: err}
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", &InputError{Path: "stdin", Err: err}
	}
	return string(data), nil
}

// readFile reads a named input file.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &InputError{Path: path, Err: err}
	}
	return string(data), nil
}

// outputJSON writes data as indented JSON.
func outputJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
