// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and display for citelink commands.
//
// Handlers always return errors and let main decide how to show them.
package cli

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError is used for every failure
	ExitGeneralError = 1
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports an invalid command line.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (see 'citelink help %s')", e.Command, e.Reason, e.Command)
}

// InputError reports an unreadable or invalid input file.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsUsageError reports whether err is a usage error.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err as "Error: ..." or, in JSON mode, as an error
// response.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse("", err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Error:"), err)
}

// GetExitCode returns the process exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitGeneralError
}
