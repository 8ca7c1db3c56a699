// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and fatal error reporting for the console.
//
// STANDARDIZED PATTERN:
//   - The launcher returns errors; it never prints them or exits
//   - Main renders a returned error once as "ERROR: <message>" on stderr
//   - Errors inside the shell are printed and the session continues

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
	// ExitSuccess indicates the session ended normally.
	ExitSuccess = 0
	// ExitFatal indicates the console could not start: bad flags, bad
	// configuration or a failed connection.
	ExitFatal = 1
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// FatalError ends the console before or instead of the shell.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal error"
	}
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// fatal wraps err in a FatalError unless it already is one.
func fatal(err error) error {
	if err == nil {
		return nil
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return err
	}
	return &FatalError{Err: err}
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFatal
}

// ReportError writes err as "ERROR: <message>".
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "ERROR: %s\n", err.Error())
}
