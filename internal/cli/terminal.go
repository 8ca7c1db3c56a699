// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and masked input for the console.
//
// USABILITY: colors and prompts adapt to the terminal
//   - Interactive terminals get colors, highlighting and masked input
//   - Piped output gets plain text
//   - NO_COLOR and FORCE_COLOR are respected (https://no-color.org/)

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, or
// DefaultTerminalWidth when it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// Color modes accepted by the [console] color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColors decides whether output is colored.
//
// Precedence: --no-color, then an explicit "always"/"never" mode, then
// NO_COLOR, then FORCE_COLOR, then stdout TTY detection.
func ResolveColors(mode string, noColorFlag bool, getenv func(string) string, stdoutTTY bool) bool {
	if noColorFlag {
		return false
	}
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return stdoutTTY
}

// ColorProfile returns the termenv profile for the color decision.
func ColorProfile(enabled bool) termenv.Profile {
	if !enabled {
		return termenv.Ascii
	}
	profile := termenv.ColorProfile()
	if profile == termenv.Ascii {
		// Forced colors on a non-TTY still need a palette.
		return termenv.ANSI256
	}
	return profile
}

// =============================================================================
// MASKED INPUT
// SECURITY: passwords are never echoed
// =============================================================================

// PasswordReader reads a secret after showing prompt.
type PasswordReader interface {
	ReadPassword(prompt string) (string, error)
}

// TermPasswordReader reads from a terminal with echo disabled. When In is
// not a terminal it falls back to reading one line, so piped input works.
type TermPasswordReader struct {
	In  *os.File
	Out io.Writer
}

// NewTermPasswordReader reads from stdin and prompts on stderr.
func NewTermPasswordReader() *TermPasswordReader {
	return &TermPasswordReader{In: os.Stdin, Out: os.Stderr}
}

// ReadPassword implements PasswordReader.
func (r *TermPasswordReader) ReadPassword(prompt string) (string, error) {
	fmt.Fprint(r.Out, prompt)

	fd := int(r.In.Fd())
	if !term.IsTerminal(fd) {
		line, err := readLine(r.In)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	}

	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(r.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// readLine reads up to and excluding '\n' one byte at a time. It does not
// buffer, so the rest of the input stays with the shell's line editor.
func readLine(r io.Reader) (string, error) {
	var line []byte
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			line = append(line, b[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimRight(string(line), "\r"), nil
}
