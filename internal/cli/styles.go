// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for the console.
//
// Color handling:
//   - Styles are bound to a renderer for the output they are written to
//   - A disabled color decision renders every style as plain text

package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the console's styles for one output.
type Theme struct {
	Colors bool

	// Title is used for the banner.
	Title lipgloss.Style
	// Hint is used for the usage hint and secondary text.
	Hint lipgloss.Style
	// Error is used for the [Error] tag.
	Error lipgloss.Style
	// Name is used for bound names in help and dir listings.
	Name lipgloss.Style
	// Value is used for summaries next to names.
	Value lipgloss.Style
}

// NewTheme builds the styles for w.
func NewTheme(w io.Writer, colors bool) *Theme {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(ColorProfile(colors))

	return &Theme{
		Colors: colors,
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Cyan
		Hint: r.NewStyle().
			Foreground(lipgloss.Color("242")), // Dim gray
		Error: r.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true),
		Name: r.NewStyle().
			Foreground(lipgloss.Color("82")), // Bright green
		Value: r.NewStyle().
			Foreground(lipgloss.Color("252")), // Off-white
	}
}
