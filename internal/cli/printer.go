// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// Printer writes evaluation results.
type Printer struct {
	out       io.Writer
	highlight bool
}

// NewPrinter creates a printer. JSON output is highlighted when highlight
// is set.
func NewPrinter(out io.Writer, highlight bool) *Printer {
	return &Printer{out: out, highlight: highlight}
}

// Print writes v followed by a newline. Nil prints nothing.
func (p *Printer) Print(v any) error {
	text, ok, err := FormatValue(v)
	if err != nil || !ok {
		return err
	}
	if p.highlight && isJSONValue(v) {
		text = highlightJSON(text)
	}
	text = strings.TrimRight(text, "\n")
	_, err = fmt.Fprintln(p.out, text)
	return err
}

// FormatValue renders v as the shell shows it. ok is false when nothing
// should be printed.
//
// Strings print raw, fmt.Stringer values through String, and everything
// else as indented JSON.
func FormatValue(v any) (text string, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case error:
		return x.Error(), true, nil
	case fmt.Stringer:
		return x.String(), true, nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("cannot display %T: %w", v, err)
	}
	return string(data), true, nil
}

// isJSONValue reports whether v is printed as JSON by FormatValue.
func isJSONValue(v any) bool {
	switch v.(type) {
	case nil, string, error, fmt.Stringer:
		return false
	}
	return true
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightJSON colors JSON text for a 256-color terminal. The input is
// returned unchanged when highlighting fails.
func highlightJSON(text string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return text
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return text
	}
	return buf.String()
}
