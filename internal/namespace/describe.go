// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"fmt"
	"strings"
)

// Describe returns markdown help for the value at path.
func (n *Namespace) Describe(path string) (string, error) {
	v, err := n.Lookup(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", path)
	switch x := v.(type) {
	case *Callable:
		if x.Usage != "" {
			fmt.Fprintf(&sb, "```\n%s\n```\n\n", x.Usage)
		}
		if x.Doc != "" {
			sb.WriteString(x.Doc)
			sb.WriteString("\n")
		}
	default:
		fmt.Fprintf(&sb, "Type: `%T`\n", v)
		if attrs := Attributes(v); len(attrs) > 0 {
			sb.WriteString("\nAttributes:\n\n")
			for _, a := range attrs {
				line := "- `" + a + "`"
				if fn, ok := v.(Exporter).Exports()[a].(*Callable); ok && fn.Doc != "" {
					line += ": " + firstSentence(fn.Doc)
				}
				sb.WriteString(line + "\n")
			}
		}
	}
	return sb.String(), nil
}

// Summary returns the first sentence of a callable's doc, or the value's
// type for anything else.
func Summary(v any) string {
	if fn, ok := v.(*Callable); ok {
		return firstSentence(fn.Doc)
	}
	return fmt.Sprintf("%T", v)
}

func firstSentence(doc string) string {
	doc = strings.TrimSpace(doc)
	if i := strings.Index(doc, ". "); i >= 0 {
		return doc[:i+1]
	}
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}
