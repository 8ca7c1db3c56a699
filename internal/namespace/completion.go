// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"sort"
	"strings"
)

// Completer suggests names for the word under the cursor.
type Completer struct {
	ns *Namespace
	// extra are words that are not namespace entries, e.g. shell built-ins
	extra []string
}

// NewCompleter creates a completer over ns. extra words are offered at the
// start of a line only.
func NewCompleter(ns *Namespace, extra ...string) *Completer {
	return &Completer{ns: ns, extra: extra}
}

// Complete returns full candidate lines for line, the shape expected by
// liner.Completer. The last word is completed against namespace names, or
// against exporter attributes when it contains a dot. A leading $ is kept.
func (c *Completer) Complete(line string) []string {
	start := strings.LastIndexAny(line, " \t=") + 1
	head, word := line[:start], line[start:]

	sigil := ""
	if strings.HasPrefix(word, "$") {
		sigil, word = "$", word[1:]
	}

	var candidates []string
	if dot := strings.LastIndex(word, "."); dot >= 0 {
		owner, partial := word[:dot], word[dot+1:]
		v, err := c.ns.Lookup(owner)
		if err != nil {
			return nil
		}
		for _, attr := range Attributes(v) {
			if strings.HasPrefix(attr, partial) {
				candidates = append(candidates, owner+"."+attr)
			}
		}
	} else {
		for _, name := range c.ns.Names() {
			if strings.HasPrefix(name, word) {
				candidates = append(candidates, name)
			}
		}
		if strings.TrimSpace(head) == "" && sigil == "" {
			for _, w := range c.extra {
				if strings.HasPrefix(w, word) {
					candidates = append(candidates, w)
				}
			}
		}
	}

	sort.Strings(candidates)
	out := make([]string, 0, len(candidates))
	for i, cand := range candidates {
		if i > 0 && cand == candidates[i-1] {
			continue
		}
		out = append(out, head+sigil+cand)
	}
	return out
}
