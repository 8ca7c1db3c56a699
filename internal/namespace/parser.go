// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// =============================================================================
// TOKENS
// =============================================================================

// Token is one word of a console statement.
type Token struct {
	Text string
	// Quoted is true when any part of the token was inside quotes. Quoted
	// tokens are always literals.
	Quoted bool
}

// ErrUnterminatedQuote is returned for input with an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Tokenize splits a line into tokens, respecting single and double quotes.
// Backslash escapes a quote or backslash inside quotes. A token (or the
// value of a key= token) opening with [ or { runs to the matching bracket.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	var current strings.Builder
	var inSingle, inDouble, quoted, started bool

	flush := func() {
		if started {
			tokens = append(tokens, Token{Text: current.String(), Quoted: quoted})
		}
		current.Reset()
		quoted, started = false, false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			quoted, started = true, true

		case r == '"' && !inSingle:
			inDouble = !inDouble
			quoted, started = true, true

		case r == '\\' && i+1 < len(runes) && (inSingle || inDouble):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(r)
			}

		case unicode.IsSpace(r) && !inSingle && !inDouble:
			flush()

		case (r == '[' || r == '{') && !inSingle && !inDouble && (!started || (!quoted && strings.HasSuffix(current.String(), "="))):
			// JSON literal: taken verbatim up to the matching bracket so
			// that its quotes and spaces survive.
			end := scanJSON(runes, i)
			current.WriteString(string(runes[i:end]))
			started = true
			i = end - 1

		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inSingle || inDouble {
		return nil, ErrUnterminatedQuote
	}
	flush()
	return tokens, nil
}

// scanJSON returns the index just past the bracket closing the one at
// runes[start], or len(runes) when it is never closed.
func scanJSON(runes []rune, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inString && r == '\\':
			i++
		case r == '"':
			inString = !inString
		case inString:
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(runes)
}

// =============================================================================
// STATEMENTS
// =============================================================================

// Statement is a parsed console line:
//
//	[NAME =] TARGET [ARG ...]
type Statement struct {
	// Assign is the variable receiving the result, empty for none
	Assign string

	// Target is a name or dotted path, without a leading $
	Target string

	// Args are the remaining tokens, unresolved
	Args []Token
}

// Parse parses one console line. An empty or comment line yields a nil
// statement and no error.
func Parse(line string) (*Statement, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	stmt := &Statement{}
	switch {
	case len(tokens) >= 2 && !tokens[1].Quoted && tokens[1].Text == "=" && !tokens[0].Quoted:
		// name = target ...
		stmt.Assign = tokens[0].Text
		tokens = tokens[2:]
	case !tokens[0].Quoted && strings.Contains(tokens[0].Text, "="):
		// name=target ...
		name, rest, _ := strings.Cut(tokens[0].Text, "=")
		stmt.Assign = name
		if rest == "" {
			tokens = tokens[1:]
		} else {
			tokens[0] = Token{Text: rest}
		}
	}

	if stmt.Assign != "" && !IsIdentifier(stmt.Assign) {
		return nil, fmt.Errorf("cannot assign to %q", stmt.Assign)
	}
	if len(tokens) == 0 {
		return nil, errors.New("missing expression after '='")
	}
	if tokens[0].Quoted {
		return nil, fmt.Errorf("expected a name, got quoted text %q", tokens[0].Text)
	}

	stmt.Target = strings.TrimPrefix(tokens[0].Text, "$")
	if !isPath(stmt.Target) {
		return nil, fmt.Errorf("invalid name %q", tokens[0].Text)
	}
	stmt.Args = tokens[1:]
	return stmt, nil
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func isPath(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !IsIdentifier(part) {
			return false
		}
	}
	return true
}
