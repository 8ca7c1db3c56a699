// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the outcome of evaluating one statement.
type Result struct {
	// Value is what the target evaluated to
	Value any

	// Assigned is the variable the value was bound to, if any
	Assigned string
}

// Evaluator runs console statements against a namespace.
type Evaluator struct {
	ns *Namespace
}

// NewEvaluator creates an evaluator bound to ns.
func NewEvaluator(ns *Namespace) *Evaluator {
	return &Evaluator{ns: ns}
}

// Namespace returns the namespace the evaluator works on.
func (e *Evaluator) Namespace() *Namespace {
	return e.ns
}

// Eval parses and runs line. Empty lines return a zero Result.
func (e *Evaluator) Eval(ctx context.Context, line string) (Result, error) {
	stmt, err := Parse(line)
	if err != nil || stmt == nil {
		return Result{}, err
	}
	return e.Exec(ctx, stmt)
}

// Exec runs a parsed statement. A callable target is invoked with the
// statement's arguments; any other target evaluates to itself and must not
// be given arguments.
func (e *Evaluator) Exec(ctx context.Context, stmt *Statement) (Result, error) {
	target, err := e.ns.Lookup(stmt.Target)
	if err != nil {
		return Result{}, err
	}

	var value any
	if fn, ok := target.(*Callable); ok {
		call, err := e.BuildCall(stmt.Args)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", stmt.Target, err)
		}
		value, err = fn.Invoke(ctx, call)
		if err != nil {
			return Result{}, err
		}
	} else {
		if len(stmt.Args) > 0 {
			return Result{}, fmt.Errorf("%s is not callable", stmt.Target)
		}
		value = target
	}

	if stmt.Assign != "" {
		e.ns.Set(stmt.Assign, value)
	}
	return Result{Value: value, Assigned: stmt.Assign}, nil
}

// BuildCall converts argument tokens into a Call:
//
//	--key value | --key=value | key=value   keyword argument
//	--flag                                  keyword argument set to true
//	$name | $name.attr                      namespace reference
//	[...] | {...}                           JSON literal
//	anything else                           string literal
//
// Dashes in keyword names become underscores.
func (e *Evaluator) BuildCall(tokens []Token) (*Call, error) {
	call := NewCall()
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if !tok.Quoted && strings.HasPrefix(tok.Text, "--") && len(tok.Text) > 2 {
			name := strings.TrimPrefix(tok.Text, "--")
			if key, raw, ok := strings.Cut(name, "="); ok {
				v, err := e.resolve(Token{Text: raw})
				if err != nil {
					return nil, err
				}
				call.Kwargs[normalizeKey(key)] = v
				continue
			}
			if i+1 < len(tokens) && !isFlag(tokens[i+1]) && !isKeyword(tokens[i+1]) {
				v, err := e.resolve(tokens[i+1])
				if err != nil {
					return nil, err
				}
				call.Kwargs[normalizeKey(name)] = v
				i++
				continue
			}
			call.Kwargs[normalizeKey(name)] = true
			continue
		}

		if isKeyword(tok) {
			key, raw, _ := strings.Cut(tok.Text, "=")
			v, err := e.resolve(Token{Text: raw})
			if err != nil {
				return nil, err
			}
			call.Kwargs[normalizeKey(key)] = v
			continue
		}

		v, err := e.resolve(tok)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, v)
	}
	return call, nil
}

// resolve turns a single token into a value.
func (e *Evaluator) resolve(tok Token) (any, error) {
	if tok.Quoted {
		return tok.Text, nil
	}
	text := tok.Text
	switch {
	case strings.HasPrefix(text, "$") && len(text) > 1:
		return e.ns.Lookup(text[1:])
	case strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{"):
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON literal %s: %w", text, err)
		}
		return v, nil
	}
	return text, nil
}

func isFlag(tok Token) bool {
	return !tok.Quoted && strings.HasPrefix(tok.Text, "--") && len(tok.Text) > 2
}

// isKeyword reports whether tok has the form key=value.
func isKeyword(tok Token) bool {
	if tok.Quoted {
		return false
	}
	key, _, ok := strings.Cut(tok.Text, "=")
	return ok && IsIdentifier(normalizeKey(key))
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
