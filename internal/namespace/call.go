// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// call.go - Arguments passed to a Callable.
//
// Literal tokens typed at the prompt arrive as strings and are converted by
// the typed accessors, so "00123" stays a product code while "0.95" can be
// read as a float. Lists may be written comma separated ("0.95,0.99") or as
// JSON ("[0.95, 0.99]").

package namespace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Call carries positional and keyword arguments.
type Call struct {
	Args   []any
	Kwargs map[string]any
}

// NewCall creates a call from positional arguments.
func NewCall(args ...any) *Call {
	return &Call{Args: args, Kwargs: make(map[string]any)}
}

// With sets a keyword argument and returns the call for chaining.
func (c *Call) With(key string, value any) *Call {
	if c.Kwargs == nil {
		c.Kwargs = make(map[string]any)
	}
	c.Kwargs[key] = value
	return c
}

// Value returns the argument at position pos or, failing that, the keyword
// argument key. Pass pos < 0 for keyword-only arguments.
func (c *Call) Value(pos int, key string) (any, bool) {
	if key != "" {
		if v, ok := c.Kwargs[key]; ok {
			return v, true
		}
	}
	if pos >= 0 && pos < len(c.Args) {
		return c.Args[pos], true
	}
	return nil, false
}

// Require is Value that fails when the argument is missing.
func (c *Call) Require(pos int, key string) (any, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return nil, &ArgError{Key: key, Pos: pos, Reason: "is required"}
	}
	return v, nil
}

// CheckKeywords fails when a keyword outside allowed was passed.
func (c *Call) CheckKeywords(allowed ...string) error {
	set := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		set[k] = true
	}
	var unknown []string
	for k := range c.Kwargs {
		if !set[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unexpected keyword argument(s): %s", strings.Join(unknown, ", "))
}

// String returns the argument as a string, or def when absent.
func (c *Call) String(pos int, key, def string) (string, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", &ArgError{Key: key, Pos: pos, Reason: fmt.Sprintf("expected a string, got %T", v)}
}

// Float returns the argument as a float64, or def when absent.
func (c *Call) Float(pos int, key string, def float64) (float64, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
	}
	return f, nil
}

// Int returns the argument as an int, or def when absent.
func (c *Call) Int(pos int, key string, def int) (int, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
	}
	return n, nil
}

// Bool returns the argument as a bool, or def when absent.
func (c *Call) Bool(pos int, key string, def bool) (bool, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, &ArgError{Key: key, Pos: pos, Reason: fmt.Sprintf("expected true or false, got %q", x)}
		}
		return b, nil
	}
	return false, &ArgError{Key: key, Pos: pos, Reason: fmt.Sprintf("expected a bool, got %T", v)}
}

// Strings returns the argument as a list of strings, or def when absent.
// A single string is split on commas.
func (c *Call) Strings(pos int, key string, def []string) ([]string, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	items, err := toList(v)
	if err != nil {
		return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		sub := &Call{Args: []any{item}}
		s, err := sub.String(0, "", "")
		if err != nil {
			return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
		}
		out = append(out, s)
	}
	return out, nil
}

// Floats returns the argument as a list of float64, or def when absent.
func (c *Call) Floats(pos int, key string, def []float64) ([]float64, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	items, err := toList(v)
	if err != nil {
		return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
		}
		out = append(out, f)
	}
	return out, nil
}

// Ints returns the argument as a list of int, or def when absent.
func (c *Call) Ints(pos int, key string, def []int) ([]int, error) {
	v, ok := c.Value(pos, key)
	if !ok || v == nil {
		return def, nil
	}
	items, err := toList(v)
	if err != nil {
		return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, &ArgError{Key: key, Pos: pos, Reason: err.Error()}
		}
		out = append(out, n)
	}
	return out, nil
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toList(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, nil
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(x)
		if trimmed == "" {
			return []any{}, nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var list []any
			if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
				return nil, fmt.Errorf("invalid list %s: %w", trimmed, err)
			}
			return list, nil
		}
		parts := strings.Split(x, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	case float64, int, bool:
		return []any{x}, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}

// ArgError describes a missing or malformed argument.
type ArgError struct {
	Key    string
	Pos    int
	Reason string
}

func (e *ArgError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("argument %q %s", e.Key, e.Reason)
	case e.Pos >= 0:
		return fmt.Sprintf("argument %d %s", e.Pos+1, e.Reason)
	}
	return "argument " + e.Reason
}
