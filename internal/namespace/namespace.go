// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package namespace holds the variables of an interactive console session.
//
// Objects publish what they want reachable from the console through the
// Exporter interface instead of being introspected at runtime. A Namespace
// is owned by one session and passed explicitly to whoever needs it.
package namespace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// REGISTRATION INTERFACE
// =============================================================================

// Exporter is implemented by anything that publishes named values or
// operations into a console namespace.
type Exporter interface {
	Exports() map[string]any
}

// Func is the signature of an operation callable from the console.
type Func func(ctx context.Context, call *Call) (any, error)

// Callable is a named operation with its help text.
type Callable struct {
	// Name is the export name, e.g. "products"
	Name string

	// Usage shows argument syntax, e.g. "products [search] [--limit N]"
	Usage string

	// Doc is a one-paragraph description shown by help
	Doc string

	// Fn executes the operation
	Fn Func
}

// Invoke runs the operation. A nil call is treated as no arguments.
func (c *Callable) Invoke(ctx context.Context, call *Call) (any, error) {
	if c.Fn == nil {
		return nil, fmt.Errorf("%s: not implemented", c.Name)
	}
	if call == nil {
		call = &Call{}
	}
	return c.Fn(ctx, call)
}

func (c *Callable) String() string {
	return fmt.Sprintf("<function %s>", c.Name)
}

// IsPublic reports whether name may be exported into a namespace.
// Empty names and names starting with an underscore are private.
func IsPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

// PublicExports returns the public subset of e.Exports(). A nil exporter
// yields an empty map.
func PublicExports(e Exporter) map[string]any {
	out := make(map[string]any)
	if e == nil {
		return out
	}
	for name, v := range e.Exports() {
		if IsPublic(name) {
			out[name] = v
		}
	}
	return out
}

// =============================================================================
// NAMESPACE
// =============================================================================

// Namespace maps names to values for one console session.
type Namespace struct {
	mu   sync.RWMutex
	vars map[string]any
}

// New creates an empty namespace.
func New() *Namespace {
	return &Namespace{vars: make(map[string]any)}
}

// Build assembles a session namespace. Writes happen in this order, later
// writes replacing earlier ones:
//  1. every public export of module
//  2. conn itself under connName
//  3. every public export of conn
//
// so on a name collision the connection's export wins.
func Build(module Exporter, connName string, conn Exporter) *Namespace {
	ns := New()
	ns.Merge(module)
	ns.Set(connName, conn)
	ns.Merge(conn)
	return ns
}

// Merge copies the public exports of e into the namespace.
func (n *Namespace) Merge(e Exporter) {
	exports := PublicExports(e)
	n.mu.Lock()
	defer n.mu.Unlock()
	for name, v := range exports {
		n.vars[name] = v
	}
}

// Set binds name to value.
func (n *Namespace) Set(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.vars[name] = value
}

// Get returns the value bound to name.
func (n *Namespace) Get(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.vars[name]
	return v, ok
}

// Names returns all bound names, sorted.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.vars))
	for name := range n.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound names.
func (n *Namespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.vars)
}

// Lookup resolves a dotted path such as "conn.products". Each segment after
// the first must be a public export of the value before it.
func (n *Namespace) Lookup(path string) (any, error) {
	parts := strings.Split(path, ".")
	v, ok := n.Get(parts[0])
	if !ok {
		return nil, &NameError{Name: parts[0], Suggestion: Suggest(parts[0], n.Names())}
	}
	for i, attr := range parts[1:] {
		owner := strings.Join(parts[:i+1], ".")
		exp, ok := v.(Exporter)
		if !ok || !IsPublic(attr) {
			return nil, &AttributeError{Owner: owner, Attr: attr}
		}
		v, ok = exp.Exports()[attr]
		if !ok {
			return nil, &AttributeError{Owner: owner, Attr: attr, Suggestion: Suggest(attr, Attributes(exp))}
		}
	}
	return v, nil
}

// Attributes returns the sorted public export names of v, or nil when v is
// not an Exporter.
func Attributes(v any) []string {
	exp, ok := v.(Exporter)
	if !ok {
		return nil
	}
	exports := PublicExports(exp)
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// ERRORS
// =============================================================================

// NameError is returned when a name is not bound.
type NameError struct {
	Name string
	// Suggestion is a close bound name, if any.
	Suggestion string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("name %q is not defined", e.Name) + didYouMean(e.Suggestion)
}

// AttributeError is returned when a dotted lookup fails.
type AttributeError struct {
	Owner      string
	Attr       string
	Suggestion string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Owner, e.Attr) + didYouMean(e.Suggestion)
}

func didYouMean(suggestion string) string {
	if suggestion == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", suggestion)
}
