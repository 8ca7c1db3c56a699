// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleter(t *testing.T) {
	ns := New()
	ns.Set("conn", mapExporter{"products": 1, "product": 2, "risk": 3, "_x": 4})
	ns.Set("connect", 1)
	ns.Set("pf", 2)
	c := NewCompleter(ns, "help", "exit")

	tests := []struct {
		line string
		want []string
	}{
		{"con", []string{"conn", "connect"}},
		{"conn.prod", []string{"conn.product", "conn.products"}},
		{"conn._", []string{}},
		{"risk $p", []string{"risk $pf"}},
		{"x = conn.r", []string{"x = conn.risk"}},
		{"he", []string{"help"}},
		{"risk he", []string{}},
		{"nothing.x", nil},
	}
	for _, tt := range tests {
		got := c.Complete(tt.line)
		if tt.want == nil {
			assert.Nil(t, got, "Complete(%q)", tt.line)
			continue
		}
		assert.Equal(t, tt.want, got, "Complete(%q)", tt.line)
	}
}
