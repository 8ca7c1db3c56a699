// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []Token
	}{
		{"products", []Token{{Text: "products"}}},
		{"products  bond   10", []Token{{Text: "products"}, {Text: "bond"}, {Text: "10"}}},
		{`products "us treasury"`, []Token{{Text: "products"}, {Text: "us treasury", Quoted: true}}},
		{`a 'it''s'`, []Token{{Text: "a"}, {Text: "its", Quoted: true}}},
		{`a "say \"hi\""`, []Token{{Text: "a"}, {Text: `say "hi"`, Quoted: true}}},
		{`a ""`, []Token{{Text: "a"}, {Text: "", Quoted: true}}},
		{`risk [0.95, 0.99] attrs={"k": "v w"}`, []Token{{Text: "risk"}, {Text: "[0.95, 0.99]"}, {Text: `attrs={"k": "v w"}`}}},
		{`a "[x y]"`, []Token{{Text: "a"}, {Text: "[x y]", Quoted: true}}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := Tokenize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, "Tokenize(%q)", tt.input)
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	_, err := Tokenize(`products "bond`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		assign string
		target string
		nargs  int
	}{
		{"conn.products bond", "", "conn.products", 1},
		{"res = risk $pf 0.95", "res", "risk", 2},
		{"res=risk $pf", "res", "risk", 1},
		{"res= risk", "res", "risk", 0},
		{"$pf", "", "pf", 0},
		{"x = $pf.holdings", "x", "pf.holdings", 0},
	}
	for _, tt := range tests {
		stmt, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		require.NotNil(t, stmt, tt.input)
		assert.Equal(t, tt.assign, stmt.Assign, "Parse(%q).Assign", tt.input)
		assert.Equal(t, tt.target, stmt.Target, "Parse(%q).Target", tt.input)
		assert.Len(t, stmt.Args, tt.nargs, "Parse(%q).Args", tt.input)
	}
}

func TestParse_EmptyAndComments(t *testing.T) {
	for _, in := range []string{"", "   ", "# a comment"} {
		stmt, err := Parse(in)
		assert.NoError(t, err)
		assert.Nil(t, stmt)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"1x = products",
		"res =",
		`"quoted" arg`,
		"conn..products",
		"3.14",
		`products "open`,
	}
	for _, in := range tests {
		_, err := Parse(in)
		assert.Error(t, err, "Parse(%q) should fail", in)
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"pf", true},
		{"_tmp", true},
		{"pf2", true},
		{"2pf", false},
		{"a-b", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsIdentifier(tt.s); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
