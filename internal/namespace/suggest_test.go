// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	names := []string{"risk", "products", "stress_test", "stress_test_decomposition", "conn"}
	tests := []struct {
		input string
		want  string
	}{
		{"rsik", "risk"},
		{"prodcts", "products"},
		{"PRODUCTS", "products"},
		{"stress_tset", "stress_test"},
		{"con", "conn"},
		{"risk", ""},
		{"x", ""},
		{"portfolio", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.input, names))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("abc", "abc"))
	assert.Equal(t, 3, levenshteinDistance("", "abc"))
	assert.Equal(t, 1, levenshteinDistance("risk", "rusk"))
	assert.Equal(t, 2, levenshteinDistance("risk", "rsik"))
	assert.Equal(t, 1, levenshteinDistance("prix", "prïx"), "runes, not bytes")
}

func TestLookup_Suggestions(t *testing.T) {
	ns := New()
	ns.Set("products", 1)
	ns.Set("conn", mapExporter{"risk": 2})

	_, err := ns.Lookup("prodcts")
	var nameErr *NameError
	require.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "products", nameErr.Suggestion)
	assert.EqualError(t, err, `name "prodcts" is not defined (did you mean "products"?)`)

	_, err = ns.Lookup("conn.rsik")
	var attrErr *AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, "risk", attrErr.Suggestion)
	assert.EqualError(t, err, `conn has no attribute "rsik" (did you mean "risk"?)`)

	_, err = ns.Lookup("zzz")
	assert.EqualError(t, err, `name "zzz" is not defined`)
}
