// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "Did you mean" suggestions for mistyped names.

package namespace

import "strings"

// Suggest returns the candidate closest to input, or "" when none is close
// enough. Matching is case-insensitive; the allowed edit distance grows
// with the input length.
func Suggest(input string, candidates []string) string {
	lower := strings.ToLower(input)

	// Very short inputs are likely intentional
	if len(lower) < 2 {
		return ""
	}

	// <=3 chars: 1 edit; 4-8 chars: 2 edits (catches transpositions like
	// "rsik" -> "risk"); longer: 3 edits
	maxDistance := 1
	if len(lower) >= 4 {
		maxDistance = 2
	}
	if len(lower) > 8 {
		maxDistance = 3
	}

	best := ""
	bestDistance := -1
	for _, cand := range candidates {
		if cand == input {
			return ""
		}
		distance := levenshteinDistance(lower, strings.ToLower(cand))
		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			best = cand
		}
	}
	return best
}

// levenshteinDistance is the minimum number of single-rune insertions,
// deletions or substitutions turning s1 into s2.
func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rows instead of the full matrix
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
