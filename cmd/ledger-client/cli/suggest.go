// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" hint.
const maxSuggestDistance = 3

// closest returns the candidate nearest to unknown, or "" if nothing
// is within maxSuggestDistance. A distance as long as unknown itself is
// a rewrite, not a typo, and is never suggested. Ties go to the earlier
// candidate.
func closest(unknown string, candidates []string) string {
	bestName := ""
	bestDistance := maxSuggestDistance + 1

	for _, candidate := range candidates {
		distance := levenshtein(unknown, candidate)
		if distance < bestDistance && distance < len(unknown) {
			bestDistance = distance
			bestName = candidate
		}
	}

	return bestName
}

// suggestFlag returns the defined flag closest to option (given with
// its dashes, e.g. "--ammount"), formatted with the prefix it would be
// typed with. Returns "" if no flag is close enough.
func suggestFlag(option string, flagSet *pflag.FlagSet) string {
	name := strings.TrimLeft(option, "-")
	if index := strings.IndexByte(name, '='); index >= 0 {
		name = name[:index]
	}

	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	bestName := closest(name, defined)
	if bestName == "" || bestName == name {
		return ""
	}
	if len(bestName) == 1 {
		return "-" + bestName
	}
	return "--" + bestName
}

// levenshtein computes the Levenshtein edit distance between two strings.
// This is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to change one string into the other.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// A single row of the distance matrix, updated in place.
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}

		previous = current
	}

	return previous[len(a)]
}
