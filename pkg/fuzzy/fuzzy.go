// Package fuzzy implements the approximate string matching used to reconcile
// AI-suggested category paths and attribute names with the marketplace's own
// vocabulary.
package fuzzy

import (
	"sort"
	"strings"
)

// Ratio scores the similarity of two strings in [0, 1] as 1 minus the
// normalized Levenshtein distance. Comparison is case-insensitive.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1
	}

	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}

	longer := la
	if lb > longer {
		longer = lb
	}

	return 1 - float64(levenshtein([]rune(a), []rune(b)))/float64(longer)
}

// CloseMatches returns the candidates scoring at least cutoff against target,
// best first, at most n of them. It mirrors the behavior this service relies
// on for category and attribute reconciliation: a cutoff of 0.6 for names,
// 0.4 for enum values.
func CloseMatches(target string, candidates []string, n int, cutoff float64) []string {
	type scored struct {
		s     string
		score float64
	}

	matches := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if r := Ratio(target, c); r >= cutoff {
			matches = append(matches, scored{c, r})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.s
	}
	return out
}

// BestMatch returns the single best candidate at or above cutoff, or "" and
// false when nothing qualifies.
func BestMatch(target string, candidates []string, cutoff float64) (string, bool) {
	m := CloseMatches(target, candidates, 1, cutoff)
	if len(m) == 0 {
		return "", false
	}
	return m[0], true
}

// SimplifyPath reduces a multi-level "a > b > c" category path to its first
// and last segments, the shape of the marketplace's level-2 catalog entries.
func SimplifyPath(path string) string {
	parts := strings.Split(path, ">")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		return parts[0] + " > " + parts[len(parts)-1]
	}
	return strings.TrimSpace(path)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
