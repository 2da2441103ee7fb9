package match

import (
	"sort"
	"strings"
)

// minSuggestionSimilarity is the lowest normalized similarity worth suggesting.
const minSuggestionSimilarity = 0.5

// Levenshtein computes the edit distance between two strings, rune by rune.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Similarity returns 1 - distance/maxLen, case-insensitively. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}

// SuggestNames returns up to n names closest to query, most similar first.
func SuggestNames(query string, names []string, n int) []string {
	type scored struct {
		name  string
		score float64
	}

	var hits []scored

	for _, name := range names {
		if s := Similarity(query, name); s >= minSuggestionSimilarity {
			hits = append(hits, scored{name: name, score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}

	return out
}
