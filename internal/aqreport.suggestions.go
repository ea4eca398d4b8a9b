package internal

import (
	"sort"
	"strings"
)

// MaxFieldSuggestions caps the number of similar field names attached to an error
const MaxFieldSuggestions = 3

// minSuggestionDistance is the smallest edit distance threshold used for short names
const minSuggestionDistance = 2

// SimilarFields returns up to limit candidates close to field by
// case-insensitive edit distance, closest first. Ties keep candidate order.
func SimilarFields(field string, candidates []string, limit int) []string {
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}

	threshold := max(len(field)/2, minSuggestionDistance)
	target := strings.ToLower(field)

	type match struct {
		name     string
		distance int
	}
	matches := make([]match, 0, len(candidates))
	for _, candidate := range candidates {
		if d := editDistance(target, strings.ToLower(candidate)); d <= threshold {
			matches = append(matches, match{name: candidate, distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches[:min(limit, len(matches))] {
		result = append(result, m.name)
	}
	return result
}

// editDistance is the Levenshtein distance between a and b, computed bytewise
func editDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

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
