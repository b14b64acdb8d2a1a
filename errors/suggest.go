package errors

import (
	"sort"
	"strings"
)

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// SuggestSimilar returns the candidates closest to name by edit distance,
// nearest first. Candidates further than a length-dependent threshold are
// dropped.
func SuggestSimilar(name string, candidates []string) []string {
	if name == "" {
		return nil
	}
	threshold := 3
	switch {
	case len(name) <= 3:
		threshold = 1
	case len(name) <= 5:
		threshold = 2
	}
	type scored struct {
		value string
		dist  int
	}
	var found []scored
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if c == "" || strings.ToLower(c) == lower {
			continue
		}
		if d := editDistance(lower, strings.ToLower(c)); d <= threshold {
			found = append(found, scored{c, d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].value < found[j].value
	})
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.value
	}
	return out
}

// FormatSuggestions renders suggestions as a "did you mean" hint.
func FormatSuggestions(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + suggestions[0] + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s + "'"
	}
	return "did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
