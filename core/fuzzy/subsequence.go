package fuzzy

import (
	"unicode/utf8"

	sfuzzy "github.com/sahilm/fuzzy"
)

// Subsequence scores value by whether query's runes appear in it in order,
// the way editor "go to file" pickers match. A hit scores
// len(query) / len(value) so tighter matches rank higher; a miss scores 0.
// Matching ignores case.
func Subsequence(value, query string) float64 {
	if query == "" {
		return 1
	}
	if value == "" {
		return 0
	}
	if len(sfuzzy.Find(query, []string{value})) == 0 {
		return 0
	}
	return min(float64(utf8.RuneCountInString(query))/float64(utf8.RuneCountInString(value)), 1)
}
