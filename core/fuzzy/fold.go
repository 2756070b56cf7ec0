package fuzzy

import (
	"math"
	"unicode/utf8"

	fsearch "github.com/lithammer/fuzzysearch/fuzzy"
)

// Folded is an in-order match like Subsequence that also ignores accents and
// other diacritics, so "cafe" finds "Café". Every rune of value the query
// skips halves the score relative to the value's length: a hit scores
// 2^(-skipped/len(value)) and a miss scores 0.
func Folded(value, query string) float64 {
	if query == "" {
		return 1
	}
	skipped := fsearch.RankMatchNormalizedFold(query, value)
	if skipped < 0 {
		return 0
	}
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return 1
	}
	return math.Min(1, math.Pow(2, -float64(skipped)/float64(n)))
}
