// Package fuzzy implements the string-similarity scorers used by fuzzy
// matching. Every scorer is pure, works on runes rather than bytes, and
// returns a score where 1 means identical.
package fuzzy

import "sort"

// Scorer rates how similar value is to query. Built-in scorers return a value
// in [0, 1]; custom scorers may return any float and thresholds accept it
// as-is.
type Scorer func(value, query string) float64

// Algorithm names a built-in scorer in declarative configuration.
type Algorithm string

// Built-in scorer names.
const (
	AlgorithmLevenshtein Algorithm = "levenshtein"
	AlgorithmJaroWinkler Algorithm = "jaroWinkler"
	AlgorithmNGram       Algorithm = "ngram"
	AlgorithmSubsequence Algorithm = "subsequence"
	AlgorithmFolded      Algorithm = "folded"
)

// Default is the scorer used when fuzzy matching is requested without one.
var Default Scorer = LevenshteinRatio

var builtin = map[Algorithm]Scorer{
	AlgorithmLevenshtein: LevenshteinRatio,
	AlgorithmJaroWinkler: JaroWinkler,
	AlgorithmNGram:       Bigram,
	AlgorithmSubsequence: Subsequence,
	AlgorithmFolded:      Folded,
}

// Lookup returns the built-in scorer registered under name.
func Lookup(name Algorithm) (Scorer, bool) {
	s, ok := builtin[name]
	return s, ok
}

// Algorithms lists the built-in scorer names in sorted order.
func Algorithms() []Algorithm {
	names := make([]Algorithm, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
