package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"flaw", "lawn", 2},
		{"こんにちは", "こんにちわ", 1},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a))
		})
	}
}

func TestLevenshteinRatio(t *testing.T) {
	assert.InDelta(t, 1-3.0/7.0, LevenshteinRatio("kitten", "sitting"), 1e-9)
	assert.Equal(t, 1.0, LevenshteinRatio("alice", "alice"))
	assert.Equal(t, 1.0, LevenshteinRatio("anything", ""))
	assert.Equal(t, 1.0, LevenshteinRatio("", ""))
	assert.Equal(t, 0.0, LevenshteinRatio("", "abc"))
	assert.InDelta(t, 0.8, LevenshteinRatio("こんにちは", "こんにちわ"), 1e-9)
}

func TestJaroWinkler(t *testing.T) {
	tests := []struct {
		a, b        string
		jaro, jwink float64
	}{
		{"MARTHA", "MARHTA", 0.9444, 0.9611},
		{"DWAYNE", "DUANE", 0.8222, 0.84},
		{"DIXON", "DICKSONX", 0.7667, 0.8133},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.jaro, Jaro(tt.a, tt.b), 1e-3)
			assert.InDelta(t, tt.jwink, JaroWinkler(tt.a, tt.b), 1e-3)
		})
	}

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Equal(t, 1.0, JaroWinkler("", ""))
		assert.Equal(t, 0.0, JaroWinkler("abc", ""))
		assert.Equal(t, 0.0, JaroWinkler("", "abc"))
		assert.Equal(t, 0.0, JaroWinkler("abc", "xyz"))
		assert.Equal(t, 1.0, JaroWinkler("a", "a"))
		assert.Equal(t, 1.0, JaroWinkler("bob", "bob"))
	})
}

func TestNGram(t *testing.T) {
	t.Run("bigram overlap", func(t *testing.T) {
		assert.InDelta(t, 0.25, Bigram("night", "nacht"), 1e-9)
		assert.InDelta(t, 0.25, Bigram("nacht", "night"), 1e-9)
	})

	t.Run("repeated grams count once", func(t *testing.T) {
		assert.Equal(t, 1.0, Bigram("aaaa", "aa"))
		assert.Equal(t, Bigram("abab", "ab"), Bigram("ab", "abab"))
	})

	t.Run("strings shorter than n", func(t *testing.T) {
		assert.Equal(t, 1.0, Bigram("a", "a"))
		assert.Equal(t, 1.0, Bigram("", ""))
		assert.Equal(t, 0.0, Bigram("a", "b"))
		assert.Equal(t, 0.0, Bigram("a", "ab"))
	})

	t.Run("trigrams", func(t *testing.T) {
		tri := NGram(3)
		assert.Equal(t, 1.0, tri("hello", "hello"))
		// hel ell llo vs hel elp
		assert.InDelta(t, 1.0/3.0, tri("hello", "help"), 1e-9)
	})

	t.Run("non-positive n falls back to unigrams", func(t *testing.T) {
		assert.Equal(t, 1.0, NGram(0)("abc", "cab"))
	})
}

func TestSubsequence(t *testing.T) {
	assert.InDelta(t, 3.0/11.0, Subsequence("hello world", "hlo"), 1e-9)
	assert.Equal(t, 1.0, Subsequence("alice", "alice"))
	assert.Equal(t, 0.0, Subsequence("abc", "xyz"))
	assert.Equal(t, 0.0, Subsequence("abc", "cba"))
	assert.Equal(t, 1.0, Subsequence("abc", ""))
	assert.Equal(t, 0.0, Subsequence("", "abc"))
}

func TestFolded(t *testing.T) {
	assert.Equal(t, 1.0, Folded("Café", "cafe"))
	assert.Equal(t, 1.0, Folded("résumé", "RESUME"))
	assert.Equal(t, 0.0, Folded("abc", "xyz"))
	assert.Equal(t, 0.0, Folded("", "abc"))
	assert.Equal(t, 1.0, Folded("abc", ""))

	partial := Folded("keyboard", "kbd")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
	assert.Greater(t, Folded("keyboards", "keyboard"), partial)
}

func TestScoresStayInRange(t *testing.T) {
	pairs := [][2]string{
		{"alice", "ali"},
		{"bob", "alice"},
		{"", "x"},
		{"x", ""},
		{"résumé", "resume"},
		{"Ω≈ç√", "ç√Ω"},
		{"aaaaaaaa", "a"},
	}

	for _, name := range Algorithms() {
		scorer, ok := Lookup(name)
		require.True(t, ok)
		for _, p := range pairs {
			score := scorer(p[0], p[1])
			assert.GreaterOrEqual(t, score, 0.0, "%s(%q, %q)", name, p[0], p[1])
			assert.LessOrEqual(t, score, 1.0, "%s(%q, %q)", name, p[0], p[1])
			assert.Equal(t, 1.0, scorer(p[0], p[0]), "%s(%q, %q)", name, p[0], p[0])
		}
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []Algorithm{
		AlgorithmFolded,
		AlgorithmJaroWinkler,
		AlgorithmLevenshtein,
		AlgorithmNGram,
		AlgorithmSubsequence,
	}, Algorithms())

	s, ok := Lookup(AlgorithmLevenshtein)
	require.True(t, ok)
	assert.Equal(t, LevenshteinRatio("kitten", "sitting"), s("kitten", "sitting"))

	_, ok = Lookup("soundex")
	assert.False(t, ok)
}
