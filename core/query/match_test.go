package query

import (
	"math"
	"testing"
	"time"

	"github.com/asaidimu/go-sift/core/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatch(t *testing.T) {
	when := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		raw           any
		query         string
		strategy      MatchStrategy
		caseSensitive bool
		expected      bool
	}{
		{"exact folds case", "Alice", "alice", Exact(), false, true},
		{"exact case sensitive", "Alice", "alice", Exact(), true, false},
		{"exact partial", "Alice", "ali", Exact(), false, false},
		{"starts with", "Alice", "AL", StartsWith(), false, true},
		{"starts with sensitive", "Alice", "al", StartsWith(), true, false},
		{"ends with", "Alice", "CE", EndsWith(), false, true},
		{"contains", "Alice", "lic", Contains(), false, true},
		{"contains miss", "Alice", "bob", Contains(), false, false},
		{"number as text", 25, "2", Contains(), false, true},
		{"float as text", 2.5, "2.5", Exact(), false, true},
		{"bool as text", true, "TRUE", Exact(), false, true},
		{"date as text", when, "2024-05-01T00:00:00.000Z", Exact(), false, true},
		{"date prefix", when, "2024-05", StartsWith(), false, true},
		{"fuzzy identical", "Alice", "alice", Fuzzy(nil, 0.6), false, true},
		{"fuzzy above threshold", "Alice", "Ali", Fuzzy(nil, 0.55), false, true},
		{"fuzzy below threshold", "Alice", "Ali", Fuzzy(nil, 0.8), false, false},
		{"fuzzy jaro winkler", "Martha", "marhta", Fuzzy(fuzzy.JaroWinkler, 0.9), false, true},
		{"fuzzy bigram", "night", "nacht", Fuzzy(fuzzy.Bigram, 0.5), false, false},
		{"fuzzy custom scorer above one", "x", "y", Fuzzy(func(string, string) float64 { return 1.5 }, 1.2), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := IsMatch("field", tt.raw, tt.query, tt.strategy, tt.caseSensitive)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestIsMatch_CustomPredicate(t *testing.T) {
	var gotField, gotValue, gotQuery string
	p := func(field, value, query string) bool {
		gotField, gotValue, gotQuery = field, value, query
		return value == "Alice"
	}

	ok, err := IsMatch("name", "Alice", "ALI", Custom(p), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name", gotField)
	assert.Equal(t, "Alice", gotValue, "value is passed without case folding")
	assert.Equal(t, "ali", gotQuery, "query is normalized")

	ok, err = IsMatch("age", 30, "x", Custom(p), true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "30", gotValue)
	assert.Equal(t, "x", gotQuery)
}

func TestIsMatch_UnsupportedStrategy(t *testing.T) {
	_, err := IsMatch("name", "Alice", "a", MatchStrategy{Kind: "soundex"}, false)
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)

	_, err = MatchValue("alice", "a", MatchStrategy{Kind: MatchCustom})
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}

func TestMatchValue(t *testing.T) {
	ok, err := MatchValue("alice", "ali", StartsWith())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchValue("alice", "ALI", StartsWith())
	require.NoError(t, err)
	assert.False(t, ok, "MatchValue does not fold case")

	ok, err = MatchValue("hello world", "hlo", Fuzzy(fuzzy.Subsequence, 0.2))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		name     string
		strategy MatchStrategy
		wantErr  bool
	}{
		{"exact", Exact(), false},
		{"fuzzy", Fuzzy(nil, 0.5), false},
		{"custom", Custom(func(_, _, _ string) bool { return true }), false},
		{"unknown kind", MatchStrategy{Kind: "soundex"}, true},
		{"empty kind", MatchStrategy{}, true},
		{"nan threshold", Fuzzy(nil, math.NaN()), true},
		{"custom without predicate", MatchStrategy{Kind: MatchCustom}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.strategy, false)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.strategy.Kind, m.Strategy().Kind)
		})
	}

	t.Run("matches with bound case sensitivity", func(t *testing.T) {
		m, err := NewMatcher(Contains(), true)
		require.NoError(t, err)

		ok, err := m.Match("name", "Alice", "Ali")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = m.Match("name", "Alice", "ali")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
