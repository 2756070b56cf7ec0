package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/asaidimu/go-sift/core/fuzzy"
	"github.com/asaidimu/go-sift/core/record"
)

// MatchStrategy decides how a resolved value is compared against a query.
// Build one with Exact, StartsWith, EndsWith, Contains, Fuzzy or Custom.
type MatchStrategy struct {
	Kind      MatchKind
	Scorer    fuzzy.Scorer // fuzzy only; nil means fuzzy.Default
	Threshold float64      // fuzzy only
	Predicate Predicate    // custom only
}

// Exact matches values equal to the query.
func Exact() MatchStrategy { return MatchStrategy{Kind: MatchExact} }

// StartsWith matches values that begin with the query.
func StartsWith() MatchStrategy { return MatchStrategy{Kind: MatchStartsWith} }

// EndsWith matches values that end with the query.
func EndsWith() MatchStrategy { return MatchStrategy{Kind: MatchEndsWith} }

// Contains matches values that contain the query.
func Contains() MatchStrategy { return MatchStrategy{Kind: MatchContains} }

// Fuzzy matches values whose similarity score reaches threshold.
func Fuzzy(scorer fuzzy.Scorer, threshold float64) MatchStrategy {
	return MatchStrategy{Kind: MatchFuzzy, Scorer: scorer, Threshold: threshold}
}

// Custom delegates matching to p.
func Custom(p Predicate) MatchStrategy {
	return MatchStrategy{Kind: MatchCustom, Predicate: p}
}

// validate reports configuration problems that can be detected before any
// record is seen.
func (s MatchStrategy) validate() error {
	switch s.Kind {
	case MatchExact, MatchStartsWith, MatchEndsWith, MatchContains:
		return nil
	case MatchFuzzy:
		if math.IsNaN(s.Threshold) {
			return fmt.Errorf("%w: fuzzy threshold is NaN", ErrInvalidConfiguration)
		}
		return nil
	case MatchCustom:
		if s.Predicate == nil {
			return fmt.Errorf("%w: custom match requires a predicate", ErrInvalidConfiguration)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown match strategy %q", ErrInvalidConfiguration, s.Kind)
	}
}

// MatchValue compares two already-normalized strings under strategy. Custom
// strategies receive an empty field name.
func MatchValue(value, query string, strategy MatchStrategy) (bool, error) {
	switch strategy.Kind {
	case MatchExact:
		return value == query, nil
	case MatchStartsWith:
		return strings.HasPrefix(value, query), nil
	case MatchEndsWith:
		return strings.HasSuffix(value, query), nil
	case MatchContains:
		return strings.Contains(value, query), nil
	case MatchFuzzy:
		scorer := strategy.Scorer
		if scorer == nil {
			scorer = fuzzy.Default
		}
		return scorer(value, query) >= strategy.Threshold, nil
	case MatchCustom:
		if strategy.Predicate == nil {
			return false, fmt.Errorf("%w: custom strategy without predicate", ErrUnsupportedStrategy)
		}
		return strategy.Predicate("", value, query), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, strategy.Kind)
	}
}

// IsMatch reports whether the raw value stored at field matches query.
// Values are turned into their comparable string form and, unless
// caseSensitive is set, both sides are lowercased before comparison.
func IsMatch(field string, raw any, query string, strategy MatchStrategy, caseSensitive bool) (bool, error) {
	q := record.NormalizeCase(query, caseSensitive)
	if strategy.Kind == MatchCustom && strategy.Predicate != nil {
		return strategy.Predicate(field, record.ToComparableString(raw), q), nil
	}
	value := record.NormalizeCase(record.ToComparableString(raw), caseSensitive)
	return MatchValue(value, q, strategy)
}

// Matcher is a match strategy bound to a case sensitivity setting.
type Matcher struct {
	strategy      MatchStrategy
	caseSensitive bool
}

// NewMatcher validates strategy and returns a reusable Matcher.
func NewMatcher(strategy MatchStrategy, caseSensitive bool) (*Matcher, error) {
	if err := strategy.validate(); err != nil {
		return nil, err
	}
	return &Matcher{strategy: strategy, caseSensitive: caseSensitive}, nil
}

// Strategy returns the strategy the matcher was built with.
func (m *Matcher) Strategy() MatchStrategy {
	return m.strategy
}

// Match reports whether raw, found at field, matches query.
func (m *Matcher) Match(field string, raw any, query string) (bool, error) {
	return IsMatch(field, raw, query, m.strategy, m.caseSensitive)
}
