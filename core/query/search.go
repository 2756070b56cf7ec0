package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-sift/core/fuzzy"
	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Search keeps the records where at least one field matches the query.
type Search struct {
	stageBase
	matcher   *Matcher
	fields    []string
	threshold int
}

// NewSearch builds a Search stage. Unknown match kinds, unknown fuzzy
// algorithms and NaN thresholds are configuration errors.
func NewSearch(opts SearchOptions, stageOpts ...StageOption) (*Search, error) {
	strategy, err := opts.Strategy()
	if err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(strategy, opts.CaseSensitive)
	if err != nil {
		return nil, err
	}

	threshold := opts.ObjectToStringThreshold
	if threshold <= 0 {
		threshold = DefaultObjectToStringThreshold
	}

	return &Search{
		stageBase: newStageBase("search", stageOpts),
		matcher:   matcher,
		fields:    slices.Clone([]string(opts.Fields)),
		threshold: threshold,
	}, nil
}

// Strategy resolves the options into a MatchStrategy.
func (o SearchOptions) Strategy() (MatchStrategy, error) {
	if o.CustomMatch != nil {
		return Custom(o.CustomMatch), nil
	}

	kind := o.Match
	if kind == "" {
		kind = MatchContains
	}

	switch kind {
	case MatchExact, MatchStartsWith, MatchEndsWith, MatchContains:
		return MatchStrategy{Kind: kind}, nil
	case MatchFuzzy:
		return o.Fuzzy.strategy()
	case MatchCustom:
		return MatchStrategy{}, fmt.Errorf("%w: match %q requires a custom predicate", ErrInvalidConfiguration, kind)
	default:
		return MatchStrategy{}, fmt.Errorf("%w: unknown match strategy %q", ErrInvalidConfiguration, kind)
	}
}

func (o *FuzzyOptions) strategy() (MatchStrategy, error) {
	threshold := DefaultFuzzyThreshold
	var scorer fuzzy.Scorer
	if o != nil {
		if o.Threshold != nil {
			threshold = *o.Threshold
		}
		switch {
		case o.Scorer != nil:
			scorer = o.Scorer
		case o.Algorithm != "":
			s, ok := fuzzy.Lookup(o.Algorithm)
			if !ok {
				return MatchStrategy{}, fmt.Errorf("%w: unknown fuzzy algorithm %q", ErrInvalidConfiguration, o.Algorithm)
			}
			scorer = s
		}
	}
	return Fuzzy(scorer, threshold), nil
}

// Apply implements Stage.
func (s *Search) Apply(docs []record.Document, query string) ([]record.Document, error) {
	return s.Process(docs, query, nil)
}

// Process implements ReportingStage.
func (s *Search) Process(docs []record.Document, query string, _ Reporter) ([]record.Document, error) {
	if docs == nil {
		return []record.Document{}, nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return docs, nil
	}

	out := make([]record.Document, 0, len(docs))
	for _, doc := range docs {
		keep, err := s.matches(doc, query)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, doc)
		}
	}
	s.logger.Debug("Records remaining after search", zap.Int("count", len(out)), zap.String("query", query))
	return out, nil
}

func (s *Search) matches(doc record.Document, query string) (bool, error) {
	fields := s.fields
	if len(fields) == 0 {
		fields = record.LeafPaths(doc, s.threshold)
	}
	for _, field := range fields {
		res := record.Resolve(doc, field)
		if !res.Found() {
			continue
		}
		ok, err := s.matcher.Match(field, res.Value, query)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
