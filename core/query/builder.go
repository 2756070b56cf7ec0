package query

import (
	"slices"

	"github.com/asaidimu/go-sift/core/fuzzy"
	"go.uber.org/zap"
)

// Builder provides a fluent API for assembling a pipeline Config. Stages are
// added in call order; consecutive Where calls share one filter stage so
// their conditions are combined with AND.
type Builder struct {
	config Config
}

// NewBuilder creates a new, empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Config returns the configuration assembled so far.
func (b *Builder) Config() Config {
	return b.Clone().config
}

// Build constructs the pipeline.
func (b *Builder) Build(logger *zap.Logger) (*Pipeline, error) {
	c := b.Config()
	return c.Build(logger)
}

// Clone creates an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	stages := make([]StageConfig, len(b.config.Stages))
	for i, sc := range b.config.Stages {
		stages[i] = sc.clone()
	}
	return &Builder{config: Config{Name: b.config.Name, Stages: stages}}
}

// Reset clears all stages and the name.
func (b *Builder) Reset() *Builder {
	b.config = Config{}
	return b
}

// Named sets the pipeline name.
func (b *Builder) Named(name string) *Builder {
	b.config.Name = name
	return b
}

// Search adds a search stage with explicit options.
func (b *Builder) Search(opts SearchOptions) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Search: &opts})
	return b
}

// SearchFields adds a search stage using kind over fields. With no fields
// the stage discovers them per record.
func (b *Builder) SearchFields(kind MatchKind, fields ...string) *Builder {
	return b.Search(SearchOptions{Match: kind, Fields: fields})
}

// FuzzySearch adds a fuzzy search stage scored by algorithm.
func (b *Builder) FuzzySearch(algorithm fuzzy.Algorithm, threshold float64, fields ...string) *Builder {
	return b.Search(SearchOptions{
		Match:  MatchFuzzy,
		Fields: fields,
		Fuzzy:  &FuzzyOptions{Algorithm: algorithm, Threshold: Float64Ptr(threshold)},
	})
}

// SearchWith adds a search stage matched by a custom predicate.
func (b *Builder) SearchWith(p Predicate, fields ...string) *Builder {
	return b.Search(SearchOptions{CustomMatch: p, Fields: fields})
}

// Filter adds a filter stage with explicit options.
func (b *Builder) Filter(opts FilterOptions) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Filter: &opts})
	return b
}

// Where begins a filter condition on field.
func (b *Builder) Where(field string) *ConditionBuilder {
	return &ConditionBuilder{parent: b, field: field}
}

// MissingFields sets the missing-field behavior of the current filter stage.
func (b *Builder) MissingFields(behavior MissingFieldBehavior) *Builder {
	b.currentFilter().MissingFieldBehavior = behavior
	return b
}

// CaseSensitive makes the current filter stage compare text case-sensitively.
func (b *Builder) CaseSensitive() *Builder {
	b.currentFilter().CaseSensitive = true
	return b
}

// currentFilter returns the trailing filter stage, adding one if needed.
func (b *Builder) currentFilter() *FilterOptions {
	if n := len(b.config.Stages); n > 0 && b.config.Stages[n-1].Filter != nil {
		return b.config.Stages[n-1].Filter
	}
	b.Filter(FilterOptions{})
	return b.config.Stages[len(b.config.Stages)-1].Filter
}

// OrderBy adds a sort stage.
func (b *Builder) OrderBy(field string, order SortOrder) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Sort: &SortOptions{Field: field, Order: order}})
	return b
}

// OrderByNullsFirst adds a sort stage that places missing values first.
func (b *Builder) OrderByNullsFirst(field string, order SortOrder) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Sort: &SortOptions{Field: field, Order: order, NullsFirst: true}})
	return b
}

// Page adds a paginate stage. Both values are 1-indexed.
func (b *Builder) Page(page, size int) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Paginate: &PaginateOptions{Page: IntPtr(page), PageSize: IntPtr(size)}})
	return b
}

// GroupBy adds a group stage.
func (b *Builder) GroupBy(field string) *Builder {
	b.config.Stages = append(b.config.Stages, StageConfig{Group: &GroupOptions{Field: field}})
	return b
}

// ConditionBuilder is used to build a single filter condition.
type ConditionBuilder struct {
	parent *Builder
	field  string
}

// Equals adds an equality condition.
func (cb *ConditionBuilder) Equals(value any) *Builder {
	return cb.add(OperatorEquals, value)
}

// NotEquals adds a not-equal condition.
func (cb *ConditionBuilder) NotEquals(value any) *Builder {
	return cb.add(OperatorNotEquals, value)
}

// Contains adds a substring condition.
func (cb *ConditionBuilder) Contains(value any) *Builder {
	return cb.add(OperatorContains, value)
}

// NotContains adds a negated substring condition.
func (cb *ConditionBuilder) NotContains(value any) *Builder {
	return cb.add(OperatorNotContains, value)
}

// Gt adds a greater-than condition.
func (cb *ConditionBuilder) Gt(value any) *Builder {
	return cb.add(OperatorGreaterThan, value)
}

// Gte adds a greater-than-or-equal condition.
func (cb *ConditionBuilder) Gte(value any) *Builder {
	return cb.add(OperatorGreaterThanOrEquals, value)
}

// Lt adds a less-than condition.
func (cb *ConditionBuilder) Lt(value any) *Builder {
	return cb.add(OperatorLessThan, value)
}

// Lte adds a less-than-or-equal condition.
func (cb *ConditionBuilder) Lte(value any) *Builder {
	return cb.add(OperatorLessThanOrEquals, value)
}

// IsNull adds a condition that holds when the field is null.
func (cb *ConditionBuilder) IsNull() *Builder {
	return cb.add(OperatorIsNull, nil)
}

// Op adds a condition with an arbitrary operator.
func (cb *ConditionBuilder) Op(operator Operator, value any) *Builder {
	return cb.add(operator, value)
}

func (cb *ConditionBuilder) add(operator Operator, value any) *Builder {
	f := cb.parent.currentFilter()
	f.Conditions = append(f.Conditions, Condition{Field: cb.field, Operator: operator, Value: value})
	return cb.parent
}

func (sc StageConfig) clone() StageConfig {
	var out StageConfig
	if sc.Search != nil {
		s := *sc.Search
		s.Fields = slices.Clone(s.Fields)
		if s.Fuzzy != nil {
			f := *s.Fuzzy
			s.Fuzzy = &f
		}
		out.Search = &s
	}
	if sc.Filter != nil {
		f := *sc.Filter
		f.Conditions = slices.Clone(f.Conditions)
		out.Filter = &f
	}
	if sc.Sort != nil {
		s := *sc.Sort
		out.Sort = &s
	}
	if sc.Paginate != nil {
		p := *sc.Paginate
		out.Paginate = &p
	}
	if sc.Group != nil {
		g := *sc.Group
		out.Group = &g
	}
	return out
}
