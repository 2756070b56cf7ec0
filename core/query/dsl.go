// Package query defines the stages of an in-memory record pipeline (search,
// filter, sort, paginate and group) together with the configuration
// structures used to build them. Every stage shares one contract: it takes a
// collection of records plus a free-text query and returns a new collection.
package query

import (
	"github.com/asaidimu/go-sift/core/fuzzy"
)

// Operator defines the set of operators that can be used in a filter condition.
type Operator string

// Supported filter operators.
const (
	OperatorEquals              Operator = "equals"
	OperatorNotEquals           Operator = "notEquals"
	OperatorContains            Operator = "contains"
	OperatorNotContains         Operator = "notContains"
	OperatorGreaterThan         Operator = "greaterThan"
	OperatorLessThan            Operator = "lessThan"
	OperatorGreaterThanOrEquals Operator = "greaterThanOrEquals"
	OperatorLessThanOrEquals    Operator = "lessThanOrEquals"
	OperatorIsNull              Operator = "isNull"
)

// IsOrdering reports whether the operator compares values numerically.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterThanOrEquals, OperatorLessThanOrEquals:
		return true
	}
	return false
}

// Condition is a single field/operator/value test evaluated by a Filter.
type Condition struct {
	Field    string   `json:"field"`           // Path of the value to test, e.g. "user.tags[0]".
	Operator Operator `json:"operator"`        // Comparison to perform.
	Value    any      `json:"value,omitempty"` // Right-hand side of the comparison.
}

// MissingFieldBehavior selects what a filter does with a condition whose
// field does not exist in a record.
type MissingFieldBehavior string

// Supported missing-field behaviors.
const (
	MissingFieldSkip    MissingFieldBehavior = "skip"
	MissingFieldExclude MissingFieldBehavior = "exclude"
	MissingFieldThrow   MissingFieldBehavior = "throw"
)

// FilterOptions configures a Filter stage.
type FilterOptions struct {
	Conditions           []Condition          `json:"conditions"`
	CaseSensitive        bool                 `json:"caseSensitive,omitempty"`
	MissingFieldBehavior MissingFieldBehavior `json:"missingFieldBehavior,omitempty"` // Defaults to skip.
}

// MatchKind names a built-in match strategy.
type MatchKind string

// Supported match kinds.
const (
	MatchExact      MatchKind = "exact"
	MatchStartsWith MatchKind = "startsWith"
	MatchEndsWith   MatchKind = "endsWith"
	MatchContains   MatchKind = "contains"
	MatchFuzzy      MatchKind = "fuzzy"
	MatchCustom     MatchKind = "custom"
)

// Predicate is a caller-supplied match function. It receives the field path,
// the comparable string form of the value and the normalized query.
type Predicate func(field, value, query string) bool

// DefaultFuzzyThreshold is the minimum score a fuzzy match must reach when no
// threshold is configured.
const DefaultFuzzyThreshold = 0.6

// FuzzyOptions tunes fuzzy matching.
type FuzzyOptions struct {
	Threshold *float64        `json:"threshold,omitempty"` // Defaults to DefaultFuzzyThreshold.
	Algorithm fuzzy.Algorithm `json:"algorithm,omitempty"` // Named built-in scorer.
	Scorer    fuzzy.Scorer    `json:"-"`                   // Overrides Algorithm when set.
}

// DefaultObjectToStringThreshold bounds how many leaf paths are discovered per
// record when a search has no explicit fields.
const DefaultObjectToStringThreshold = 10

// SearchOptions configures a Search stage.
type SearchOptions struct {
	Match                   MatchKind     `json:"match,omitempty"` // Defaults to contains.
	CustomMatch             Predicate     `json:"-"`               // Takes precedence over Match.
	Fields                  FieldList     `json:"fields,omitempty"`
	CaseSensitive           bool          `json:"caseSensitive,omitempty"`
	ObjectToStringThreshold int           `json:"objectToStringThreshold,omitempty"`
	Fuzzy                   *FuzzyOptions `json:"fuzzyOptions,omitempty"`
}

// SortOrder specifies the direction for sorting.
type SortOrder string

// Supported sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions configures a Sort stage.
type SortOptions struct {
	Field      string    `json:"field"`
	Order      SortOrder `json:"order,omitempty"`      // Defaults to asc.
	NullsFirst bool      `json:"nullsFirst,omitempty"` // Nulls sort last unless set.
}

// Pagination defaults.
const (
	DefaultPageSize = 10
	DefaultPage     = 1
)

// PaginateOptions configures a Paginate stage. Both values are 1-indexed.
type PaginateOptions struct {
	PageSize *int `json:"pageSize,omitempty"`
	Page     *int `json:"page,omitempty"`
}

// DefaultGroupKey is the bucket that receives records whose group value is
// missing or falsy.
const DefaultGroupKey = "Other"

// GroupOptions configures a Group stage.
type GroupOptions struct {
	Field           string `json:"field"`
	DefaultGroupKey string `json:"defaultGroupKey,omitempty"`
}
