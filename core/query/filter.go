package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Filter keeps the records that satisfy every configured condition.
type Filter struct {
	stageBase
	conditions    []Condition
	caseSensitive bool
	missing       MissingFieldBehavior
}

// NewFilter builds a Filter stage. An unknown MissingFieldBehavior is a
// configuration error; an empty condition list yields a stage that returns
// its input untouched.
func NewFilter(opts FilterOptions, stageOpts ...StageOption) (*Filter, error) {
	missing := opts.MissingFieldBehavior
	if missing == "" {
		missing = MissingFieldSkip
	}
	switch missing {
	case MissingFieldSkip, MissingFieldExclude, MissingFieldThrow:
	default:
		return nil, fmt.Errorf("%w: unknown missingFieldBehavior %q", ErrInvalidConfiguration, missing)
	}

	f := &Filter{
		stageBase:     newStageBase("filter", stageOpts),
		conditions:    slices.Clone(opts.Conditions),
		caseSensitive: opts.CaseSensitive,
		missing:       missing,
	}
	if len(f.conditions) == 0 {
		f.logger.Warn("Filter built without conditions, records will pass through unchanged")
	}
	return f, nil
}

// Apply implements Stage.
func (f *Filter) Apply(docs []record.Document, query string) ([]record.Document, error) {
	return f.Process(docs, query, nil)
}

// Process implements ReportingStage.
func (f *Filter) Process(docs []record.Document, _ string, report Reporter) ([]record.Document, error) {
	if docs == nil {
		return []record.Document{}, nil
	}
	if len(f.conditions) == 0 {
		f.warn(report, IssueEmptyConditions, "no filter conditions configured")
		return docs, nil
	}

	active := make([]Condition, 0, len(f.conditions))
	for i, c := range f.conditions {
		if c.Field == "" || c.Operator == "" {
			f.warn(report, IssueInvalidCondition,
				fmt.Sprintf("condition %d is missing a field or operator and is treated as satisfied", i),
				zap.Int("index", i))
			continue
		}
		active = append(active, c)
	}

	out := make([]record.Document, 0, len(docs))
	for _, doc := range docs {
		keep, err := f.matchAll(doc, active)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, doc)
		}
	}
	f.logger.Debug("Records remaining after filter", zap.Int("count", len(out)))
	return out, nil
}

func (f *Filter) matchAll(doc record.Document, conditions []Condition) (bool, error) {
	for _, c := range conditions {
		ok, err := f.evaluate(doc, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// evaluate tests one condition against doc.
func (f *Filter) evaluate(doc record.Document, c Condition) (bool, error) {
	res := record.Resolve(doc, c.Field)
	switch res.State {
	case record.Missing:
		switch f.missing {
		case MissingFieldExclude:
			return false, nil
		case MissingFieldThrow:
			return false, fmt.Errorf("%w: field %q does not exist in the data", ErrMissingField, c.Field)
		default:
			return true, nil
		}
	case record.Null:
		return c.Operator == OperatorIsNull, nil
	}

	switch c.Operator {
	case OperatorEquals:
		return f.text(res.Value) == f.text(c.Value), nil
	case OperatorNotEquals:
		return f.text(res.Value) != f.text(c.Value), nil
	case OperatorContains:
		return strings.Contains(f.text(res.Value), f.text(c.Value)), nil
	case OperatorNotContains:
		return !strings.Contains(f.text(res.Value), f.text(c.Value)), nil
	case OperatorGreaterThan:
		return record.ToNumber(res.Value) > record.ToNumber(c.Value), nil
	case OperatorLessThan:
		return record.ToNumber(res.Value) < record.ToNumber(c.Value), nil
	case OperatorGreaterThanOrEquals:
		return record.ToNumber(res.Value) >= record.ToNumber(c.Value), nil
	case OperatorLessThanOrEquals:
		return record.ToNumber(res.Value) <= record.ToNumber(c.Value), nil
	case OperatorIsNull:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Operator)
	}
}

func (f *Filter) text(v any) string {
	return record.NormalizeCase(record.ToComparableString(v), f.caseSensitive)
}
