package query

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Sort orders records by the value at one field. The sort is stable, and
// missing or null values are placed first or last independent of the order.
type Sort struct {
	stageBase
	field      string
	desc       bool
	nullsFirst bool
}

// NewSort builds a Sort stage.
func NewSort(opts SortOptions, stageOpts ...StageOption) (*Sort, error) {
	if opts.Field == "" {
		return nil, fmt.Errorf("%w: sort field is required", ErrInvalidConfiguration)
	}
	order := opts.Order
	if order == "" {
		order = SortAsc
	}
	if order != SortAsc && order != SortDesc {
		return nil, fmt.Errorf("%w: unknown sort order %q", ErrInvalidConfiguration, order)
	}
	return &Sort{
		stageBase:  newStageBase("sort", stageOpts),
		field:      opts.Field,
		desc:       order == SortDesc,
		nullsFirst: opts.NullsFirst,
	}, nil
}

// Apply implements Stage.
func (s *Sort) Apply(docs []record.Document, _ string) ([]record.Document, error) {
	type keyed struct {
		doc record.Document
		key record.Resolution
	}

	items := make([]keyed, len(docs))
	for i, doc := range docs {
		items[i] = keyed{doc: doc, key: record.Resolve(doc, s.field)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		return s.compare(a.key, b.key)
	})

	out := make([]record.Document, len(items))
	for i, it := range items {
		out[i] = it.doc
	}
	s.logger.Debug("Sorted records", zap.Int("count", len(out)), zap.String("field", s.field))
	return out, nil
}

func (s *Sort) compare(a, b record.Resolution) int {
	aNull, bNull := !a.Found(), !b.Found()
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		if s.nullsFirst {
			return -1
		}
		return 1
	case bNull:
		if s.nullsFirst {
			return 1
		}
		return -1
	}

	c := CompareValues(a.Value, b.Value)
	if s.desc {
		return -c
	}
	return c
}

// CompareValues orders two present values. Numbers compare numerically,
// strings lexicographically, times chronologically and booleans false before
// true. A number meets a string by parsing the string; values that cannot be
// ordered that way compare equal. Any other mix compares the comparable
// string forms.
func CompareValues(a, b any) int {
	af, aNum := record.ToFloat64(a)
	bf, bNum := record.ToFloat64(b)
	as, aStr := a.(string)
	bs, bStr := b.(string)

	switch {
	case aNum && bNum:
		return compareFloats(af, bf)
	case aStr && bStr:
		return strings.Compare(as, bs)
	case aNum && bStr:
		return compareFloats(af, record.ToNumber(bs))
	case aStr && bNum:
		return compareFloats(record.ToNumber(as), bf)
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(record.ToComparableString(a), record.ToComparableString(b))
}

// compareFloats treats NaN as unordered: it is neither less nor greater.
func compareFloats(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
