package query

import (
	"fmt"

	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Bucket holds the records that share one group key.
type Bucket struct {
	Key       string            `json:"key"`
	Documents []record.Document `json:"documents"`
}

// GroupBy buckets docs by the value at opts.Field. Buckets appear in the
// order their keys are first seen and keep the input order of their records.
// Missing and falsy values land in opts.DefaultGroupKey. Values of different
// kinds stay apart even when their keys print the same.
func GroupBy(docs []record.Document, opts GroupOptions) []Bucket {
	fallback := opts.DefaultGroupKey
	if fallback == "" {
		fallback = DefaultGroupKey
	}

	var buckets []Bucket
	index := make(map[any]int)
	for _, doc := range docs {
		key := fallback
		var id any = fallback
		if res := record.Resolve(doc, opts.Field); res.Found() && record.Truthy(res.Value) {
			key = record.ToComparableString(res.Value)
			id = bucketID(res.Value, key)
		}
		i, ok := index[id]
		if !ok {
			i = len(buckets)
			index[id] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Documents = append(buckets[i].Documents, doc)
	}
	return buckets
}

// textKey identifies a bucket by the string form of a value that has no
// usable identity of its own.
type textKey string

// bucketID keeps values of different kinds apart, so 1 and "1" form two
// buckets. Numbers of any width share one identity.
func bucketID(v any, key string) any {
	switch val := v.(type) {
	case string, bool:
		return val
	}
	if f, ok := record.ToFloat64(v); ok {
		return f
	}
	return textKey(key)
}

// Group reorders the collection so records sharing a key are adjacent.
type Group struct {
	stageBase
	opts GroupOptions
}

// NewGroup builds a Group stage.
func NewGroup(opts GroupOptions, stageOpts ...StageOption) (*Group, error) {
	if opts.Field == "" {
		return nil, fmt.Errorf("%w: group field is required", ErrInvalidConfiguration)
	}
	if opts.DefaultGroupKey == "" {
		opts.DefaultGroupKey = DefaultGroupKey
	}
	return &Group{stageBase: newStageBase("group", stageOpts), opts: opts}, nil
}

// Buckets returns the ordered buckets for docs.
func (g *Group) Buckets(docs []record.Document) []Bucket {
	return GroupBy(docs, g.opts)
}

// Apply implements Stage. The output concatenates the buckets in order.
func (g *Group) Apply(docs []record.Document, _ string) ([]record.Document, error) {
	buckets := GroupBy(docs, g.opts)
	out := make([]record.Document, 0, len(docs))
	for _, b := range buckets {
		out = append(out, b.Documents...)
	}
	g.logger.Debug("Grouped records", zap.Int("buckets", len(buckets)), zap.Int("count", len(out)))
	return out, nil
}
