package record

import (
	"reflect"
	"slices"
	"strconv"
	"time"
)

// LeafPaths lists up to limit leaf field paths of doc using a depth-first
// walk. Nested objects contribute dotted paths, sequences contribute indexed
// paths ("tags[0]"), dates are leaves, and one budget is shared by the whole
// walk so a deep subtree consumes from the same allowance as its siblings.
// Map keys are visited in sorted order.
func LeafPaths(doc any, limit int) []string {
	if limit <= 0 {
		return nil
	}
	w := &leafWalker{limit: limit}
	w.walkObject(doc, "")
	return w.paths
}

type leafWalker struct {
	limit int
	paths []string
}

func (w *leafWalker) full() bool {
	return len(w.paths) >= w.limit
}

func (w *leafWalker) walkObject(node any, prefix string) {
	keys, get, ok := objectEntries(node)
	if !ok {
		return
	}
	for _, key := range keys {
		if w.full() {
			return
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		w.walkValue(get(key), path)
	}
}

func (w *leafWalker) walkSequence(items []any, prefix string) {
	for i, item := range items {
		if w.full() {
			return
		}
		path := prefix + "[" + strconv.Itoa(i) + "]"
		if isLeaf(item) {
			w.paths = append(w.paths, path)
			continue
		}
		w.walkValue(item, path)
	}
}

func (w *leafWalker) walkValue(value any, path string) {
	if isLeaf(value) {
		w.paths = append(w.paths, path)
		return
	}
	if items, ok := sequenceItems(value); ok {
		w.walkSequence(items, path)
		return
	}
	w.walkObject(value, path)
}

// isLeaf reports whether v is neither a nested object nor a sequence. Dates
// and nil are leaves.
func isLeaf(v any) bool {
	switch v.(type) {
	case nil, time.Time, *time.Time, []byte:
		return true
	}
	if isNil(v) {
		return true
	}
	if _, ok := sequenceItems(v); ok {
		return false
	}
	_, _, ok := objectEntries(v)
	return !ok
}

func objectEntries(node any) ([]string, func(string) any, bool) {
	var m map[string]any
	switch n := node.(type) {
	case Document:
		m = n
	case map[string]any:
		m = n
	default:
		rv := reflect.ValueOf(node)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, nil, false
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		get := func(k string) any {
			return rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
		}
		return keys, get, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, func(k string) any { return m[k] }, true
}

func sequenceItems(node any) ([]any, bool) {
	switch n := node.(type) {
	case []any:
		return n, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
