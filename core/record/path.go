package record

import (
	"reflect"
	"strconv"
	"strings"
)

// Path is a parsed field path: an ordered list of object keys and sequence
// indexes.
type Path []string

// ParsePath splits a textual path on '.', '[' and ']' and drops empty
// segments, so "a.b[0]" becomes ["a", "b", "0"].
func ParsePath(path string) Path {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
}

// String renders the path back in dotted form with bracketed indexes.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if _, err := strconv.Atoi(seg); err == nil && i > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// State describes the outcome of resolving a path.
type State int

const (
	// Found means the path led to a present, non-nil value.
	Found State = iota
	// Missing means the final key was absent under a present parent.
	Missing
	// Null means the value was nil, or the walk passed through a nil or
	// unindexable node.
	Null
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Resolution is the result of Resolve.
type Resolution struct {
	Value any
	State State
}

// Found reports whether a non-nil value was resolved.
func (r Resolution) Found() bool { return r.State == Found }

// IsMissing reports whether the final key was absent.
func (r Resolution) IsMissing() bool { return r.State == Missing }

// IsNull reports whether the resolved value is nil.
func (r Resolution) IsNull() bool { return r.State == Null }

// Resolve walks doc along path. It never panics: nil nodes collapse to Null
// at any depth, an absent final key is Missing, and indexing a scalar is Null.
func Resolve(doc any, path string) Resolution {
	return ResolvePath(doc, ParsePath(path))
}

// ResolvePath is Resolve for an already parsed path.
func ResolvePath(doc any, path Path) Resolution {
	current := doc
	for i, seg := range path {
		if isNil(current) {
			return Resolution{State: Null}
		}
		next, ok := lookup(current, seg)
		if !ok {
			if i == len(path)-1 {
				return Resolution{State: Missing}
			}
			// An absent intermediate node behaves like undefined: the next
			// step sees nothing to index and the whole path is null.
			return Resolution{State: Null}
		}
		current = next
	}
	if isNil(current) {
		return Resolution{State: Null}
	}
	return Resolution{Value: current, State: Found}
}

// lookup indexes a single node. The boolean is false when the node can be
// indexed but has no entry for seg. Scalars report (nil, true) so that the
// walk degrades to Null rather than Missing.
func lookup(node any, seg string) (any, bool) {
	switch n := node.(type) {
	case Document:
		v, ok := n[seg]
		return v, ok
	case map[string]any:
		v, ok := n[seg]
		return v, ok
	case []any:
		return index(len(n), seg, func(i int) any { return n[i] })
	case []Document:
		return index(len(n), seg, func(i int) any { return n[i] })
	case []map[string]any:
		return index(len(n), seg, func(i int) any { return n[i] })
	}

	rv := reflect.ValueOf(node)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, true
		}
		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		return index(rv.Len(), seg, func(i int) any { return rv.Index(i).Interface() })
	default:
		return nil, true
	}
}

func index(n int, seg string, at func(int) any) (any, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return nil, false
	}
	return at(i), true
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or
// interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
