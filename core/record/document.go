// Package record defines the dynamically shaped documents that flow through a
// query pipeline, together with the primitives every stage builds on: parsing
// field paths, resolving them against nested data, and coercing resolved values
// into comparable strings and numbers.
package record

// Document is a single record. Values may be scalars, nested documents,
// sequences, or nil. No schema is assumed.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Get resolves a field path against the document. It is shorthand for
// Resolve(d, path).
func (d Document) Get(path string) Resolution {
	return Resolve(d, path)
}
