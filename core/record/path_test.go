package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDocument() Document {
	return Document{
		"name": "Alice",
		"age":  25,
		"details": map[string]any{
			"city": "New York",
			"address": map[string]any{
				"phone": 123,
			},
			"manager": nil,
		},
		"nestedArray": []any{
			map[string]any{"name": "hello", "test": map[string]any{"name": "mr"}},
			map[string]any{"name": "hello2"},
		},
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Path
	}{
		{"single key", "name", Path{"name"}},
		{"dotted", "details.city", Path{"details", "city"}},
		{"bracketed index", "a.b[0]", Path{"a", "b", "0"}},
		{"index then key", "items[2].name", Path{"items", "2", "name"}},
		{"empty segments dropped", "..a..[1]]", Path{"a", "1"}},
		{"empty path", "", Path{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string(tt.expected), []string(ParsePath(tt.input)))
		})
	}
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "items[2].name", ParsePath("items[2].name").String())
	assert.Equal(t, "a.b", ParsePath("a.b").String())
}

func TestResolve(t *testing.T) {
	doc := sampleDocument()

	t.Run("top-level field", func(t *testing.T) {
		r := Resolve(doc, "name")
		assert.True(t, r.Found())
		assert.Equal(t, "Alice", r.Value)
	})

	t.Run("nested field", func(t *testing.T) {
		r := Resolve(doc, "details.city")
		assert.True(t, r.Found())
		assert.Equal(t, "New York", r.Value)
	})

	t.Run("nested array field", func(t *testing.T) {
		r := Resolve(doc, "nestedArray[0].name")
		assert.True(t, r.Found())
		assert.Equal(t, "hello", r.Value)

		r = Resolve(doc, "nestedArray.1.name")
		assert.Equal(t, "hello2", r.Value)
	})

	t.Run("absent final key is missing", func(t *testing.T) {
		assert.True(t, Resolve(doc, "details.phone").IsMissing())
		assert.True(t, Resolve(doc, "details.address.zip").IsMissing())
		assert.True(t, Resolve(doc, "city").IsMissing())
	})

	t.Run("absent intermediate key is null", func(t *testing.T) {
		assert.True(t, Resolve(doc, "profile.email").IsNull())
	})

	t.Run("explicit nil is null", func(t *testing.T) {
		assert.True(t, Resolve(doc, "details.manager").IsNull())
	})

	t.Run("out of range index is missing", func(t *testing.T) {
		assert.True(t, Resolve(doc, "nestedArray[5]").IsMissing())
		assert.True(t, Resolve(doc, "nestedArray[5].name").IsNull())
	})

	t.Run("indexing a scalar is null", func(t *testing.T) {
		assert.True(t, Resolve(doc, "name.first").IsNull())
		assert.True(t, Resolve(doc, "age[0]").IsNull())
	})

	t.Run("empty path returns the document", func(t *testing.T) {
		r := Resolve(doc, "")
		assert.True(t, r.Found())
		assert.Equal(t, doc, r.Value)
	})

	t.Run("nil document is null", func(t *testing.T) {
		assert.True(t, Resolve(nil, "a").IsNull())
		assert.True(t, Resolve(Document(nil), "a").IsNull())
	})

	t.Run("numeric keys index maps", func(t *testing.T) {
		r := Resolve(Document{"codes": map[string]any{"0": "zero"}}, "codes[0]")
		assert.Equal(t, "zero", r.Value)
	})

	t.Run("typed slices and maps", func(t *testing.T) {
		d := Document{
			"tags":   []string{"a", "b"},
			"rows":   []map[string]any{{"id": 7}},
			"labels": map[string]string{"env": "prod"},
		}
		assert.Equal(t, "b", Resolve(d, "tags[1]").Value)
		assert.Equal(t, 7, Resolve(d, "rows[0].id").Value)
		assert.Equal(t, "prod", Resolve(d, "labels.env").Value)
		assert.True(t, Resolve(d, "labels.region").IsMissing())
	})
}

func TestResolve_NullCollapsesAtAnyDepth(t *testing.T) {
	doc := Document{"a": map[string]any{"b": map[string]any{"c": nil}}}
	paths := []string{
		"a.b.c",
		"a.b.c.d",
		"a.b.c.d.e",
		"a.b.c[0].f.g",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.True(t, Resolve(doc, p).IsNull())
			})
		})
	}
}

func TestDocument_Get(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, 123, doc.Get("details.address.phone").Value)
}

func TestDocument_Clone(t *testing.T) {
	doc := Document{"a": 1}
	clone := doc.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, doc["a"])
	assert.Nil(t, Document(nil).Clone())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "missing", Missing.String())
	assert.Equal(t, "null", Null.String())
}
