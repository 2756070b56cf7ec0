// Package utils converts between typed Go values and the generic documents
// that pipelines operate on.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/asaidimu/go-sift/core/record"
	"github.com/mitchellh/mapstructure"
)

// ToDocument converts a struct, or a pointer to one, into a document.
//
// The value is marshaled to JSON and decoded back, so `json` tags decide the
// field names and nested structs become nested maps that path resolution can
// walk. Numbers come back as float64.
//
// Example:
//
//	type Address struct {
//		City string `json:"city"`
//	}
//	type User struct {
//		Name    string  `json:"name"`
//		Address Address `json:"address"`
//	}
//	doc, err := ToDocument(User{Name: "Ana", Address: Address{City: "Lima"}})
//	// doc is record.Document{"name": "Ana", "address": map[string]any{"city": "Lima"}}
func ToDocument[T any](value T) (record.Document, error) {
	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return nil, fmt.Errorf("input value cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input value cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct && val.Kind() != reflect.Map {
		return nil, fmt.Errorf("input value must be a struct, a map or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("ToDocument: failed to marshal input value to JSON: %w", err)
	}

	var doc record.Document
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("ToDocument: failed to unmarshal JSON to document: %w", err)
	}
	return doc, nil
}

// FromDocument is the inverse of ToDocument. T must be a struct type or a
// pointer to one. Fields are matched by their `json` tag and RFC 3339 strings
// decode into time.Time fields; keys without a matching field are ignored.
func FromDocument[T any](doc record.Document) (T, error) {
	var zero T

	if doc == nil {
		return zero, fmt.Errorf("FromDocument: input document cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("FromDocument: generic type T must be a struct type (or pointer to struct)")
	}

	var result T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     &result,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return zero, fmt.Errorf("FromDocument: failed to create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return zero, fmt.Errorf("FromDocument: failed to decode document into target struct: %w", err)
	}
	return result, nil
}

// ToDocuments converts every element of values. The result is never nil.
func ToDocuments[T any](values []T) ([]record.Document, error) {
	docs := make([]record.Document, 0, len(values))
	for i, v := range values {
		doc, err := ToDocument(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FromDocuments converts every document back into T.
func FromDocuments[T any](docs []record.Document) ([]T, error) {
	values := make([]T, 0, len(docs))
	for i, doc := range docs {
		v, err := FromDocument[T](doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// DecodeDocuments parses a JSON array of objects. A single top-level object
// is accepted as a one-element collection.
func DecodeDocuments(data []byte) ([]record.Document, error) {
	var docs []record.Document
	arrErr := json.Unmarshal(data, &docs)
	if arrErr == nil {
		if docs == nil {
			docs = []record.Document{}
		}
		return docs, nil
	}

	var single record.Document
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("documents must be a JSON array of objects or a single object: %w", arrErr)
	}
	return []record.Document{single}, nil
}
