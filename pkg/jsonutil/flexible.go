// Package jsonutil provides type-checked access to untyped JSON documents
// such as agent responses, where any field may be absent or of the wrong type.
package jsonutil

import (
	"encoding/json"
	"math"
)

// Document is a JSON object decoded into map[string]any.
// A nil Document behaves like an empty object.
type Document map[string]any

// String returns the value at key if it is a JSON string.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// StringOr returns the string at key, or fallback if absent or not a string.
func (d Document) StringOr(key, fallback string) string {
	if s, ok := d.String(key); ok {
		return s
	}
	return fallback
}

// Int returns the value at key truncated to an int if it is numeric.
// Strings holding digits are not numeric; LLMs sometimes quote numbers, but the
// agent contract treats that as a missing value.
func (d Document) Int(key string) (int, bool) {
	switch v := d[key].(type) {
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

// floatToInt truncates f, rejecting values an int cannot hold.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

// IntOr returns the int at key, or fallback if absent or not numeric.
func (d Document) IntOr(key string, fallback int) int {
	if i, ok := d.Int(key); ok {
		return i
	}
	return fallback
}

// Object returns the nested object at key, or an empty Document.
func (d Document) Object(key string) Document {
	switch v := d[key].(type) {
	case map[string]any:
		return Document(v)
	case Document:
		return v
	}
	return Document{}
}
