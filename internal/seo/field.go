package seo

import (
	"bytes"
	"encoding/json"
	"strings"
)

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldNull
	fieldValue
)

// Field is a tri-state value: unset (not provided), null (provided, clears the value) or a value.
// The zero Field is unset.
type Field[T any] struct {
	state fieldState
	value T
}

// Unset returns a field that leaves earlier layers untouched.
func Unset[T any]() Field[T] { return Field[T]{} }

// Null returns a provided field that clears earlier layers.
func Null[T any]() Field[T] { return Field[T]{state: fieldNull} }

// Value returns a provided field carrying v.
func Value[T any](v T) Field[T] { return Field[T]{state: fieldValue, value: v} }

// Text trims s and returns it as a value, or Null when nothing remains.
func Text(s string) Field[string] {
	if s = strings.TrimSpace(s); s == "" {
		return Null[string]()
	}
	return Value(s)
}

// Optional trims s and returns it as a value, or Unset when nothing remains so lower layers
// still apply.
func Optional(s string) Field[string] {
	if s = strings.TrimSpace(s); s == "" {
		return Unset[string]()
	}
	return Value(s)
}

// Provided reports whether the field is null or carries a value.
func (f Field[T]) Provided() bool { return f.state != fieldUnset }

// IsNull reports whether the field was explicitly cleared.
func (f Field[T]) IsNull() bool { return f.state == fieldNull }

// Get returns the value and whether one is present.
func (f Field[T]) Get() (T, bool) { return f.value, f.state == fieldValue }

// Or returns next when it is provided and f otherwise.
func (f Field[T]) Or(next Field[T]) Field[T] {
	if next.Provided() {
		return next
	}
	return f
}

// UnmarshalJSON maps a JSON null to Null and any other value to Value. Keys absent from the
// document never reach this method and stay unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Value(v)
	return nil
}

// normalizeText trims provided string values; blank strings become Null.
func normalizeText(f Field[string]) Field[string] {
	if v, ok := f.Get(); ok {
		return Text(v)
	}
	return f
}
