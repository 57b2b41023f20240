package models

import (
	"bytes"
	"encoding/json"
)

// Opt is a patch field with an explicit presence marker. The zero value means
// "leave unchanged"; Null means "clear"; otherwise Val is the new value.
type Opt[T any] struct {
	Set  bool
	Null bool
	Val  T
}

// Some returns a present, non-null Opt.
func Some[T any](v T) Opt[T] { return Opt[T]{Set: true, Val: v} }

// Null returns a present Opt that clears the field.
func Null[T any]() Opt[T] { return Opt[T]{Set: true, Null: true} }

// HasValue reports whether the field is present with a non-null value.
func (o Opt[T]) HasValue() bool { return o.Set && !o.Null }

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what distinguishes an absent field from an explicit null.
func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		var zero T
		o.Val = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Val)
}

// MarshalJSON writes null for absent or cleared fields.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}

// ApplyTo writes the option into a nullable destination.
func (o Opt[T]) ApplyTo(dst **T) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Val
	*dst = &v
}
