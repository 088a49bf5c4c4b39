// Package optional models a JSON field that can be absent, explicitly null or set.
package optional

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	absent state = iota
	null
	set
)

type Value[T any] struct {
	value T
	state state
}

func Of[T any](v T) Value[T] {
	return Value[T]{value: v, state: set}
}

func Null[T any]() Value[T] {
	return Value[T]{state: null}
}

func (v Value[T]) IsAbsent() bool { return v.state == absent }
func (v Value[T]) IsNull() bool   { return v.state == null }
func (v Value[T]) IsSet() bool    { return v.state == set }

// Get returns the value and whether it was set.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.state == set
}

// UnmarshalJSON is only invoked for keys present in the document,
// so a field that never reaches it stays absent.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.value, v.state = zero, null
		return nil
	}
	if err := json.Unmarshal(data, &v.value); err != nil {
		return err
	}
	v.state = set
	return nil
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if v.state != set {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
