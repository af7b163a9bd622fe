// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package value

import (
	"strings"

	"github.com/samber/oops"
)

// Enum maps the names of an int-backed enumeration to its values. Values
// are the indexes of the names, so the zero value is the first name.
type Enum[T ~int] struct {
	names []string
}

// NewEnum returns the enumeration with the given names in value order.
func NewEnum[T ~int](names ...string) Enum[T] {
	return Enum[T]{names: names}
}

// Parse returns the value called text. Unknown names are an error listing
// the accepted ones.
func (e Enum[T]) Parse(text string) (T, error) {
	for i, name := range e.names {
		if name == text {
			return T(i), nil
		}
	}
	return 0, oops.
		Code("ENUM_UNKNOWN").
		With("value", text).
		Errorf("unknown value %q, expected one of %s", text, strings.Join(e.names, ", "))
}

// Name returns the name of v, or "" when v is out of range.
func (e Enum[T]) Name(v T) string {
	if int(v) < 0 || int(v) >= len(e.names) {
		return ""
	}
	return e.names[v]
}

// Names returns every name in value order.
func (e Enum[T]) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Marshal returns the name of v as text.
func (e Enum[T]) Marshal(v T) ([]byte, error) {
	name := e.Name(v)
	if name == "" {
		return nil, oops.Code("ENUM_UNKNOWN").With("value", int(v)).Errorf("value %d out of range", int(v))
	}
	return []byte(name), nil
}

// Unmarshal parses text into v.
func (e Enum[T]) Unmarshal(text []byte, v *T) error {
	parsed, err := e.Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
