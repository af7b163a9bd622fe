// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

import "github.com/samber/oops"

// Ref is a reference to another record. Only the name is written to data
// files; the handle is filled in by Resolve during ResolveAll.
//
// An empty name means "no reference" for optional fields.
type Ref[T Def] struct {
	Name string

	target   T
	resolved bool
}

// Named returns an unresolved reference to name.
func Named[T Def](name string) Ref[T] {
	return Ref[T]{Name: name}
}

// RefTo returns a resolved reference to d.
func RefTo[T Def](d T) Ref[T] {
	return Ref[T]{Name: d.Name(), target: d, resolved: true}
}

// MarshalText writes the referenced name.
func (r Ref[T]) MarshalText() ([]byte, error) {
	return []byte(r.Name), nil
}

// UnmarshalText reads the referenced name and drops any resolved handle.
func (r *Ref[T]) UnmarshalText(text []byte) error {
	var zero T
	r.Name = string(text)
	r.target = zero
	r.resolved = false
	return nil
}

// Resolve looks the name up as a T. An empty name is an error.
func (r *Ref[T]) Resolve(res *Resolver) error {
	if r.Name == "" {
		return oops.Code("REF_UNRESOLVED").Wrap(ErrEmptyRef)
	}
	t, err := Lookup[T](res, r.Name)
	if err != nil {
		return err
	}
	r.target = t
	r.resolved = true
	return nil
}

// ResolveOptional is Resolve for optional references: an empty name
// clears the handle and succeeds. A name that does not resolve is still
// an error.
func (r *Ref[T]) ResolveOptional(res *Resolver) error {
	if r.Name == "" {
		var zero T
		r.target = zero
		r.resolved = false
		return nil
	}
	return r.Resolve(res)
}

// Get returns the resolved handle, or the zero T when unresolved.
func (r Ref[T]) Get() T {
	return r.target
}

// IsEmpty reports whether the reference names nothing.
func (r Ref[T]) IsEmpty() bool {
	return r.Name == ""
}

// IsResolved reports whether Get returns a record.
func (r Ref[T]) IsResolved() bool {
	return r.resolved
}

func (r Ref[T]) String() string {
	return r.Name
}
