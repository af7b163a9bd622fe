// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package value holds the small composite value types used by data files.
// Each one binds itself through a datafile.Node as a nested map.
package value

import (
	"fmt"

	"github.com/sandboxgame/sandbox/internal/datafile"
)

// Number is any integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Vec2 is a two component vector, written as {x, y}.
type Vec2[T Number] struct {
	X, Y T
}

// Expose binds the vector components.
func (v *Vec2[T]) Expose(n *datafile.Node) {
	datafile.Var(n, &v.X, "x")
	datafile.Var(n, &v.Y, "y")
}

// IsNegative reports whether any component is below zero.
func (v Vec2[T]) IsNegative() bool {
	return v.X < 0 || v.Y < 0
}

// Scale returns the vector multiplied by f.
func (v Vec2[T]) Scale(f T) Vec2[T] {
	return Vec2[T]{X: v.X * f, Y: v.Y * f}
}

func (v Vec2[T]) String() string {
	return fmt.Sprintf("(%v, %v)", v.X, v.Y)
}

// Vec3 is a three component vector, written as {x, y, z}.
type Vec3[T Number] struct {
	X, Y, Z T
}

// Expose binds the vector components.
func (v *Vec3[T]) Expose(n *datafile.Node) {
	datafile.Var(n, &v.X, "x")
	datafile.Var(n, &v.Y, "y")
	datafile.Var(n, &v.Z, "z")
}

// IsZero reports whether every component is zero.
func (v Vec3[T]) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Scale returns the vector multiplied by f.
func (v Vec3[T]) Scale(f T) Vec3[T] {
	return Vec3[T]{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

func (v Vec3[T]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", v.X, v.Y, v.Z)
}

// Range is the closed interval [From, To], written as {from, to}.
type Range[T Number] struct {
	From, To T
}

// EmptyRange returns the range a zero record starts with: {0, -1}.
// Unsigned types have no such value and get {1, 0}.
func EmptyRange[T Number]() Range[T] {
	var zero T
	if zero-1 > zero {
		return Range[T]{From: 1, To: 0}
	}
	return Range[T]{From: 0, To: zero - 1}
}

// Expose binds the range bounds.
func (r *Range[T]) Expose(n *datafile.Node) {
	datafile.Var(n, &r.From, "from")
	datafile.Var(n, &r.To, "to")
}

// IsEmpty reports whether From is greater than To.
func (r Range[T]) IsEmpty() bool {
	return r.From > r.To
}

// Contains reports whether v lies inside the range.
func (r Range[T]) Contains(v T) bool {
	return v >= r.From && v <= r.To
}

// Length returns To - From.
func (r Range[T]) Length() T {
	return r.To - r.From
}

// IsNegative reports whether either bound is below zero.
func (r Range[T]) IsNegative() bool {
	return r.From < 0 || r.To < 0
}

// Scale returns the range with both bounds multiplied by f.
func (r Range[T]) Scale(f T) Range[T] {
	return Range[T]{From: r.From * f, To: r.To * f}
}

func (r Range[T]) String() string {
	return fmt.Sprintf("[%v, %v]", r.From, r.To)
}

// Color is an RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
)

// Expose binds the color. Alpha defaults to fully opaque.
func (c *Color) Expose(n *datafile.Node) {
	datafile.Var(n, &c.R, "r")
	datafile.Var(n, &c.G, "g")
	datafile.Var(n, &c.B, "b")
	datafile.VarOr(n, &c.A, "a", 1)
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}
