// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package resource

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// LightDef is a point or directional light.
type LightDef struct {
	def.Base
	IsDirectional       bool
	InitialColor        value.Color
	Radius              float32
	MaxRadiusDistortion float32
}

func (l *LightDef) Expose(n *datafile.Node) {
	l.Base.Expose(n)
	datafile.VarOr(n, &l.IsDirectional, "isDirectional", false)
	datafile.Var(n, &l.InitialColor, "initialColor")
	datafile.VarOr(n, &l.Radius, "radius", 1)
	datafile.VarOr(n, &l.MaxRadiusDistortion, "maxRadiusDistortion", 0)

	if n.Loading() {
		if l.Radius <= 0 {
			n.Fatalf("radius must be positive")
		}
		if l.MaxRadiusDistortion < 0 {
			n.Fatalf("max radius distortion can't be negative")
		}
	}
}
