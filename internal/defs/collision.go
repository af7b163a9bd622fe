// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// CachedCollisionShapeDef is a collision shape shared by every entity that
// uses it.
type CachedCollisionShapeDef struct {
	def.Base
	Type          ShapeType
	Height        float32
	Radius        float32
	Size          value.Vec3[float32]
	PlaneNormal   value.Vec3[float32]
	PlaneConstant float32
	MeshPath      string
	PosOffset     value.Vec3[float32]
}

// Expose binds the shape. Mesh shapes need a mesh path.
func (c *CachedCollisionShapeDef) Expose(n *datafile.Node) {
	c.Base.Expose(n)
	datafile.Var(n, &c.Type, "type")
	datafile.VarOr(n, &c.Height, "height", 0)
	datafile.VarOr(n, &c.Radius, "radius", 0)
	datafile.VarOr(n, &c.Size, "size", value.Vec3[float32]{})
	datafile.VarOr(n, &c.PlaneNormal, "planeNormal", value.Vec3[float32]{Y: 1})
	datafile.VarOr(n, &c.PlaneConstant, "planeConstant", 0)
	datafile.VarOr(n, &c.MeshPath, "meshPath", "")
	datafile.VarOr(n, &c.PosOffset, "posOffset", value.Vec3[float32]{})

	if !n.Loading() {
		return
	}
	if c.Height < 0 || c.Radius < 0 {
		n.Fatalf("height and radius can't be negative")
	}
	if c.Size.X < 0 || c.Size.Y < 0 || c.Size.Z < 0 {
		n.Fatalf("size can't be negative")
	}
	if c.Type.IsMesh() && c.MeshPath == "" {
		n.Fatalf("%s shape needs a mesh path", c.Type)
	}
	if c.Type == ShapePlane && c.PlaneNormal.IsZero() {
		n.Fatalf("plane normal can't be zero")
	}
}

// ResourcePaths returns the mesh file of mesh shapes.
func (c *CachedCollisionShapeDef) ResourcePaths() []string {
	if !c.Type.IsMesh() {
		return nil
	}
	return []string{c.MeshPath}
}
