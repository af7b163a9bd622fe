// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package resource defines the records that describe engine assets:
// models, terrain, particles, sounds and lights.
package resource

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
)

// Resource is a record that names asset files, relative to a mod root.
type Resource interface {
	def.Def
	ResourcePaths() []string
}

// Kind names, which are also the data file root keys and the directories
// the records live in.
const (
	ModelDefs               = "ModelDefs"
	TerrainDefs             = "TerrainDefs"
	ParticleSpriteDefs      = "ParticleSpriteDefs"
	ParticlesGroupModelDefs = "ParticlesGroupModelDefs"
	ParticlesGroupDefs      = "ParticlesGroupDefs"
	SoundDefs               = "SoundDefs"
	LightDefs               = "LightDefs"
)

// Kinds returns every resource kind in load order.
func Kinds() []def.Kind {
	return []def.Kind{
		def.KindOf[ModelDef](ModelDefs),
		def.KindOf[TerrainDef](TerrainDefs),
		def.KindOf[ParticleSpriteDef](ParticleSpriteDefs),
		def.KindOf[ParticlesGroupModelDef](ParticlesGroupModelDefs),
		def.KindOf[ParticlesGroupDef](ParticlesGroupDefs),
		def.KindOf[SoundDef](SoundDefs),
		def.KindOf[LightDef](LightDefs),
	}
}

// InheritScaled makes a record a scaled copy of another record of the same
// kind. The copy happens while references are resolved.
type InheritScaled struct {
	Def   string
	Scale float32

	set bool
}

// Expose binds the source name and scale.
func (i *InheritScaled) Expose(n *datafile.Node) {
	datafile.Var(n, &i.Def, "def")
	datafile.Var(n, &i.Scale, "scale")

	if n.Loading() {
		if i.Scale < 0 {
			n.Fatalf("scale can't be negative")
		}
		i.set = true
	}
}

// IsSet reports whether the record inherits.
func (i InheritScaled) IsSet() bool {
	return i.set
}

// exposeInherit binds an optional inheritScaled entry, writing it only when
// it is set.
func exposeInherit(n *datafile.Node, i *InheritScaled) {
	if n.Saving() && !i.IsSet() {
		return
	}
	datafile.VarOr(n, i, "inheritScaled", InheritScaled{})
}

// inheritFrom looks up the record self inherits from. A source that
// inherits itself is rejected, so the result never depends on the order
// records are resolved in.
func inheritFrom[T interface {
	def.Def
	inherit() InheritScaled
}](r *def.Resolver, self T) (T, error) {
	src, err := def.Lookup[T](r, self.inherit().Def)
	if err != nil {
		return src, err
	}
	if src.inherit().IsSet() {
		return src, def.Invalid(self, "inherits from %q, which inherits from %q", src.Name(), src.inherit().Def)
	}
	return src, nil
}
