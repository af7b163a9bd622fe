// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"math"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
)

// Entity is any record that can be spawned into the world.
type Entity interface {
	def.Def
	Entity() *EntityDef
}

// EntityDef holds the fields every spawnable record shares. Items,
// mineables, structures and characters embed it.
type EntityDef struct {
	def.Base
	CollisionShape def.Ref[*CachedCollisionShapeDef]
	StepSound      def.Ref[*resource.SoundDef]
	OnHitEffect    def.Ref[*EffectDef]
	Mass           float32

	onHit *EffectDef
}

// Expose binds the shared entity fields. Embedding records call it first.
func (e *EntityDef) Expose(n *datafile.Node) {
	e.Base.Expose(n)
	datafile.Var(n, &e.CollisionShape, "cachedCollisionShapeDef")
	datafile.VarOr(n, &e.StepSound, "stepSoundDef", def.Ref[*resource.SoundDef]{})
	datafile.VarOr(n, &e.OnHitEffect, "onHitEffectDef", def.Ref[*EffectDef]{})
	datafile.VarOr(n, &e.Mass, "mass", 0)

	if n.Loading() && e.Mass < 0 {
		n.Fatalf("mass can't be negative")
	}
}

// OnLoadedAllDefs resolves the shape, step sound and hit effect. Entities
// without a hit effect use OnHitGenericEffect.
func (e *EntityDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := first(
		need(r, &e.CollisionShape, "cachedCollisionShapeDef"),
		want(r, &e.StepSound, "stepSoundDef"),
		want(r, &e.OnHitEffect, "onHitEffectDef"),
	); err != nil {
		return err
	}
	if !e.OnHitEffect.IsEmpty() {
		e.onHit = e.OnHitEffect.Get()
		return nil
	}
	fallback, err := def.Lookup[*EffectDef](r, OnHitGenericEffect)
	if err != nil {
		return within("onHitEffectDef", err)
	}
	e.onHit = fallback
	return nil
}

// Entity returns the shared entity fields.
func (e *EntityDef) Entity() *EntityDef {
	return e
}

// OnHitEffectDef returns the effect played when the entity is hit.
func (e *EntityDef) OnHitEffectDef() *EffectDef {
	return e.onHit
}

// IsStatic reports whether the entity has no mass.
func (e *EntityDef) IsStatic() bool {
	return math.Abs(float64(e.Mass)) < 1e-6
}
