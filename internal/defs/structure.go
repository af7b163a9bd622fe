// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
	"github.com/sandboxgame/sandbox/internal/value"
)

// StructureDef is something players build.
type StructureDef struct {
	EntityDef
	Model                      def.Ref[*resource.ModelDef]
	Category                   StructureCategory
	CanSnapToOtherStructures   bool
	ItemsWhenDeconstructed     ItemsList
	MaxHP                      int
	TurretInfo                 TurretInfo
	RequiredPower              int
	GeneratedPower             int
	HasSearchableItemContainer bool
	Effect                     def.Ref[*EffectDef]
	EffectOffset               value.Vec3[float32]
	IsWorkbench                bool
}

// Expose binds the structure.
func (s *StructureDef) Expose(n *datafile.Node) {
	s.EntityDef.Expose(n)
	datafile.Var(n, &s.Model, "modelDef")
	datafile.Var(n, &s.Category, "category")
	datafile.VarOr(n, &s.CanSnapToOtherStructures, "canSnapToOtherStructures", false)
	datafile.VarOr(n, &s.ItemsWhenDeconstructed, "itemsWhenDeconstructed", ItemsList{})
	datafile.Var(n, &s.MaxHP, "maxHP")
	exposeOptional(n, &s.TurretInfo, "turretInfo")
	datafile.VarOr(n, &s.RequiredPower, "requiredPower", 0)
	datafile.VarOr(n, &s.GeneratedPower, "generatedPower", 0)
	datafile.VarOr(n, &s.HasSearchableItemContainer, "hasSearchableItemContainer", false)
	datafile.VarOr(n, &s.Effect, "effectDef", def.Ref[*EffectDef]{})
	datafile.VarOr(n, &s.EffectOffset, "effectOffset", value.Vec3[float32]{})
	datafile.VarOr(n, &s.IsWorkbench, "isWorkbench", false)

	if !n.Loading() {
		return
	}
	if s.MaxHP <= 0 {
		n.Fatalf("max HP must be greater than 0")
	}
	if s.RequiredPower < 0 || s.GeneratedPower < 0 {
		n.Fatalf("power can't be negative")
	}
}

// OnLoadedAllDefs resolves the entity fields, model, items, turret and
// effect.
func (s *StructureDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := s.EntityDef.OnLoadedAllDefs(r); err != nil {
		return err
	}
	if err := first(
		need(r, &s.Model, "modelDef"),
		within("itemsWhenDeconstructed", s.ItemsWhenDeconstructed.resolve(r, s)),
		want(r, &s.Effect, "effectDef"),
	); err != nil {
		return err
	}
	if s.TurretInfo.IsSet() {
		return within("turretInfo", s.TurretInfo.resolve(r))
	}
	return nil
}

// IsTurret reports whether the structure shoots.
func (s *StructureDef) IsTurret() bool {
	return s.TurretInfo.IsSet()
}

// UsesPower reports whether the structure takes part in a power grid.
func (s *StructureDef) UsesPower() bool {
	return s.RequiredPower > 0 || s.GeneratedPower > 0
}

// TurretInfo describes the rotating head of a turret.
type TurretInfo struct {
	HeadCollisionShape def.Ref[*CachedCollisionShapeDef]
	HeadModel          def.Ref[*resource.ModelDef]
	Weapon             def.Ref[*ItemDef]
	DistanceToHead     float32
	BarrelOffsets      []value.Vec3[float32]

	set bool
}

func (t *TurretInfo) Expose(n *datafile.Node) {
	datafile.Var(n, &t.HeadCollisionShape, "headCachedCollisionShapeDef")
	datafile.Var(n, &t.HeadModel, "headModelDef")
	datafile.Var(n, &t.Weapon, "weaponItemDef")
	datafile.Var(n, &t.DistanceToHead, "distanceToHead")
	datafile.Seq(n, &t.BarrelOffsets, "barrelOffsets")

	if !n.Loading() {
		return
	}
	if len(t.BarrelOffsets) == 0 {
		n.Fatalf("there must be at least one barrel offset")
	}
	t.set = true
}

// IsSet reports whether the structure is a turret.
func (t TurretInfo) IsSet() bool {
	return t.set
}

func (t *TurretInfo) resolve(r *def.Resolver) error {
	return first(
		need(r, &t.HeadCollisionShape, "headCachedCollisionShapeDef"),
		need(r, &t.HeadModel, "headModelDef"),
		need(r, &t.Weapon, "weaponItemDef"),
	)
}
