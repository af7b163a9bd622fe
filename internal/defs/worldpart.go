// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"fmt"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
	"github.com/sandboxgame/sandbox/internal/value"
)

// RandomMineable is a mineable scattered over a world part.
type RandomMineable struct {
	Def     def.Ref[*MineableDef]
	Density float32
}

func (m *RandomMineable) Expose(n *datafile.Node) {
	datafile.Var(n, &m.Def, "def")
	datafile.VarOr(n, &m.Density, "density", 1)

	if n.Loading() && m.Density < 0 {
		n.Fatalf("density can't be negative")
	}
}

// Mob is a character that spawns on a world part.
type Mob struct {
	Character       def.Ref[*CharacterDef]
	Faction         def.Ref[*FactionDef]
	InHandsItem     def.Ref[*ItemDef]
	SpawnRateWeight float32
}

func (m *Mob) Expose(n *datafile.Node) {
	datafile.Var(n, &m.Character, "characterDef")
	datafile.Var(n, &m.Faction, "factionDef")
	datafile.VarOr(n, &m.InHandsItem, "inHandsItemDef", def.Ref[*ItemDef]{})
	datafile.VarOr(n, &m.SpawnRateWeight, "spawnRateWeight", 1)

	if n.Loading() && m.SpawnRateWeight < 0 {
		n.Fatalf("spawn rate weight can't be negative")
	}
}

func (m *Mob) resolve(r *def.Resolver) error {
	return first(
		need(r, &m.Character, "characterDef"),
		need(r, &m.Faction, "factionDef"),
		want(r, &m.InHandsItem, "inHandsItemDef"),
	)
}

// PrespawnedEntityParams are extra settings for a prespawned entity.
type PrespawnedEntityParams struct {
	SearchableItemContainerItems ItemsList
}

func (p *PrespawnedEntityParams) Expose(n *datafile.Node) {
	datafile.VarOr(n, &p.SearchableItemContainerItems, "searchableItemContainerItems", ItemsList{})
}

// PrespawnedEntity is an entity placed on a world part when it is
// generated.
type PrespawnedEntity struct {
	Def                     def.Ref[Entity]
	Faction                 def.Ref[*FactionDef]
	Position                value.Vec3[float32]
	Rotation                value.Vec3[float32]
	AdjustPositionToTerrain bool
	Params                  PrespawnedEntityParams
}

func (p *PrespawnedEntity) Expose(n *datafile.Node) {
	datafile.Var(n, &p.Def, "def")
	datafile.VarOr(n, &p.Faction, "factionDef", def.Ref[*FactionDef]{})
	datafile.Var(n, &p.Position, "position")
	datafile.VarOr(n, &p.Rotation, "rotation", value.Vec3[float32]{})
	datafile.VarOr(n, &p.AdjustPositionToTerrain, "adjustPositionToTerrain", false)
	datafile.VarOr(n, &p.Params, "params", PrespawnedEntityParams{})
}

func (p *PrespawnedEntity) resolve(r *def.Resolver, owner def.Def) error {
	return first(
		need(r, &p.Def, "def"),
		want(r, &p.Faction, "factionDef"),
		within("params.searchableItemContainerItems", p.Params.SearchableItemContainerItems.resolve(r, owner)),
	)
}

// WorldPartDef is one region of the world: its terrain, step sounds and
// what lives on it.
type WorldPartDef struct {
	def.Base
	Terrain                   def.Ref[*resource.TerrainDef]
	Ground1StepSound          def.Ref[*resource.SoundDef]
	Ground2StepSound          def.Ref[*resource.SoundDef]
	Ground3StepSound          def.Ref[*resource.SoundDef]
	SlopeStepSound            def.Ref[*resource.SoundDef]
	IsPlayerStartingWorldPart bool
	PlayerStartingPosition    value.Vec3[float32]
	RandomMineablesCount      int
	RandomMineables           []RandomMineable
	Mobs                      []Mob
	PrespawnedEntities        []PrespawnedEntity
}

// Expose binds the world part.
func (w *WorldPartDef) Expose(n *datafile.Node) {
	w.Base.Expose(n)
	datafile.Var(n, &w.Terrain, "terrainDef")
	datafile.Var(n, &w.Ground1StepSound, "ground1StepSoundDef")
	datafile.Var(n, &w.Ground2StepSound, "ground2StepSoundDef")
	datafile.Var(n, &w.Ground3StepSound, "ground3StepSoundDef")
	datafile.Var(n, &w.SlopeStepSound, "slopeStepSoundDef")
	datafile.VarOr(n, &w.IsPlayerStartingWorldPart, "isPlayerStartingWorldPart", false)
	datafile.VarOr(n, &w.PlayerStartingPosition, "playerStartingPosition", value.Vec3[float32]{})
	datafile.Var(n, &w.RandomMineablesCount, "randomMineablesCount")
	datafile.Seq(n, &w.RandomMineables, "randomMineables")
	datafile.Seq(n, &w.Mobs, "mobs")
	datafile.Seq(n, &w.PrespawnedEntities, "prespawnedEntities")

	if n.Loading() && w.RandomMineablesCount < 0 {
		n.Fatalf("random mineables count can't be negative")
	}
}

// OnLoadedAllDefs resolves the terrain, sounds, spawns and prespawned
// entities. At most one world part may be the player starting one.
func (w *WorldPartDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := first(
		need(r, &w.Terrain, "terrainDef"),
		need(r, &w.Ground1StepSound, "ground1StepSoundDef"),
		need(r, &w.Ground2StepSound, "ground2StepSoundDef"),
		need(r, &w.Ground3StepSound, "ground3StepSoundDef"),
		need(r, &w.SlopeStepSound, "slopeStepSoundDef"),
	); err != nil {
		return err
	}
	for i := range w.RandomMineables {
		if err := need(r, &w.RandomMineables[i].Def, fmt.Sprintf("randomMineables[%d].def", i)); err != nil {
			return err
		}
	}
	for i := range w.Mobs {
		if err := within(fmt.Sprintf("mobs[%d]", i), w.Mobs[i].resolve(r)); err != nil {
			return err
		}
	}
	for i := range w.PrespawnedEntities {
		if err := within(fmt.Sprintf("prespawnedEntities[%d]", i), w.PrespawnedEntities[i].resolve(r, w)); err != nil {
			return err
		}
	}

	if !w.IsPlayerStartingWorldPart {
		return nil
	}
	for _, other := range def.LookupAll[*WorldPartDef](r) {
		if other != w && other.IsPlayerStartingWorldPart {
			return def.Invalid(w, "%q is also a player starting world part", other.Name())
		}
	}
	return nil
}

// TotalMobsSpawnRateWeight sums the spawn weights of every mob.
func (w *WorldPartDef) TotalMobsSpawnRateWeight() float32 {
	var total float32
	for _, m := range w.Mobs {
		total += m.SpawnRateWeight
	}
	return total
}
