// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package defs defines the game records built on top of the resource
// records: items, structures, characters, world parts and the recipes and
// upgrades that tie them together.
package defs

import (
	"github.com/samber/oops"

	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
)

// Kind names, which are also the data file root keys and the directories
// the records live in.
const (
	EffectDefs               = "EffectDefs"
	FactionDefs              = "FactionDefs"
	FactionRelationDefs      = "FactionRelationDefs"
	CachedCollisionShapeDefs = "CachedCollisionShapeDefs"
	AnimationFramesSetDefs   = "AnimationFramesSetDefs"
	ItemDefs                 = "ItemDefs"
	MineableDefs             = "MineableDefs"
	StructureDefs            = "StructureDefs"
	CharacterDefs            = "CharacterDefs"
	WorldPartDefs            = "WorldPartDefs"
	StructureRecipeDefs      = "StructureRecipeDefs"
	UpgradeDefs              = "UpgradeDefs"
	CraftingRecipeDefs       = "CraftingRecipeDefs"
)

// Well-known record names the game looks up directly.
const (
	OnHitGenericEffect = "Effect_OnHitGeneric"
	NeutralFaction     = "Faction_Neutral"
	PlayersFaction     = "Faction_Players"
)

// Kinds returns every record kind in load order: resource kinds first,
// then game kinds.
func Kinds() []def.Kind {
	return append(resource.Kinds(),
		def.KindOf[EffectDef](EffectDefs),
		def.KindOf[FactionDef](FactionDefs),
		def.KindOf[FactionRelationDef](FactionRelationDefs),
		def.KindOf[CachedCollisionShapeDef](CachedCollisionShapeDefs),
		def.KindOf[AnimationFramesSetDef](AnimationFramesSetDefs),
		def.KindOf[ItemDef](ItemDefs),
		def.KindOf[MineableDef](MineableDefs),
		def.KindOf[StructureDef](StructureDefs),
		def.KindOf[CharacterDef](CharacterDefs),
		def.KindOf[WorldPartDef](WorldPartDefs),
		def.KindOf[StructureRecipeDef](StructureRecipeDefs),
		def.KindOf[UpgradeDef](UpgradeDefs),
		def.KindOf[CraftingRecipeDef](CraftingRecipeDefs),
	)
}

// need resolves a required reference and names the field on failure.
func need[T def.Def](r *def.Resolver, ref *def.Ref[T], field string) error {
	return within(field, ref.Resolve(r))
}

// want resolves an optional reference and names the field on failure.
func want[T def.Def](r *def.Resolver, ref *def.Ref[T], field string) error {
	return within(field, ref.ResolveOptional(r))
}

func within(field string, err error) error {
	if err == nil {
		return nil
	}
	return oops.With("field", field).Wrapf(err, "%s", field)
}

// first returns the first non-nil error.
func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
