// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"errors"

	"github.com/samber/oops"

	"github.com/sandboxgame/sandbox/internal/def"
)

// Cache holds the records the game reaches for constantly, looked up once
// after a load.
type Cache struct {
	OnHitGenericEffect *EffectDef
	NeutralFaction     *FactionDef
	PlayersFaction     *FactionDef

	FactionRelations []*FactionRelationDef
	Upgrades         []*UpgradeDef
	CraftingRecipes  []*CraftingRecipeDef
	StructureRecipes []*StructureRecipeDef
}

// NewCache fills a cache from a resolved database. Every missing
// well-known record is reported.
func NewCache(db *def.Database) (*Cache, error) {
	if !db.Ready() {
		return nil, oops.Code("DB_NOT_READY").With("phase", db.Phase().String()).Wrap(def.ErrNotReady)
	}

	c := &Cache{
		FactionRelations: def.All[*FactionRelationDef](db),
		Upgrades:         def.All[*UpgradeDef](db),
		CraftingRecipes:  def.All[*CraftingRecipeDef](db),
		StructureRecipes: def.All[*StructureRecipeDef](db),
	}

	var errs []error
	var err error
	if c.OnHitGenericEffect, err = def.Get[*EffectDef](db, OnHitGenericEffect); err != nil {
		errs = append(errs, err)
	}
	if c.NeutralFaction, err = def.Get[*FactionDef](db, NeutralFaction); err != nil {
		errs = append(errs, err)
	}
	if c.PlayersFaction, err = def.Get[*FactionDef](db, PlayersFaction); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Relation returns how a treats b.
func (c *Cache) Relation(a, b *FactionDef) Relation {
	return a.RelationTo(b, c.FactionRelations)
}

// UnlockedByDefault returns the upgrades every new player starts with.
func (c *Cache) UnlockedByDefault() []*UpgradeDef {
	var out []*UpgradeDef
	for _, u := range c.Upgrades {
		if u.IsUnlockedByDefault {
			out = append(out, u)
		}
	}
	return out
}
