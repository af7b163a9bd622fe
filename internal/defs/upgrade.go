// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"fmt"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// RequiredUpgrade links an upgrade tile to the one that must be unlocked
// first, and says which sides of the two tiles touch.
type RequiredUpgrade struct {
	Upgrade def.Ref[*UpgradeDef]
	From    Direction
	To      Direction

	set bool
}

func (u *RequiredUpgrade) Expose(n *datafile.Node) {
	datafile.Var(n, &u.Upgrade, "upgradeDef")
	datafile.Var(n, &u.From, "from")
	datafile.Var(n, &u.To, "to")

	if n.Loading() {
		u.set = true
	}
}

// IsSet reports whether another upgrade is required.
func (u RequiredUpgrade) IsSet() bool {
	return u.set
}

// UnlockStructures lists the structure recipes an upgrade unlocks.
type UnlockStructures struct {
	Recipes []def.Ref[*StructureRecipeDef]
}

func (u *UnlockStructures) Expose(n *datafile.Node) {
	datafile.Seq(n, &u.Recipes, "recipeDefs")
}

// UpgradeDef is one tile of the upgrade tree.
type UpgradeDef struct {
	def.Base
	Color                 UpgradeColor
	Position              value.Vec2[int]
	IsUnlockedByDefault   bool
	RequiredUpgradePoints int
	RequiredUpgrade       RequiredUpgrade
	StatsChange           CharacterStatsChange
	UnlockStructures      UnlockStructures
	Icon                  string
	UnlockedIcon          string
}

// Expose binds the upgrade.
func (u *UpgradeDef) Expose(n *datafile.Node) {
	u.Base.Expose(n)
	datafile.Var(n, &u.Color, "color")
	datafile.Var(n, &u.Position, "position")
	datafile.VarOr(n, &u.IsUnlockedByDefault, "isUnlockedByDefault", false)
	datafile.VarOr(n, &u.RequiredUpgradePoints, "requiredUpgradePoints", 0)
	exposeOptional(n, &u.RequiredUpgrade, "requiredUpgrade")
	datafile.VarOr(n, &u.StatsChange, "characterStatsChange", NoStatsChange)
	datafile.VarOr(n, &u.UnlockStructures, "unlockStructures", UnlockStructures{})
	datafile.Var(n, &u.Icon, "icon")
	datafile.Var(n, &u.UnlockedIcon, "unlockedIcon")

	if n.Loading() && u.RequiredUpgradePoints < 0 {
		n.Fatalf("required upgrade points can't be negative")
	}
}

// OnLoadedAllDefs resolves the required upgrade and unlocked recipes.
func (u *UpgradeDef) OnLoadedAllDefs(r *def.Resolver) error {
	if u.RequiredUpgrade.IsSet() {
		if err := need(r, &u.RequiredUpgrade.Upgrade, "requiredUpgrade.upgradeDef"); err != nil {
			return err
		}
		if u.RequiredUpgrade.Upgrade.Get() == u {
			return def.Invalid(u, "requires itself")
		}
	}
	for i := range u.UnlockStructures.Recipes {
		if err := need(r, &u.UnlockStructures.Recipes[i], fmt.Sprintf("unlockStructures.recipeDefs[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// ResourcePaths returns both icons.
func (u *UpgradeDef) ResourcePaths() []string {
	return []string{u.Icon, u.UnlockedIcon}
}
