// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
)

// StructureRecipeDef is how a structure is built.
type StructureRecipeDef struct {
	def.Base
	Structure                      def.Ref[*StructureDef]
	IsUnlockedByDefault            bool
	ConstructingExpForConstructing int
	Price                          Price
}

// Expose binds the recipe.
func (s *StructureRecipeDef) Expose(n *datafile.Node) {
	s.Base.Expose(n)
	datafile.Var(n, &s.Structure, "structureDef")
	datafile.Var(n, &s.IsUnlockedByDefault, "isUnlockedByDefault")
	datafile.Var(n, &s.ConstructingExpForConstructing, "constructingExpForConstructing")
	datafile.Var(n, &s.Price, "price")

	if n.Loading() && s.ConstructingExpForConstructing < 0 {
		n.Fatalf("constructing experience can't be negative")
	}
}

// OnLoadedAllDefs resolves the structure and price.
func (s *StructureRecipeDef) OnLoadedAllDefs(r *def.Resolver) error {
	return first(
		need(r, &s.Structure, "structureDef"),
		within("price", s.Price.resolve(r)),
	)
}

// CraftingRecipeDef is how an item is crafted, optionally at a workbench.
type CraftingRecipeDef struct {
	def.Base
	RequiredWorkbench def.Ref[*StructureDef]
	Price             Price
	CraftedItem       def.Ref[*ItemDef]
	CraftedItemStack  int
	SkillsRequirement SkillsRequirement
}

// Expose binds the recipe.
func (c *CraftingRecipeDef) Expose(n *datafile.Node) {
	c.Base.Expose(n)
	datafile.VarOr(n, &c.RequiredWorkbench, "requiredWorkbenchStructureDef", def.Ref[*StructureDef]{})
	datafile.Var(n, &c.Price, "price")
	datafile.Var(n, &c.CraftedItem, "craftedItemDef")
	datafile.VarOr(n, &c.CraftedItemStack, "craftedItemStack", 1)
	datafile.VarOr(n, &c.SkillsRequirement, "skillsRequirement", SkillsRequirement{})

	if n.Loading() && c.CraftedItemStack < 1 {
		n.Fatalf("crafted item stack must be at least 1")
	}
}

// OnLoadedAllDefs resolves the workbench, price and crafted item, and
// checks the crafted stack fits in one slot.
func (c *CraftingRecipeDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := first(
		want(r, &c.RequiredWorkbench, "requiredWorkbenchStructureDef"),
		within("price", c.Price.resolve(r)),
		need(r, &c.CraftedItem, "craftedItemDef"),
	); err != nil {
		return err
	}
	if wb := c.RequiredWorkbench.Get(); wb != nil && !wb.IsWorkbench {
		return def.Invalid(c, "required workbench %q is not a workbench", wb.Name())
	}
	if maxStack := c.CraftedItem.Get().MaxStack; c.CraftedItemStack > maxStack {
		return def.Invalid(c, "crafted item stack %d exceeds max stack %d of %q",
			c.CraftedItemStack, maxStack, c.CraftedItem.Name)
	}
	return nil
}

// NeedsWorkbench reports whether crafting happens at a workbench.
func (c *CraftingRecipeDef) NeedsWorkbench() bool {
	return !c.RequiredWorkbench.IsEmpty()
}
