// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
)

// FactionDef is a side characters and structures belong to.
type FactionDef struct {
	def.Base
}

// RelationTo returns how f treats other. A faction is always good to
// itself; otherwise the first relation naming both factions, in either
// order, wins, and factions without one are neutral.
func (f *FactionDef) RelationTo(other *FactionDef, relations []*FactionRelationDef) Relation {
	if f == other {
		return RelationGood
	}
	for _, rel := range relations {
		if rel.Involves(f, other) {
			return rel.Relation
		}
	}
	return RelationNeutral
}

// FactionRelationDef sets the relation between two factions.
type FactionRelationDef struct {
	def.Base
	FirstFaction  def.Ref[*FactionDef]
	SecondFaction def.Ref[*FactionDef]
	Relation      Relation
}

// Expose binds the relation.
func (f *FactionRelationDef) Expose(n *datafile.Node) {
	f.Base.Expose(n)
	datafile.Var(n, &f.FirstFaction, "firstFactionDef")
	datafile.Var(n, &f.SecondFaction, "secondFactionDef")
	datafile.Var(n, &f.Relation, "relation")
}

// OnLoadedAllDefs resolves both factions, which must differ.
func (f *FactionRelationDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := first(
		need(r, &f.FirstFaction, "firstFactionDef"),
		need(r, &f.SecondFaction, "secondFactionDef"),
	); err != nil {
		return err
	}
	if f.FirstFaction.Get() == f.SecondFaction.Get() {
		return def.Invalid(f, "relation of %q with itself", f.FirstFaction.Name)
	}
	return nil
}

// Involves reports whether the relation is between a and b.
func (f *FactionRelationDef) Involves(a, b *FactionDef) bool {
	x, y := f.FirstFaction.Get(), f.SecondFaction.Get()
	return (x == a && y == b) || (x == b && y == a)
}
