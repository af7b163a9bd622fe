// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"fmt"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
)

// MineableDef is a world object such as a tree or a rock that items can
// gather resources from.
type MineableDef struct {
	EntityDef
	Models                    []def.Ref[*resource.ModelDef]
	Resources                 UnboundedItemsList
	ItemsToSpawnWhenDestroyed ItemsList
	MineableTags              []string
	InitialDurability         int
}

// Expose binds the mineable.
func (m *MineableDef) Expose(n *datafile.Node) {
	m.EntityDef.Expose(n)
	datafile.Seq(n, &m.Models, "modelDefs")
	datafile.VarOr(n, &m.Resources, "resources", UnboundedItemsList{})
	datafile.VarOr(n, &m.ItemsToSpawnWhenDestroyed, "itemsToSpawnWhenDestroyed", ItemsList{})
	datafile.Seq(n, &m.MineableTags, "mineableTags")
	datafile.VarOr(n, &m.InitialDurability, "initialDurability", 100)

	if !n.Loading() {
		return
	}
	if len(m.Models) == 0 {
		n.Fatalf("there must be at least one model")
	}
	if m.InitialDurability < 0 || m.InitialDurability > 100 {
		n.Fatalf("initial durability must be between 0 and 100")
	}
}

// OnLoadedAllDefs resolves the entity fields, models and item lists.
func (m *MineableDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := m.EntityDef.OnLoadedAllDefs(r); err != nil {
		return err
	}
	for i := range m.Models {
		if err := need(r, &m.Models[i], fmt.Sprintf("modelDefs[%d]", i)); err != nil {
			return err
		}
	}
	return first(
		within("resources", m.Resources.resolve(r)),
		within("itemsToSpawnWhenDestroyed", m.ItemsToSpawnWhenDestroyed.resolve(r, m)),
	)
}

// HasTag reports whether the mineable is tagged tag.
func (m *MineableDef) HasTag(tag string) bool {
	for _, t := range m.MineableTags {
		if t == tag {
			return true
		}
	}
	return false
}
