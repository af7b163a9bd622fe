// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
)

// part is a nested record that may be absent from its parent.
type part interface {
	datafile.Saveable
	IsSet() bool
}

// exposeOptional binds a part that may be absent. An absent part loads as
// the zero value and is not written back.
func exposeOptional[T any, PT interface {
	*T
	part
}](n *datafile.Node, field PT, key string) {
	if n.Saving() && !field.IsSet() {
		return
	}
	var zero T
	datafile.VarOr(n, (*T)(field), key, zero)
}

// ItemStack is an item and how many of it share one inventory slot.
type ItemStack struct {
	Def   def.Ref[*ItemDef]
	Stack int
}

func (s *ItemStack) Expose(n *datafile.Node) {
	datafile.Var(n, &s.Def, "def")
	datafile.VarOr(n, &s.Stack, "stack", 1)

	if n.Loading() && s.Stack < 1 {
		n.Fatalf("stack must be at least 1")
	}
}

// ItemsList is a list of item stacks, each within its item's max stack.
type ItemsList struct {
	Items []ItemStack
}

func (l *ItemsList) Expose(n *datafile.Node) {
	datafile.Seq(n, &l.Items, "items")
}

// IsEmpty reports whether the list holds no items.
func (l ItemsList) IsEmpty() bool {
	return len(l.Items) == 0
}

func (l *ItemsList) resolve(r *def.Resolver, owner def.Def) error {
	for i := range l.Items {
		s := &l.Items[i]
		if err := need(r, &s.Def, "def"); err != nil {
			return err
		}
		if s.Stack > s.Def.Get().MaxStack {
			return def.Invalid(owner, "stack of %d %s exceeds its max stack %d",
				s.Stack, s.Def.Name, s.Def.Get().MaxStack)
		}
	}
	return nil
}

// ItemCount is an item and a count that may span several stacks.
type ItemCount struct {
	Def   def.Ref[*ItemDef]
	Count int
}

func (c *ItemCount) Expose(n *datafile.Node) {
	datafile.Var(n, &c.Def, "def")
	datafile.VarOr(n, &c.Count, "count", 1)

	if n.Loading() && c.Count < 1 {
		n.Fatalf("count must be at least 1")
	}
}

// UnboundedItemsList is a list of item counts with no stack limit.
type UnboundedItemsList struct {
	Items []ItemCount
}

func (l *UnboundedItemsList) Expose(n *datafile.Node) {
	datafile.Seq(n, &l.Items, "items")
}

func (l *UnboundedItemsList) resolve(r *def.Resolver) error {
	for i := range l.Items {
		if err := need(r, &l.Items[i].Def, "def"); err != nil {
			return err
		}
	}
	return nil
}

// Price is what something costs, in items.
type Price struct {
	Items []ItemCount
}

func (p *Price) Expose(n *datafile.Node) {
	datafile.Seq(n, &p.Items, "items")
}

// IsFree reports whether the price asks for nothing.
func (p Price) IsFree() bool {
	return len(p.Items) == 0
}

func (p *Price) resolve(r *def.Resolver) error {
	for i := range p.Items {
		if err := need(r, &p.Items[i].Def, "def"); err != nil {
			return err
		}
	}
	return nil
}

// SkillsRequirement is the minimum skill levels needed for an action.
type SkillsRequirement struct {
	Level             int
	ConstructingLevel int
	ShootingLevel     int
	CraftingLevel     int
	ElectronicsLevel  int
}

func (s *SkillsRequirement) Expose(n *datafile.Node) {
	datafile.VarOr(n, &s.Level, "level", 0)
	datafile.VarOr(n, &s.ConstructingLevel, "constructingLevel", 0)
	datafile.VarOr(n, &s.ShootingLevel, "shootingLevel", 0)
	datafile.VarOr(n, &s.CraftingLevel, "craftingLevel", 0)
	datafile.VarOr(n, &s.ElectronicsLevel, "electronicsLevel", 0)

	if n.Loading() && min(s.Level, s.ConstructingLevel, s.ShootingLevel, s.CraftingLevel, s.ElectronicsLevel) < 0 {
		n.Fatalf("skill levels can't be negative")
	}
}

// IsNone reports whether nothing is required.
func (s SkillsRequirement) IsNone() bool {
	return s == SkillsRequirement{}
}

// CharacterStatsChange modifies a character's stats while an item is
// equipped or an upgrade is unlocked.
type CharacterStatsChange struct {
	MoveSpeedMultiplier                 float32
	FallDamageMultiplier                float32
	MeleeDamageMultiplier               float32
	RangedDamageMultiplier              float32
	MeleeDamageWhenDefendingMultiplier  float32
	RangedDamageWhenDefendingMultiplier float32
	RecoilMultiplier                    float32
	MinProjectilesSpreadAngleMultiplier float32
	JumpVelocityMultiplier              float32
	MaxHPDiff                           int
	HPRegenerationPer5SecDiff           int
}

// NoStatsChange leaves every stat as it is.
var NoStatsChange = CharacterStatsChange{
	MoveSpeedMultiplier:                 1,
	FallDamageMultiplier:                1,
	MeleeDamageMultiplier:               1,
	RangedDamageMultiplier:              1,
	MeleeDamageWhenDefendingMultiplier:  1,
	RangedDamageWhenDefendingMultiplier: 1,
	RecoilMultiplier:                    1,
	MinProjectilesSpreadAngleMultiplier: 1,
	JumpVelocityMultiplier:              1,
}

func (c *CharacterStatsChange) Expose(n *datafile.Node) {
	multipliers := []struct {
		field *float32
		key   string
	}{
		{&c.MoveSpeedMultiplier, "moveSpeedMultiplier"},
		{&c.FallDamageMultiplier, "fallDamageMultiplier"},
		{&c.MeleeDamageMultiplier, "meleeDamageMultiplier"},
		{&c.RangedDamageMultiplier, "rangedDamageMultiplier"},
		{&c.MeleeDamageWhenDefendingMultiplier, "meleeDamageWhenDefendingMultiplier"},
		{&c.RangedDamageWhenDefendingMultiplier, "rangedDamageWhenDefendingMultiplier"},
		{&c.RecoilMultiplier, "recoilMultiplier"},
		{&c.MinProjectilesSpreadAngleMultiplier, "minProjectilesSpreadAngleMultiplier"},
		{&c.JumpVelocityMultiplier, "jumpVelocityMultiplier"},
	}
	for _, m := range multipliers {
		datafile.VarOr(n, m.field, m.key, 1)
		if n.Loading() && *m.field < 0 {
			n.Fatalf("%s can't be negative", m.key)
		}
	}
	datafile.VarOr(n, &c.MaxHPDiff, "maxHPDiff", 0)
	datafile.VarOr(n, &c.HPRegenerationPer5SecDiff, "HPRegenerationPer5SecDiff", 0)

	if n.Loading() && c.HPRegenerationPer5SecDiff < 0 {
		n.Fatalf("HP regeneration diff can't be negative")
	}
}

// IsNone reports whether the change leaves every stat as it is.
func (c CharacterStatsChange) IsNone() bool {
	return c == NoStatsChange
}
