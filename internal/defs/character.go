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

// OnKilledEffect is an effect played on a character's body after death.
type OnKilledEffect struct {
	Effect          def.Ref[*EffectDef]
	DisposeBodyTime float32
}

func (o *OnKilledEffect) Expose(n *datafile.Node) {
	datafile.Var(n, &o.Effect, "effectDef")
	datafile.VarOr(n, &o.DisposeBodyTime, "disposeBodyTime", 0)

	if n.Loading() && o.DisposeBodyTime < 0 {
		n.Fatalf("dispose body time can't be negative")
	}
}

// CharacterDef is a player, animal or monster.
type CharacterDef struct {
	EntityDef
	Model                      def.Ref[*resource.ModelDef]
	AnimationFramesSet         def.Ref[*AnimationFramesSetDef]
	OnSpawnedSound             def.Ref[*resource.SoundDef]
	ItemUseSourcePosOffsets    []value.Vec3[float32]
	CanFly                     bool
	MaxHP                      int
	DamageInWaterPer5Seconds   int
	DamageDuringDayPer5Seconds int
	ExpPerKill                 int
	OnKilledAction             OnKilledAction
	OnKilledEffects            []OnKilledEffect
	KillWhenTouchedWater       bool
	CanBeRevived               bool
	SkillsRequiredToRevive     SkillsRequirement
	ElectronicsExpForReviving  int

	delayedOnKilledEffects []OnKilledEffect
}

// Expose binds the character.
func (c *CharacterDef) Expose(n *datafile.Node) {
	c.EntityDef.Expose(n)
	datafile.Var(n, &c.Model, "modelDef")
	datafile.Var(n, &c.AnimationFramesSet, "animationFramesSetDef")
	datafile.VarOr(n, &c.OnSpawnedSound, "onSpawnedSoundDef", def.Ref[*resource.SoundDef]{})
	datafile.Seq(n, &c.ItemUseSourcePosOffsets, "itemUseSourcePosOffsets")
	datafile.VarOr(n, &c.CanFly, "canFly", false)
	datafile.Var(n, &c.MaxHP, "maxHP")
	datafile.VarOr(n, &c.DamageInWaterPer5Seconds, "damageInWaterPer5Seconds", 0)
	datafile.VarOr(n, &c.DamageDuringDayPer5Seconds, "damageDuringDayPer5Seconds", 0)
	datafile.Var(n, &c.ExpPerKill, "expPerKill")
	datafile.Var(n, &c.OnKilledAction, "onKilledAction")
	datafile.Seq(n, &c.OnKilledEffects, "onKilledEffects")
	datafile.VarOr(n, &c.KillWhenTouchedWater, "killWhenTouchedWater", false)
	datafile.VarOr(n, &c.CanBeRevived, "canBeRevived", false)
	datafile.VarOr(n, &c.SkillsRequiredToRevive, "skillsRequiredToRevive", SkillsRequirement{})
	datafile.VarOr(n, &c.ElectronicsExpForReviving, "electronicsExpForReviving", 0)

	switch {
	case n.Loading():
		if c.MaxHP <= 0 {
			n.Fatalf("max HP must be greater than 0")
		}
		if c.DamageInWaterPer5Seconds < 0 || c.DamageDuringDayPer5Seconds < 0 {
			n.Fatalf("damage over time can't be negative")
		}
		if c.ExpPerKill < 0 || c.ElectronicsExpForReviving < 0 {
			n.Fatalf("experience can't be negative")
		}
	case n.PostLoadInit():
		c.delayedOnKilledEffects = nil
		for _, e := range c.OnKilledEffects {
			if e.DisposeBodyTime > 0 {
				c.delayedOnKilledEffects = append(c.delayedOnKilledEffects, e)
			}
		}
	}
}

// OnLoadedAllDefs resolves the entity fields, model, animations, sound and
// death effects.
func (c *CharacterDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := c.EntityDef.OnLoadedAllDefs(r); err != nil {
		return err
	}
	if err := first(
		need(r, &c.Model, "modelDef"),
		need(r, &c.AnimationFramesSet, "animationFramesSetDef"),
		want(r, &c.OnSpawnedSound, "onSpawnedSoundDef"),
	); err != nil {
		return err
	}
	for i := range c.OnKilledEffects {
		if err := need(r, &c.OnKilledEffects[i].Effect, fmt.Sprintf("onKilledEffects[%d].effectDef", i)); err != nil {
			return err
		}
	}
	return nil
}

// NonInstantOnKilledEffects returns the death effects that wait before
// disposing of the body.
func (c *CharacterDef) NonInstantOnKilledEffects() []OnKilledEffect {
	return c.delayedOnKilledEffects
}

// ItemUseSourcePosOffset returns the offset for the i-th item use, cycling
// through the list. It is zero when the list is empty.
func (c *CharacterDef) ItemUseSourcePosOffset(i int) value.Vec3[float32] {
	count := len(c.ItemUseSourcePosOffsets)
	if count == 0 {
		return value.Vec3[float32]{}
	}
	return c.ItemUseSourcePosOffsets[(i%count+count)%count]
}
