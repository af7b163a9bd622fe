// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
	"github.com/sandboxgame/sandbox/internal/value"
)

// ItemDef is anything that can be carried in an inventory.
type ItemDef struct {
	EntityDef
	Model              def.Ref[*resource.ModelDef]
	ReloadSound        def.Ref[*resource.SoundDef]
	EquipSound         def.Ref[*resource.SoundDef]
	PutAwaySound       def.Ref[*resource.SoundDef]
	SlotType           SlotType
	TextureInInventory string
	SizeInInventory    value.Vec2[int]
	MaxStack           int
	FPPProperties      ItemFPPProperties
	OnUsed             OnUsedItem
	StatsChange        CharacterStatsChange
}

// Expose binds the item.
func (i *ItemDef) Expose(n *datafile.Node) {
	i.EntityDef.Expose(n)
	datafile.Var(n, &i.Model, "modelDef")
	datafile.VarOr(n, &i.ReloadSound, "reloadSoundDef", def.Ref[*resource.SoundDef]{})
	datafile.VarOr(n, &i.EquipSound, "equipSoundDef", def.Ref[*resource.SoundDef]{})
	datafile.VarOr(n, &i.PutAwaySound, "putAwaySoundDef", def.Ref[*resource.SoundDef]{})
	datafile.VarOr(n, &i.SlotType, "slotType", SlotNone)
	datafile.Var(n, &i.TextureInInventory, "textureInInventory")
	datafile.VarOr(n, &i.SizeInInventory, "sizeInInventory", value.Vec2[int]{X: 1, Y: 1})
	datafile.VarOr(n, &i.MaxStack, "maxStack", 1)
	exposeOptional(n, &i.FPPProperties, "FPPProperties")
	exposeOptional(n, &i.OnUsed, "onUsed")
	datafile.VarOr(n, &i.StatsChange, "characterStatsChange", NoStatsChange)

	if !n.Loading() {
		return
	}
	if i.SizeInInventory.IsNegative() {
		n.Fatalf("size in inventory can't be negative")
	}
	if i.MaxStack <= 0 {
		n.Fatalf("max stack must be greater than 0")
	}
}

// OnLoadedAllDefs resolves the entity fields, model, sounds and parts.
func (i *ItemDef) OnLoadedAllDefs(r *def.Resolver) error {
	if err := i.EntityDef.OnLoadedAllDefs(r); err != nil {
		return err
	}
	if err := first(
		need(r, &i.Model, "modelDef"),
		want(r, &i.ReloadSound, "reloadSoundDef"),
		want(r, &i.EquipSound, "equipSoundDef"),
		want(r, &i.PutAwaySound, "putAwaySoundDef"),
	); err != nil {
		return err
	}
	if i.FPPProperties.IsSet() {
		if err := within("FPPProperties", i.FPPProperties.resolve(r)); err != nil {
			return err
		}
	}
	if i.OnUsed.IsSet() {
		return within("onUsed", i.OnUsed.resolve(r))
	}
	return nil
}

// IsStackable reports whether more than one item fits in a slot.
func (i *ItemDef) IsStackable() bool {
	return i.MaxStack > 1
}

// CanBeUsed reports whether the item has use properties.
func (i *ItemDef) CanBeUsed() bool {
	return i.OnUsed.IsSet()
}

// ResourcePaths returns the inventory texture.
func (i *ItemDef) ResourcePaths() []string {
	return []string{i.TextureInInventory}
}

// ItemFPPProperties is how an item looks held in first person.
type ItemFPPProperties struct {
	Model              def.Ref[*resource.ModelDef]
	AnimationFramesSet def.Ref[*AnimationFramesSetDef]
	BasePosition       value.Vec3[float32]
	BaseRotation       value.Vec3[float32]
	AimPosition        value.Vec3[float32]
	AimRotation        value.Vec3[float32]

	set bool
}

func (p *ItemFPPProperties) Expose(n *datafile.Node) {
	datafile.Var(n, &p.Model, "modelDef")
	datafile.Var(n, &p.AnimationFramesSet, "animationFramesSetDef")
	datafile.Var(n, &p.BasePosition, "basePosition")
	datafile.Var(n, &p.BaseRotation, "baseRotation")
	datafile.Var(n, &p.AimPosition, "aimPosition")
	datafile.Var(n, &p.AimRotation, "aimRotation")

	if n.Loading() {
		p.set = true
	}
}

// IsSet reports whether the item has first person properties.
func (p ItemFPPProperties) IsSet() bool {
	return p.set
}

func (p *ItemFPPProperties) resolve(r *def.Resolver) error {
	return first(
		need(r, &p.Model, "modelDef"),
		need(r, &p.AnimationFramesSet, "animationFramesSetDef"),
	)
}

// UseAnimation is one first-person animation played when an item is used.
type UseAnimation struct {
	FPPAnimationIndex              int
	TimeBetweenUseAndActualEffects float32
}

func (u *UseAnimation) Expose(n *datafile.Node) {
	datafile.Var(n, &u.FPPAnimationIndex, "FPPAnimationIndex")
	datafile.VarOr(n, &u.TimeBetweenUseAndActualEffects, "timeBetweenUseAndActualEffects", 0)

	if !n.Loading() {
		return
	}
	if u.FPPAnimationIndex < 0 || u.FPPAnimationIndex >= MaxUseAnimations {
		n.Fatalf("FPP animation index out of bounds")
	}
	if u.TimeBetweenUseAndActualEffects < 0 {
		n.Fatalf("time between use and actual effects can't be negative")
	}
}

// GathersResources is how an item collects resources from mineables.
type GathersResources struct {
	MineableTags         []string
	GatheredCount        int
	DecreaseDurabilityBy int

	set bool
}

func (g *GathersResources) Expose(n *datafile.Node) {
	datafile.Seq(n, &g.MineableTags, "mineableTags")
	datafile.VarOr(n, &g.GatheredCount, "gatheredCount", 0)
	datafile.VarOr(n, &g.DecreaseDurabilityBy, "decreaseDurabilityBy", 0)

	if !n.Loading() {
		return
	}
	if g.GatheredCount < 0 || g.DecreaseDurabilityBy < 0 {
		n.Fatalf("gathered count and durability decrease can't be negative")
	}
	g.set = true
}

// IsSet reports whether the item gathers anything.
func (g GathersResources) IsSet() bool {
	return g.set
}

// CanGather reports whether the item gathers from something tagged tag.
func (g GathersResources) CanGather(tags []string) bool {
	for _, want := range g.MineableTags {
		for _, tag := range tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

// OnUsedItem is what happens when an item is used.
type OnUsedItem struct {
	Sound                     def.Ref[*resource.SoundDef]
	MinDuration               float32
	ContinuousUse             bool
	IsMelee                   bool
	DealsDamage               int
	Recoil                    float32
	MinProjectilesSpreadAngle float32
	UseAnimations             []UseAnimation
	GathersResources          GathersResources
	Effect                    def.Ref[*EffectDef]

	set bool
}

func (o *OnUsedItem) Expose(n *datafile.Node) {
	datafile.VarOr(n, &o.Sound, "soundDef", def.Ref[*resource.SoundDef]{})
	datafile.Var(n, &o.MinDuration, "minDuration")
	datafile.VarOr(n, &o.ContinuousUse, "continuousUse", false)
	datafile.Var(n, &o.IsMelee, "isMelee")
	datafile.VarOr(n, &o.DealsDamage, "dealsDamage", 0)
	datafile.VarOr(n, &o.Recoil, "recoil", 0)
	datafile.VarOr(n, &o.MinProjectilesSpreadAngle, "minProjectilesSpreadAngle", 0)
	datafile.Seq(n, &o.UseAnimations, "useAnimations")
	exposeOptional(n, &o.GathersResources, "gathersResources")
	datafile.VarOr(n, &o.Effect, "effectDef", def.Ref[*EffectDef]{})

	if !n.Loading() {
		return
	}
	if o.MinDuration < 0 {
		n.Fatalf("min duration can't be negative")
	}
	if o.DealsDamage < 0 || o.Recoil < 0 || o.MinProjectilesSpreadAngle < 0 {
		n.Fatalf("damage, recoil and spread angle can't be negative")
	}
	if len(o.UseAnimations) == 0 {
		n.Fatalf("there must be at least one use animation")
	}
	o.set = true
}

// IsSet reports whether the item can be used.
func (o OnUsedItem) IsSet() bool {
	return o.set
}

func (o *OnUsedItem) resolve(r *def.Resolver) error {
	return first(
		want(r, &o.Sound, "soundDef"),
		want(r, &o.Effect, "effectDef"),
	)
}

// UseAnimationFor returns the use animation for the n-th use, cycling
// through the list.
func (o OnUsedItem) UseAnimationFor(use int) (UseAnimation, bool) {
	count := len(o.UseAnimations)
	if count == 0 {
		return UseAnimation{}, false
	}
	return o.UseAnimations[(use%count+count)%count], true
}
