// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import "github.com/sandboxgame/sandbox/internal/value"

// Relation is how two factions treat each other.
type Relation int

// Relations.
const (
	RelationNeutral Relation = iota
	RelationGood
	RelationHostile
)

var relations = value.NewEnum[Relation]("Neutral", "Good", "Hostile")

func (r Relation) String() string                  { return relations.Name(r) }
func (r Relation) MarshalText() ([]byte, error)     { return relations.Marshal(r) }
func (r *Relation) UnmarshalText(text []byte) error { return relations.Unmarshal(text, r) }

// ShapeType is the primitive a collision shape is built from.
type ShapeType int

// Shape types.
const (
	ShapeBox ShapeType = iota
	ShapeCapsule
	ShapeCone
	ShapeCylinder
	ShapeSphere
	ShapePlane
	ShapeConvexHull
	ShapeBvhTriangleMesh
)

var shapeTypes = value.NewEnum[ShapeType](
	"Box", "Capsule", "Cone", "Cylinder", "Sphere", "Plane", "ConvexHull", "BvhTriangleMesh",
)

func (t ShapeType) String() string                  { return shapeTypes.Name(t) }
func (t ShapeType) MarshalText() ([]byte, error)     { return shapeTypes.Marshal(t) }
func (t *ShapeType) UnmarshalText(text []byte) error { return shapeTypes.Unmarshal(text, t) }

// IsMesh reports whether the shape is built from a mesh file.
func (t ShapeType) IsMesh() bool {
	return t == ShapeConvexHull || t == ShapeBvhTriangleMesh
}

// SlotType is the inventory slot an item can be equipped in.
type SlotType int

// Slot types.
const (
	SlotNone SlotType = iota
	SlotHands
	SlotArmor
	SlotSpecial
)

var slotTypes = value.NewEnum[SlotType]("None", "Hands", "Armor", "Special")

func (s SlotType) String() string                  { return slotTypes.Name(s) }
func (s SlotType) MarshalText() ([]byte, error)     { return slotTypes.Marshal(s) }
func (s *SlotType) UnmarshalText(text []byte) error { return slotTypes.Unmarshal(text, s) }

// StructureCategory groups structures in the build menu.
type StructureCategory int

// Structure categories.
const (
	CategoryWooden StructureCategory = iota
	CategoryStone
	CategorySecurity
	CategoryMisc
)

var structureCategories = value.NewEnum[StructureCategory]("Wooden", "Stone", "Security", "Misc")

func (c StructureCategory) String() string              { return structureCategories.Name(c) }
func (c StructureCategory) MarshalText() ([]byte, error) { return structureCategories.Marshal(c) }
func (c *StructureCategory) UnmarshalText(text []byte) error {
	return structureCategories.Unmarshal(text, c)
}

// OnKilledAction is what happens to a character's body when it dies.
type OnKilledAction int

// Actions on death.
const (
	KilledNone OnKilledAction = iota
	KilledMakeBodyDynamic
)

var onKilledActions = value.NewEnum[OnKilledAction]("None", "MakeBodyDynamic")

func (a OnKilledAction) String() string                  { return onKilledActions.Name(a) }
func (a OnKilledAction) MarshalText() ([]byte, error)     { return onKilledActions.Marshal(a) }
func (a *OnKilledAction) UnmarshalText(text []byte) error { return onKilledActions.Unmarshal(text, a) }

// UpgradeColor is the tint of an upgrade tile.
type UpgradeColor int

// Upgrade colors.
const (
	UpgradeWhite UpgradeColor = iota
	UpgradeRed
	UpgradeGreen
	UpgradeBlue
)

var upgradeColors = value.NewEnum[UpgradeColor]("White", "Red", "Green", "Blue")

func (c UpgradeColor) String() string                  { return upgradeColors.Name(c) }
func (c UpgradeColor) MarshalText() ([]byte, error)     { return upgradeColors.Marshal(c) }
func (c *UpgradeColor) UnmarshalText(text []byte) error { return upgradeColors.Unmarshal(text, c) }

// Direction is a side of an upgrade tile.
type Direction int

// Directions.
const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directions = value.NewEnum[Direction]("Up", "Down", "Left", "Right")

func (d Direction) String() string                  { return directions.Name(d) }
func (d Direction) MarshalText() ([]byte, error)     { return directions.Marshal(d) }
func (d *Direction) UnmarshalText(text []byte) error { return directions.Unmarshal(text, d) }
