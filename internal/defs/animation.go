// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// MaxUseAnimations is how many first-person use animations a frames set
// has.
const MaxUseAnimations = 3

// AnimationFramesSetDef maps animations to frame ranges of an animated
// model. An empty range means the model lacks that animation.
type AnimationFramesSetDef struct {
	def.Base
	Walk      value.Range[int]
	Attack    value.Range[int]
	Harmed    value.Range[int]
	Death     value.Range[int]
	OnSpawned value.Range[int]
	Run       value.Range[int]
	Idle      value.Range[int]

	IdleFPP    value.Range[int]
	UseFPP     [MaxUseAnimations]value.Range[int]
	ReloadFPP  value.Range[int]
	EquipFPP   value.Range[int]
	PutAwayFPP value.Range[int]
}

// Expose binds the frame ranges.
func (a *AnimationFramesSetDef) Expose(n *datafile.Node) {
	a.Base.Expose(n)
	empty := value.EmptyRange[int]()
	datafile.VarOr(n, &a.Walk, "walk", empty)
	datafile.VarOr(n, &a.Attack, "attack", empty)
	datafile.VarOr(n, &a.Harmed, "harmed", empty)
	datafile.VarOr(n, &a.Death, "death", empty)
	datafile.VarOr(n, &a.OnSpawned, "onSpawned", empty)
	datafile.VarOr(n, &a.Run, "run", empty)
	datafile.VarOr(n, &a.Idle, "idle", empty)
	datafile.VarOr(n, &a.IdleFPP, "idle_FPP", empty)
	datafile.VarOr(n, &a.UseFPP[0], "use0_FPP", empty)
	datafile.VarOr(n, &a.UseFPP[1], "use1_FPP", empty)
	datafile.VarOr(n, &a.UseFPP[2], "use2_FPP", empty)
	datafile.VarOr(n, &a.ReloadFPP, "reload_FPP", empty)
	datafile.VarOr(n, &a.EquipFPP, "equip_FPP", empty)
	datafile.VarOr(n, &a.PutAwayFPP, "putAway_FPP", empty)
}
