// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package defs

import (
	"fmt"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
)

// ParticleEffect is one particles group spawned by an effect.
type ParticleEffect struct {
	ParticlesGroup def.Ref[*resource.ParticlesGroupDef]
	StartOffset    float32
	Duration       float32
	LastsForever   bool
}

func (p *ParticleEffect) Expose(n *datafile.Node) {
	datafile.Var(n, &p.ParticlesGroup, "particlesGroupDef")
	datafile.VarOr(n, &p.StartOffset, "startOffset", 0)
	datafile.VarOr(n, &p.Duration, "duration", 0)
	datafile.VarOr(n, &p.LastsForever, "lastsForever", false)

	if !n.Loading() {
		return
	}
	if p.StartOffset < 0 {
		n.Fatalf("start offset can't be negative")
	}
	if p.Duration < 0 {
		n.Fatalf("duration can't be negative")
	}
	if p.Duration == 0 && !p.LastsForever {
		n.Warnf("particle effect has 0 duration and does not last forever")
	}
}

// EffectDef is a combination of particles, a sound and a light played
// together.
type EffectDef struct {
	def.Base
	ParticleEffects []ParticleEffect
	Sound           def.Ref[*resource.SoundDef]
	Light           def.Ref[*resource.LightDef]
}

// Expose binds the effect.
func (e *EffectDef) Expose(n *datafile.Node) {
	e.Base.Expose(n)
	datafile.Seq(n, &e.ParticleEffects, "particleEffects")
	datafile.VarOr(n, &e.Sound, "soundDef", def.Ref[*resource.SoundDef]{})
	datafile.VarOr(n, &e.Light, "lightDef", def.Ref[*resource.LightDef]{})
}

// OnLoadedAllDefs resolves the particles groups, sound and light.
func (e *EffectDef) OnLoadedAllDefs(r *def.Resolver) error {
	for i := range e.ParticleEffects {
		field := fmt.Sprintf("particleEffects[%d].particlesGroupDef", i)
		if err := need(r, &e.ParticleEffects[i].ParticlesGroup, field); err != nil {
			return err
		}
	}
	if err := first(
		want(r, &e.Sound, "soundDef"),
		want(r, &e.Light, "lightDef"),
	); err != nil {
		return err
	}
	if s := e.Sound.Get(); s != nil && s.IsGUISound {
		r.Logger().Warn("effect plays a GUI sound", "def", e.Name(), "sound", s.Name())
	}
	return nil
}

// LastsForever reports whether any particle effect never ends.
func (e *EffectDef) LastsForever() bool {
	for _, p := range e.ParticleEffects {
		if p.LastsForever {
			return true
		}
	}
	return false
}

// Duration returns when the last finite particle effect ends.
func (e *EffectDef) Duration() float32 {
	var d float32
	for _, p := range e.ParticleEffects {
		if !p.LastsForever {
			d = max(d, p.StartOffset+p.Duration)
		}
	}
	return d
}
