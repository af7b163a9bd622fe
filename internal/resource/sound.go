// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package resource

import (
	"math"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// SoundDef is a sound file with randomized volume and pitch.
type SoundDef struct {
	def.Base
	Path              string
	VolumeRandomRange value.Range[float32]
	PitchRandomRange  value.Range[float32]
	IsGUISound        bool
	Attenuation       float32
	MinDistance       float32
}

// Expose binds the sound.
func (s *SoundDef) Expose(n *datafile.Node) {
	s.Base.Expose(n)
	datafile.Var(n, &s.Path, "path")
	datafile.VarOr(n, &s.VolumeRandomRange, "volumeRandomRange", value.Range[float32]{From: 1, To: 1})
	datafile.VarOr(n, &s.PitchRandomRange, "pitchRandomRange", value.Range[float32]{From: 1, To: 1})
	datafile.Var(n, &s.IsGUISound, "isGUISound")
	datafile.VarOr(n, &s.Attenuation, "attenuation", 1)
	datafile.VarOr(n, &s.MinDistance, "minDistance", 3)

	if !n.Loading() {
		return
	}
	if s.VolumeRandomRange.IsEmpty() {
		n.Fatalf("volume random range is empty")
	}
	if s.PitchRandomRange.IsEmpty() {
		n.Fatalf("pitch random range is empty")
	}
	if s.Attenuation < 0 {
		n.Fatalf("attenuation can't be negative")
	}
	// A zero minimum distance breaks spatialization.
	if math.Abs(float64(s.MinDistance)) < 1e-6 {
		n.Fatalf("minimum distance can't be 0")
	}
	if s.MinDistance < 0 {
		n.Fatalf("minimum distance can't be negative")
	}
}

// ResourcePaths returns the sound file.
func (s *SoundDef) ResourcePaths() []string {
	return []string{s.Path}
}
