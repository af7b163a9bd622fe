// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package resource

import (
	"math"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// MaxLODDistance is the greatest distance a LOD may start at. Farther
// distances are clamped to it.
const MaxLODDistance float32 = 15000

// RenderTechnique selects how a LOD is drawn.
type RenderTechnique int

// Render techniques.
const (
	RenderNone RenderTechnique = iota
	RenderMesh
	RenderAnimatedMesh
	RenderBillboard
	RenderHorizontalBillboard
	RenderMeshBatched
	RenderBillboardBatched
	RenderHorizontalBillboardBatched
)

var renderTechniques = value.NewEnum[RenderTechnique](
	"None",
	"Mesh",
	"AnimatedMesh",
	"Billboard",
	"HorizontalBillboard",
	"MeshBatched",
	"BillboardBatched",
	"HorizontalBillboardBatched",
)

func (t RenderTechnique) String() string { return renderTechniques.Name(t) }

// MarshalText implements encoding.TextMarshaler.
func (t RenderTechnique) MarshalText() ([]byte, error) { return renderTechniques.Marshal(t) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RenderTechnique) UnmarshalText(b []byte) error { return renderTechniques.Unmarshal(b, t) }

// IsBatched reports whether the technique draws through a batch.
func (t RenderTechnique) IsBatched() bool {
	return t == RenderMeshBatched || t == RenderBillboardBatched || t == RenderHorizontalBillboardBatched
}

// IsBillboard reports whether the technique draws a textured quad.
func (t RenderTechnique) IsBillboard() bool {
	switch t {
	case RenderBillboard, RenderHorizontalBillboard, RenderBillboardBatched, RenderHorizontalBillboardBatched:
		return true
	default:
		return false
	}
}

// ModelLOD is one level of detail of a model.
type ModelLOD struct {
	ResourcePath                  string
	RenderTechnique               RenderTechnique
	BatchTag                      string
	Scale                         float32
	Distance                      float32
	ForceAllUpNormalsWhenBatched  bool
	IsBillboardOverlay            bool
	UseCenterAsOriginForBillboard bool

	// Set by the post-load pass.
	Index           int
	NextLODDistance float32
}

// Expose binds the LOD.
func (l *ModelLOD) Expose(n *datafile.Node) {
	datafile.Var(n, &l.ResourcePath, "resourcePath")
	datafile.Var(n, &l.RenderTechnique, "renderTechnique")
	datafile.VarOr(n, &l.BatchTag, "batchTag", "")
	datafile.VarOr(n, &l.Scale, "scale", 1)
	datafile.VarOr(n, &l.Distance, "distance", 0)
	datafile.VarOr(n, &l.ForceAllUpNormalsWhenBatched, "forceAllUpNormalsWhenBatched", false)
	datafile.VarOr(n, &l.IsBillboardOverlay, "isBillboardOverlay", false)
	datafile.VarOr(n, &l.UseCenterAsOriginForBillboard, "useCenterAsOriginForBillboard", false)

	if n.Loading() {
		if l.Scale < 0 {
			n.Fatalf("scale can't be negative")
		}
		if l.Distance < 0 {
			n.Fatalf("distance can't be negative")
		}
	}
}

// ModelDef is a renderable model with one or more LODs ordered by the
// distance they start at.
type ModelDef struct {
	def.Base
	LODs []ModelLOD
}

// Expose binds the model.
func (m *ModelDef) Expose(n *datafile.Node) {
	m.Base.Expose(n)
	datafile.Seq(n, &m.LODs, "LODs")

	switch {
	case n.Loading():
		m.validateLODs(n)
	case n.PostLoadInit():
		for i := range m.LODs {
			m.LODs[i].Index = i
			m.LODs[i].NextLODDistance = MaxLODDistance + 1
			if i > 0 {
				m.LODs[i-1].NextLODDistance = m.LODs[i].Distance
			}
		}
	}
}

func (m *ModelDef) validateLODs(n *datafile.Node) {
	if len(m.LODs) == 0 {
		n.Fatalf("model has no LODs")
		return
	}
	for i := range m.LODs {
		lod := &m.LODs[i]
		if lod.Distance > MaxLODDistance {
			n.Warnf("LOD %d distance %g is greater than the max LOD distance, clamped", i, lod.Distance)
			lod.Distance = MaxLODDistance
		}
		if i == 0 {
			if math.Abs(float64(lod.Distance)) > 1e-6 {
				n.Fatalf("first LOD distance must be 0")
			}
			continue
		}
		if m.LODs[i-1].Distance > lod.Distance {
			n.Fatalf("LOD %d distance must not be less than the previous LOD distance", i)
		}
	}
}

// LODFor returns the LOD to draw at the given squared distance: the last
// LOD whose start distance is closer.
func (m *ModelDef) LODFor(distanceSq float32) ModelLOD {
	for i := len(m.LODs) - 1; i > 0; i-- {
		d := m.LODs[i].Distance
		if distanceSq > d*d {
			return m.LODs[i]
		}
	}
	return m.LODs[0]
}

// ResourcePaths returns the files of every drawn LOD.
func (m *ModelDef) ResourcePaths() []string {
	var out []string
	for _, lod := range m.LODs {
		if lod.RenderTechnique != RenderNone {
			out = append(out, lod.ResourcePath)
		}
	}
	return out
}
