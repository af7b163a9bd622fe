// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package resource

import (
	"path"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// Terrain map layout under a terrain's resourcePath.
const (
	TerrainTexturesDirectory = "terrain"
	TerrainTexturesExtension = ".bmp"
)

// TerrainDef describes the ground of a world part.
type TerrainDef struct {
	def.Base
	ResourcePath     string
	Texture1Path     string
	Texture2Path     string
	Texture3Path     string
	SlopeTexturePath string
	IsFlat           bool
	Scale            float32
	SlopeDistortion  float32
	MaxLOD           int
	SmoothFactor     int
	UseGrass         bool
	GrassColor       value.Color
}

// Expose binds the terrain.
func (t *TerrainDef) Expose(n *datafile.Node) {
	t.Base.Expose(n)
	datafile.VarOr(n, &t.ResourcePath, "resourcePath", "")
	datafile.Var(n, &t.Texture1Path, "texture1Path")
	datafile.Var(n, &t.Texture2Path, "texture2Path")
	datafile.Var(n, &t.Texture3Path, "texture3Path")
	datafile.Var(n, &t.SlopeTexturePath, "slopeTexturePath")
	datafile.VarOr(n, &t.IsFlat, "isFlat", false)
	datafile.VarOr(n, &t.Scale, "scale", 1)
	datafile.VarOr(n, &t.SlopeDistortion, "slopeDistortion", 0)
	datafile.VarOr(n, &t.MaxLOD, "maxLOD", 4)
	datafile.VarOr(n, &t.SmoothFactor, "smoothFactor", 2)
	datafile.Var(n, &t.UseGrass, "useGrass")
	datafile.VarOr(n, &t.GrassColor, "grassColor", value.White)

	if !n.Loading() {
		return
	}
	if t.IsFlat && t.ResourcePath != "" {
		n.Warnf("terrain %q is flat, so resourcePath does not affect it and can be omitted", t.Name())
	}
	if t.Scale <= 0 {
		n.Fatalf("scale must be positive")
	}
	if t.SlopeDistortion < 0 {
		n.Fatalf("slope distortion can't be negative")
	}
	if t.MaxLOD <= 0 {
		n.Fatalf("max LOD must be positive")
	}
	if t.SmoothFactor < 0 {
		n.Fatalf("smooth factor can't be negative")
	}
}

// HeightMapPath returns the height map file, or "" for flat terrain.
func (t *TerrainDef) HeightMapPath() string {
	return t.mapPath("heightMap")
}

func (t *TerrainDef) mapPath(name string) string {
	if t.IsFlat {
		return ""
	}
	return path.Join(TerrainTexturesDirectory, t.ResourcePath, name+TerrainTexturesExtension)
}

// ResourcePaths returns the ground textures and, unless the terrain is
// flat, its height, normal and splat maps.
func (t *TerrainDef) ResourcePaths() []string {
	out := []string{t.Texture1Path, t.Texture2Path, t.Texture3Path, t.SlopeTexturePath}
	if !t.IsFlat {
		out = append(out, t.mapPath("heightMap"), t.mapPath("normalMap"), t.mapPath("splatMap"))
	}
	return out
}
