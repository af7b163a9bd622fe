// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package resource

import (
	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/value"
)

// Blending is how particle sprites combine with what is behind them.
type Blending int

// Blending modes.
const (
	BlendAlpha Blending = iota
	BlendAdd
)

var blendings = value.NewEnum[Blending]("Alpha", "Add")

func (b Blending) String() string                  { return blendings.Name(b) }
func (b Blending) MarshalText() ([]byte, error)     { return blendings.Marshal(b) }
func (b *Blending) UnmarshalText(text []byte) error { return blendings.Unmarshal(text, b) }

// Orientation is how particle sprites face the camera.
type Orientation int

// Orientations.
const (
	OrientNormal Orientation = iota
	OrientDirectionAligned
	OrientFixed
)

var orientations = value.NewEnum[Orientation]("Normal", "DirectionAligned", "Fixed")

func (o Orientation) String() string                  { return orientations.Name(o) }
func (o Orientation) MarshalText() ([]byte, error)     { return orientations.Marshal(o) }
func (o *Orientation) UnmarshalText(text []byte) error { return orientations.Unmarshal(text, o) }

// ParticleSpriteDef is the texture particles are drawn with.
type ParticleSpriteDef struct {
	def.Base
	Inherit              InheritScaled
	TexturePath          string
	Scale                value.Vec2[float32]
	Blending             Blending
	Orientation          Orientation
	TexturesCountInAtlas value.Vec2[int]
	UseAlphaTest         bool
	LookVector           value.Vec3[float32]
	UpVector             value.Vec3[float32]
}

// Expose binds the sprite. A sprite that inherits is validated through
// its source instead.
func (p *ParticleSpriteDef) Expose(n *datafile.Node) {
	p.Base.Expose(n)
	exposeInherit(n, &p.Inherit)
	datafile.VarOr(n, &p.TexturePath, "texturePath", "")
	datafile.VarOr(n, &p.Scale, "scale", value.Vec2[float32]{X: 1, Y: 1})
	datafile.VarOr(n, &p.Blending, "blending", BlendAlpha)
	datafile.VarOr(n, &p.Orientation, "orientation", OrientNormal)
	datafile.VarOr(n, &p.TexturesCountInAtlas, "texturesCountInAtlas", value.Vec2[int]{X: 1, Y: 1})
	datafile.VarOr(n, &p.UseAlphaTest, "useAlphaTest", false)
	datafile.VarOr(n, &p.LookVector, "lookVector", value.Vec3[float32]{Z: 1})
	datafile.VarOr(n, &p.UpVector, "upVector", value.Vec3[float32]{Y: 1})

	if !n.Loading() || p.Inherit.IsSet() {
		return
	}
	if p.TexturePath == "" {
		n.Fatalf("texture path can't be empty")
	}
	if p.Scale.IsNegative() {
		n.Fatalf("scale can't be negative")
	}
	if p.TexturesCountInAtlas.X <= 0 || p.TexturesCountInAtlas.Y <= 0 {
		n.Fatalf("invalid textures count in atlas %s", p.TexturesCountInAtlas)
	}
}

// OnLoadedAllDefs copies the inherited sprite, if any.
func (p *ParticleSpriteDef) OnLoadedAllDefs(r *def.Resolver) error {
	if !p.Inherit.IsSet() {
		return nil
	}
	src, err := inheritFrom(r, p)
	if err != nil {
		return err
	}
	p.TexturePath = src.TexturePath
	p.Scale = src.Scale.Scale(p.Inherit.Scale)
	p.Blending = src.Blending
	p.Orientation = src.Orientation
	p.TexturesCountInAtlas = src.TexturesCountInAtlas
	p.UseAlphaTest = src.UseAlphaTest
	p.LookVector = src.LookVector
	p.UpVector = src.UpVector
	return nil
}

func (p *ParticleSpriteDef) inherit() InheritScaled { return p.Inherit }

// ResourcePaths returns the sprite texture.
func (p *ParticleSpriteDef) ResourcePaths() []string {
	if p.TexturePath == "" {
		return nil
	}
	return []string{p.TexturePath}
}

// ParamType selects how a particle parameter changes over a lifetime.
type ParamType int

// Parameter types.
const (
	ParamNone ParamType = iota
	ParamConstant
	ParamStartEnd
	ParamRandomStartRandomEnd
)

var paramTypes = value.NewEnum[ParamType]("None", "Constant", "StartEnd", "RandomStartRandomEnd")

func (t ParamType) String() string                  { return paramTypes.Name(t) }
func (t ParamType) MarshalText() ([]byte, error)     { return paramTypes.Marshal(t) }
func (t *ParamType) UnmarshalText(text []byte) error { return paramTypes.Unmarshal(text, t) }

// Param is one animated particle parameter such as size or alpha.
type Param struct {
	Type        ParamType
	Constant    float32
	StartEnd    value.Range[float32]
	RandomStart value.Range[float32]
	RandomEnd   value.Range[float32]
}

// DefaultParam is the value of an absent parameter.
var DefaultParam = Param{
	Constant:    1,
	StartEnd:    value.Range[float32]{From: 1, To: 1},
	RandomStart: value.Range[float32]{From: 1, To: 1},
	RandomEnd:   value.Range[float32]{From: 1, To: 1},
}

func (p *Param) Expose(n *datafile.Node) {
	datafile.Var(n, &p.Type, "type")
	datafile.VarOr(n, &p.Constant, "constant", 1)
	datafile.VarOr(n, &p.StartEnd, "startEnd", value.Range[float32]{From: 1, To: 1})
	datafile.VarOr(n, &p.RandomStart, "randomStart", value.Range[float32]{From: 1, To: 1})
	datafile.VarOr(n, &p.RandomEnd, "randomEnd", value.Range[float32]{From: 1, To: 1})
}

// Scaled returns the parameter with every value multiplied by f. Negative
// factors count as zero.
func (p Param) Scaled(f float32) Param {
	f = max(f, 0)
	p.Constant *= f
	p.StartEnd = p.StartEnd.Scale(f)
	p.RandomStart = p.RandomStart.Scale(f)
	p.RandomEnd = p.RandomEnd.Scale(f)
	return p
}

// InterpolatorEntry is one keyframe of an Interpolator.
type InterpolatorEntry struct {
	TimePercentage float32
	Multiplier     float32
	MultiplierB    float32
}

func (e *InterpolatorEntry) Expose(n *datafile.Node) {
	datafile.Var(n, &e.TimePercentage, "timePercentage")
	datafile.Var(n, &e.Multiplier, "multiplier")
	datafile.VarOr(n, &e.MultiplierB, "multiplierB", e.Multiplier)

	if n.Loading() && (e.TimePercentage < 0 || e.TimePercentage > 1) {
		n.Fatalf("time percentage must be between 0.0 and 1.0")
	}
}

// Interpolator scales a parameter over a particle's lifetime.
type Interpolator struct {
	Entries []InterpolatorEntry
}

func (in *Interpolator) Expose(n *datafile.Node) {
	datafile.Seq(n, &in.Entries, "entries")

	if n.Loading() {
		for i := 1; i < len(in.Entries); i++ {
			if in.Entries[i].TimePercentage < in.Entries[i-1].TimePercentage {
				n.Fatalf("time percentage values must be in ascending order")
				return
			}
		}
	}
}

// HasEntries reports whether the interpolator does anything.
func (in Interpolator) HasEntries() bool {
	return len(in.Entries) > 0
}

// Scaled returns a copy with every multiplier multiplied by f. Negative
// factors count as zero.
func (in Interpolator) Scaled(f float32) Interpolator {
	f = max(f, 0)
	out := Interpolator{Entries: make([]InterpolatorEntry, len(in.Entries))}
	for i, e := range in.Entries {
		e.Multiplier *= f
		e.MultiplierB *= f
		out.Entries[i] = e
	}
	if len(out.Entries) == 0 {
		out.Entries = nil
	}
	return out
}

// ParticlesGroupModelDef describes how single particles evolve.
type ParticlesGroupModelDef struct {
	def.Base
	Inherit            InheritScaled
	RedParam           Param
	GreenParam         Param
	BlueParam          Param
	AlphaParam         Param
	AngleParam         Param
	SizeParam          Param
	RandomTextureIndex value.Range[int]
	LifeTime           value.Range[float32]
	SizeInterpolator   Interpolator
	AlphaInterpolator  Interpolator
}

// Expose binds the particle model.
func (m *ParticlesGroupModelDef) Expose(n *datafile.Node) {
	m.Base.Expose(n)
	exposeInherit(n, &m.Inherit)
	datafile.VarOr(n, &m.RedParam, "redParam", DefaultParam)
	datafile.VarOr(n, &m.GreenParam, "greenParam", DefaultParam)
	datafile.VarOr(n, &m.BlueParam, "blueParam", DefaultParam)
	datafile.VarOr(n, &m.AlphaParam, "alphaParam", DefaultParam)
	datafile.VarOr(n, &m.AngleParam, "angleParam", DefaultParam)
	datafile.VarOr(n, &m.SizeParam, "sizeParam", DefaultParam)
	datafile.VarOr(n, &m.RandomTextureIndex, "randomTextureIndex", value.Range[int]{From: 0, To: 1})
	datafile.VarOr(n, &m.LifeTime, "lifeTime", value.Range[float32]{From: 1, To: 1})
	datafile.VarOr(n, &m.SizeInterpolator, "sizeInterpolator", Interpolator{})
	datafile.VarOr(n, &m.AlphaInterpolator, "alphaInterpolator", Interpolator{})

	if !n.Loading() || m.Inherit.IsSet() {
		return
	}
	if m.RandomTextureIndex.IsNegative() {
		n.Fatalf("random texture index can't be negative")
	}
	if m.LifeTime.IsNegative() {
		n.Fatalf("life time can't be negative")
	}
}

// OnLoadedAllDefs copies the inherited model, if any, scaling sizes.
func (m *ParticlesGroupModelDef) OnLoadedAllDefs(r *def.Resolver) error {
	if !m.Inherit.IsSet() {
		return nil
	}
	src, err := inheritFrom(r, m)
	if err != nil {
		return err
	}
	m.RedParam = src.RedParam
	m.GreenParam = src.GreenParam
	m.BlueParam = src.BlueParam
	m.AlphaParam = src.AlphaParam
	m.AngleParam = src.AngleParam
	m.SizeParam = src.SizeParam.Scaled(m.Inherit.Scale)
	m.RandomTextureIndex = src.RandomTextureIndex
	m.LifeTime = src.LifeTime
	m.SizeInterpolator = src.SizeInterpolator.Scaled(m.Inherit.Scale)
	m.AlphaInterpolator = src.AlphaInterpolator.Scaled(1) // copy
	return nil
}

func (m *ParticlesGroupModelDef) inherit() InheritScaled { return m.Inherit }

// EmitterType is the shape particles are emitted in.
type EmitterType int

// Emitter types.
const (
	EmitterNormal EmitterType = iota
	EmitterRandom
	EmitterStatic
	EmitterSpheric
	EmitterStraight
)

var emitterTypes = value.NewEnum[EmitterType]("Normal", "Random", "Static", "Spheric", "Straight")

func (t EmitterType) String() string                  { return emitterTypes.Name(t) }
func (t EmitterType) MarshalText() ([]byte, error)     { return emitterTypes.Marshal(t) }
func (t *EmitterType) UnmarshalText(text []byte) error { return emitterTypes.Unmarshal(text, t) }

// ZoneSphere is the sphere an emitter spawns particles in.
type ZoneSphere struct {
	Position value.Vec3[float32]
	Radius   float32
}

func (z *ZoneSphere) Expose(n *datafile.Node) {
	datafile.Var(n, &z.Position, "position")
	datafile.Var(n, &z.Radius, "radius")

	if n.Loading() && z.Radius < 0 {
		n.Fatalf("radius can't be negative")
	}
}

// Emitter spawns the particles of a group.
type Emitter struct {
	Type       EmitterType
	Direction  value.Vec3[float32]
	Angle      value.Range[float32]
	ZoneSphere ZoneSphere
	FullZone   bool
	Flow       int
	Tank       int
	Force      value.Range[float32]
}

func (e *Emitter) Expose(n *datafile.Node) {
	datafile.Var(n, &e.Type, "type")
	datafile.VarOr(n, &e.Direction, "direction", value.Vec3[float32]{})
	datafile.VarOr(n, &e.Angle, "angle", value.EmptyRange[float32]())
	datafile.Var(n, &e.ZoneSphere, "zoneSphere")
	datafile.VarOr(n, &e.FullZone, "fullZone", true)
	datafile.Var(n, &e.Flow, "flow")
	datafile.VarOr(n, &e.Tank, "tank", -1)
	datafile.VarOr(n, &e.Force, "force", value.EmptyRange[float32]())
}

// Scaled returns the emitter with its force and zone multiplied by f.
func (e Emitter) Scaled(f float32) Emitter {
	e.Force = e.Force.Scale(f)
	e.ZoneSphere.Position = e.ZoneSphere.Position.Scale(f)
	e.ZoneSphere.Radius *= f
	return e
}

// ParticlesGroupDef is a particle system: a particle model drawn with a
// sprite, spawned by emitters.
type ParticlesGroupDef struct {
	def.Base
	Inherit           InheritScaled
	Model             def.Ref[*ParticlesGroupModelDef]
	Sprite            def.Ref[*ParticleSpriteDef]
	MaxParticlesCount int
	Gravity           value.Vec3[float32]
	Friction          float32
	Emitters          []Emitter
}

// Expose binds the particle group.
func (g *ParticlesGroupDef) Expose(n *datafile.Node) {
	g.Base.Expose(n)
	exposeInherit(n, &g.Inherit)
	datafile.Var(n, &g.Model, "particlesGroupModelDef")
	datafile.Var(n, &g.Sprite, "particleSpriteDef")
	datafile.VarOr(n, &g.MaxParticlesCount, "maxParticlesCount", 500)
	datafile.VarOr(n, &g.Gravity, "gravity", value.Vec3[float32]{})
	datafile.VarOr(n, &g.Friction, "friction", 0)
	datafile.Seq(n, &g.Emitters, "emitters")

	if n.Loading() && !g.Inherit.IsSet() && g.MaxParticlesCount < 0 {
		n.Fatalf("max particles count can't be negative")
	}
}

// OnLoadedAllDefs copies the inherited group, if any, and resolves the
// model and sprite.
func (g *ParticlesGroupDef) OnLoadedAllDefs(r *def.Resolver) error {
	if g.Inherit.IsSet() {
		src, err := inheritFrom(r, g)
		if err != nil {
			return err
		}
		scale := g.Inherit.Scale
		g.MaxParticlesCount = src.MaxParticlesCount
		g.Friction = src.Friction
		g.Gravity = src.Gravity.Scale(scale)
		g.Emitters = nil
		for _, e := range src.Emitters {
			g.Emitters = append(g.Emitters, e.Scaled(scale))
		}
	}

	if err := g.Model.Resolve(r); err != nil {
		return err
	}
	return g.Sprite.Resolve(r)
}

func (g *ParticlesGroupDef) inherit() InheritScaled { return g.Inherit }
