package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Hex builds an opaque color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{
		R: float32(v>>16&0xff) / 255,
		G: float32(v>>8&0xff) / 255,
		B: float32(v&0xff) / 255,
		A: 1,
	}
}

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// HSL returns hue, saturation and lightness, each in [0,1].
func (c Color) HSL() (h, s, l float32) {
	maxC := math32.Max(c.R, math32.Max(c.G, c.B))
	minC := math32.Min(c.R, math32.Min(c.G, c.B))
	l = (minC + maxC) / 2

	if minC == maxC {
		return 0, 0, l
	}

	delta := maxC - minC
	if l <= 0.5 {
		s = delta / (maxC + minC)
	} else {
		s = delta / (2 - maxC - minC)
	}

	switch maxC {
	case c.R:
		h = (c.G - c.B) / delta
		if c.G < c.B {
			h += 6
		}
	case c.G:
		h = (c.B-c.R)/delta + 2
	default:
		h = (c.R-c.G)/delta + 4
	}
	return h / 6, s, l
}

// OffsetHSL shifts the color in HSL space. Hue wraps; saturation and
// lightness clamp to [0,1].
func (c Color) OffsetHSL(dh, ds, dl float32) Color {
	h, s, l := c.HSL()
	return ColorFromHSL(h+dh, s+ds, l+dl, c.A)
}

func ColorFromHSL(h, s, l, a float32) Color {
	h = h - math32.Floor(h)
	s = Clamp(s, 0, 1)
	l = Clamp(l, 0, 1)

	if s == 0 {
		return Color{l, l, l, a}
	}

	var q float32
	if l <= 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return Color{
		R: hue2rgb(p, q, h+1.0/3),
		G: hue2rgb(p, q, h),
		B: hue2rgb(p, q, h-1.0/3),
		A: a,
	}
}

func hue2rgb(p, q, t float32) float32 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

// Vertex is the interleaved layout uploaded by the GL backend.
// UV1 is the second channel used by ambient-occlusion maps.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	UV1      mgl32.Vec2
	Tangent  mgl32.Vec3
}

// Uniform is a shader input shared by pointer. Several materials may hold
// the same *Uniform; writing Value is seen by every draw that binds it.
type Uniform struct {
	Value any
}

func NewUniform(v any) *Uniform {
	return &Uniform{Value: v}
}

// Float returns Value as float32, or 0 if it holds another type.
func (u *Uniform) Float() float32 {
	if u == nil {
		return 0
	}
	switch v := u.Value.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	}
	return 0
}

type Uniforms map[string]*Uniform

// Set writes v into the named uniform, creating it if needed. The *Uniform
// identity is kept so sharers observe the change.
func (u Uniforms) Set(name string, v any) {
	if cur, ok := u[name]; ok && cur != nil {
		cur.Value = v
		return
	}
	u[name] = &Uniform{Value: v}
}

func (u Uniforms) Get(name string) any {
	if cur, ok := u[name]; ok && cur != nil {
		return cur.Value
	}
	return nil
}

func (u Uniforms) Float(name string) float32 {
	return u[name].Float()
}
