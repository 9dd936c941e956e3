package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera aimed at a world-space target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32 // vertical, degrees
	Aspect   float32
	Near     float32
	Far      float32

	// projection, when set, replaces the perspective derived from the fields above
	projection *mgl32.Mat4
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	return &Camera{
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.Aspect = width / height
	}
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
}

func (c *Camera) LookAt(target mgl32.Vec3) {
	c.Target = target
}

func (c *Camera) Forward() mgl32.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), c.Up)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.projection != nil {
		return *c.projection
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// SetProjectionMatrix pins the projection; pass nil to go back to the
// perspective computed from FOV, Aspect, Near and Far.
func (c *Camera) SetProjectionMatrix(m *mgl32.Mat4) {
	if m == nil {
		c.projection = nil
		return
	}
	p := *m
	c.projection = &p
}

func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}
