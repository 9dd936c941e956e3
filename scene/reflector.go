package scene

import (
	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
)

// textureBias maps clip space [-1,1] to texture space [0,1].
var textureBias = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// Reflector renders the scene mirrored about its local XY plane into an
// off-screen target. Attach Node under the surface that shows the
// reflection; the surface reads TargetUniform through TextureMatrixUniform.
type Reflector struct {
	Node     *Node
	Target   *core.Target
	ClipBias float32

	TargetUniform        *core.Uniform
	TextureMatrixUniform *core.Uniform

	camera *Camera
}

func NewReflector(width, height int) *Reflector {
	target := core.NewTarget("reflector", width, height, core.TargetOptions{DepthBuffer: true})
	return &Reflector{
		Node:                 NewNode("Reflector"),
		Target:               target,
		TargetUniform:        core.NewUniform(target),
		TextureMatrixUniform: core.NewUniform(mgl32.Ident4()),
		camera:               NewCamera(50, 1, 0.1, 2000),
	}
}

func (rf *Reflector) SetSize(width, height int) {
	rf.Target.SetSize(width, height)
}

// VirtualCamera is the mirrored camera used by the last Update.
func (rf *Reflector) VirtualCamera() *Camera {
	return rf.camera
}

// Update renders the mirrored view into Target and restores the renderer's
// previous target. It does nothing when the camera is behind the plane.
func (rf *Reflector) Update(r Renderer, s *Scene, c *Camera) {
	world := rf.Node.WorldMatrix()
	origin := world.Col(3).Vec3()
	normal := world.Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3().Normalize()

	view := origin.Sub(c.Position)
	if view.Dot(normal) > 0 {
		return
	}
	view = reflect(view, normal).Mul(-1).Add(origin)

	lookAt := c.Position.Add(c.Forward())
	target := reflect(origin.Sub(lookAt), normal).Mul(-1).Add(origin)

	vc := rf.camera
	vc.Position = view
	vc.Target = target
	vc.Up = reflect(c.Up, normal)
	vc.FOV, vc.Aspect, vc.Near, vc.Far = c.FOV, c.Aspect, c.Near, c.Far

	proj := c.ProjectionMatrix()
	viewMatrix := vc.ViewMatrix()
	rf.TextureMatrixUniform.Value = textureBias.Mul4(proj).Mul4(viewMatrix).Mul4(world)

	// Oblique near plane so geometry behind the mirror is clipped.
	n := viewMatrix.Mul4x1(normal.Vec4(0)).Vec3().Normalize()
	p := viewMatrix.Mul4x1(origin.Vec4(1)).Vec3()
	clip := n.Vec4(-n.Dot(p))

	q := mgl32.Vec4{
		(sign(clip.X()) + proj[8]) / proj[0],
		(sign(clip.Y()) + proj[9]) / proj[5],
		-1,
		(1 + proj[10]) / proj[14],
	}
	clip = clip.Mul(2 / clip.Dot(q))
	proj[2] = clip.X()
	proj[6] = clip.Y()
	proj[10] = clip.Z() + 1 - rf.ClipBias
	proj[14] = clip.W()
	vc.SetProjectionMatrix(&proj)

	prev := r.RenderTarget()
	r.SetRenderTarget(rf.Target)
	r.Render(s, vc)
	r.SetRenderTarget(prev)
}

func reflect(v, normal mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(normal.Mul(2 * v.Dot(normal)))
}

func sign(f float32) float32 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
