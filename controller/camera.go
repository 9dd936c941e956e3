package controller

import (
	"github.com/go-gl/mathgl/mgl32"

	"fluid-glow/scene"
)

const (
	cameraLerp      = 0.02
	cameraLandscape = 10
	cameraPortrait  = 14
)

var (
	cameraLookAt   = mgl32.Vec3{0, 0, -2}
	cameraTargetXY = mgl32.Vec2{5, 1}
)

// CameraController eases the camera toward a point offset by the pointer.
// It ignores input until AnimateIn.
type CameraController struct {
	camera *scene.Camera

	mouse  mgl32.Vec2
	origin mgl32.Vec3

	width, height int
	enabled       bool
}

func NewCameraController(camera *scene.Camera) *CameraController {
	return &CameraController{
		camera: camera,
		origin: camera.Position,
		width:  1,
		height: 1,
	}
}

func (c *CameraController) OnPointerDown(x, y float32) { c.onPointer(x, y) }
func (c *CameraController) OnPointerMove(x, y float32) { c.onPointer(x, y) }
func (c *CameraController) OnPointerUp(x, y float32)   { c.onPointer(x, y) }

// onPointer maps logical pixels to [-1, 1] with +Y up.
func (c *CameraController) onPointer(x, y float32) {
	if !c.enabled {
		return
	}
	c.mouse = mgl32.Vec2{
		x/float32(c.width)*2 - 1,
		1 - y/float32(c.height)*2,
	}
}

// Resize takes the logical size. Portrait windows pull the camera back.
func (c *CameraController) Resize(width, height int) {
	c.width, c.height = max(width, 1), max(height, 1)
	c.camera.UpdateAspectRatio(float32(c.width), float32(c.height))

	z := float32(cameraLandscape)
	if width < height {
		z = cameraPortrait
	}
	p := c.camera.Position
	c.camera.SetPosition(mgl32.Vec3{p.X(), p.Y(), z})
	c.origin[2] = z
	c.camera.LookAt(cameraLookAt)
}

func (c *CameraController) Update() {
	if !c.enabled {
		return
	}
	target := mgl32.Vec3{
		c.origin.X() + cameraTargetXY.X()*c.mouse.X(),
		c.origin.Y() + cameraTargetXY.Y()*c.mouse.Y(),
		c.origin.Z(),
	}
	p := c.camera.Position
	c.camera.SetPosition(p.Add(target.Sub(p).Mul(cameraLerp)))
	c.camera.LookAt(cameraLookAt)
}

// AnimateIn starts following the pointer. It cannot be undone.
func (c *CameraController) AnimateIn() {
	c.enabled = true
}

func (c *CameraController) Enabled() bool { return c.enabled }

func (c *CameraController) Mouse() mgl32.Vec2 { return c.mouse }
