// Package controller holds the application controllers. Each is a plain
// struct owned by the App; there is no package-level state.
package controller

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"fluid-glow/core"
	"fluid-glow/render"
	"fluid-glow/scene"
	"fluid-glow/view"
)

var (
	worldBackground = core.Hex(0x060606)
	hemiSky         = core.Hex(0x606060)
	hemiGround      = core.Hex(0x404040)
)

// FileLoader reads assets from disk. SVG sources may also be data URIs.
type FileLoader struct{}

func (FileLoader) LoadTextures(ctx context.Context, paths ...string) ([]*scene.Texture, error) {
	return scene.LoadTextures(ctx, paths...)
}

func (FileLoader) LoadSVG(ctx context.Context, src string) (*scene.SVGData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scene.LoadSVG(src)
}

func (FileLoader) LoadModel(ctx context.Context, path string) (*scene.ModelData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scene.LoadModel(path)
}

// WorldController owns the device, the scene and camera, and the uniforms
// every material can share.
type WorldController struct {
	Device render.Device
	Scene  *scene.Scene
	Camera *scene.Camera

	Resolution *core.Uniform // vec2, physical pixels
	TexelSize  *core.Uniform // vec2
	Aspect     *core.Uniform // float
	Time       *core.Uniform // float, seconds
	Frame      *core.Uniform // float

	loader view.Loader
}

// NewWorldController builds the scene environment. A nil loader reads from
// disk.
func NewWorldController(device render.Device, loader view.Loader) *WorldController {
	if loader == nil {
		loader = FileLoader{}
	}

	s := scene.NewScene()
	s.Background = worldBackground
	s.Fog = &scene.Fog{Color: worldBackground, Near: 1, Far: 100}

	cam := scene.NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	cam.LookAt(mgl32.Vec3{})

	s.AddLight(&scene.Light{
		Type:        scene.LightTypeHemisphere,
		Color:       hemiSky,
		GroundColor: hemiGround,
		Intensity:   3,
	})
	s.AddLight(&scene.Light{
		Type:      scene.LightTypeDirectional,
		Position:  mgl32.Vec3{1, 1, 1},
		Color:     core.ColorWhite,
		Intensity: 2,
	})

	return &WorldController{
		Device:     device,
		Scene:      s,
		Camera:     cam,
		Resolution: core.NewUniform(mgl32.Vec2{}),
		TexelSize:  core.NewUniform(mgl32.Vec2{}),
		Aspect:     core.NewUniform(float32(1)),
		Time:       core.NewUniform(float32(0)),
		Frame:      core.NewUniform(float32(0)),
		loader:     loader,
	}
}

// Resize takes the logical size and device pixel ratio.
func (w *WorldController) Resize(width, height int, dpr float64) {
	pw, ph := core.PhysicalSize(width, height, dpr)
	pw, ph = max(pw, 1), max(ph, 1)

	w.Device.SetSize(pw, ph)
	w.Resolution.Value = mgl32.Vec2{float32(pw), float32(ph)}
	w.TexelSize.Value = mgl32.Vec2{1 / float32(pw), 1 / float32(ph)}
	w.Aspect.Value = float32(pw) / float32(ph)
	w.Camera.UpdateAspectRatio(float32(pw), float32(ph))
}

// Update takes the elapsed time in seconds, the frame delta in milliseconds
// and the frame number.
func (w *WorldController) Update(time, delta float64, frame int) {
	w.Time.Value = float32(time)
	w.Frame.Value = float32(frame)
}

func (w *WorldController) LoadTexture(ctx context.Context, path string) (*scene.Texture, error) {
	textures, err := w.loader.LoadTextures(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(textures) != 1 {
		return nil, fmt.Errorf("texture %q: loader returned %d textures", path, len(textures))
	}
	return textures[0], nil
}

// LoadTextures loads a batch; the batch fails if any texture fails.
func (w *WorldController) LoadTextures(ctx context.Context, paths ...string) ([]*scene.Texture, error) {
	return w.loader.LoadTextures(ctx, paths...)
}

func (w *WorldController) LoadSVG(ctx context.Context, src string) (*scene.SVGData, error) {
	return w.loader.LoadSVG(ctx, src)
}

func (w *WorldController) LoadModel(ctx context.Context, path string) (*scene.ModelData, error) {
	return w.loader.LoadModel(ctx, path)
}
