package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-glow/config"
	"fluid-glow/core"
	"fluid-glow/panel"
	"fluid-glow/render"
	"fluid-glow/scene"
	"fluid-glow/shader"
	"fluid-glow/view"
)

type nullDevice struct {
	target        *core.Target
	width, height int
}

func (d *nullDevice) SetRenderTarget(t *core.Target)     { d.target = t }
func (d *nullDevice) RenderTarget() *core.Target         { return d.target }
func (d *nullDevice) Render(*scene.Scene, *scene.Camera) {}
func (d *nullDevice) RenderScreen(*shader.Material)      {}
func (d *nullDevice) SetSize(w, h int)                   { d.width, d.height = w, h }
func (d *nullDevice) Release(*core.Target)               {}

type stubLoader struct {
	err error
}

func (l stubLoader) LoadTextures(_ context.Context, paths ...string) ([]*scene.Texture, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]*scene.Texture, len(paths))
	for i, p := range paths {
		out[i] = scene.NewSolidTexture(p, 0, 0, 0, 255)
	}
	return out, nil
}

func (l stubLoader) LoadSVG(_ context.Context, src string) (*scene.SVGData, error) {
	return scene.LoadSVG(src)
}

func (l stubLoader) LoadModel(context.Context, string) (*scene.ModelData, error) {
	return &scene.ModelData{}, l.err
}

// recordingPanel collects added items.
type recordingPanel struct {
	items []*panel.Item
}

func (p *recordingPanel) Add(it *panel.Item) { p.items = append(p.items, it) }
func (p *recordingPanel) Update(float32)     {}

func TestWorldDefaults(t *testing.T) {
	w := NewWorldController(&nullDevice{}, nil)

	assert.Equal(t, core.Hex(0x060606), w.Scene.Background)
	require.NotNil(t, w.Scene.Fog)
	assert.Equal(t, w.Scene.Background, w.Scene.Fog.Color)
	assert.Equal(t, float32(1), w.Scene.Fog.Near)
	assert.Equal(t, float32(100), w.Scene.Fog.Far)

	assert.Equal(t, float32(30), w.Camera.FOV)
	assert.Equal(t, float32(0.5), w.Camera.Near)
	assert.Equal(t, float32(40), w.Camera.Far)
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, w.Camera.Position)
	assert.Equal(t, mgl32.Vec3{}, w.Camera.Target)

	require.Len(t, w.Scene.Lights, 2)
	hemi, dir := w.Scene.Lights[0], w.Scene.Lights[1]
	assert.Equal(t, scene.LightTypeHemisphere, hemi.Type)
	assert.Equal(t, float32(3), hemi.Intensity)
	assert.Equal(t, core.Hex(0x404040), hemi.GroundColor)
	assert.Equal(t, scene.LightTypeDirectional, dir.Type)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, dir.Position)
	assert.Equal(t, float32(2), dir.Intensity)

	assert.IsType(t, FileLoader{}, w.loader)
}

func TestWorldResize(t *testing.T) {
	dev := &nullDevice{}
	w := NewWorldController(dev, stubLoader{})
	w.Resize(1280, 720, 1.5)

	assert.Equal(t, 1920, dev.width)
	assert.Equal(t, 1080, dev.height)
	assert.Equal(t, mgl32.Vec2{1920, 1080}, w.Resolution.Value)
	assert.Equal(t, mgl32.Vec2{1.0 / 1920, 1.0 / 1080}, w.TexelSize.Value)
	assert.InDelta(t, 16.0/9, w.Aspect.Float(), 1e-6)
	assert.InDelta(t, 16.0/9, w.Camera.Aspect, 1e-6)

	// minimised windows report zero
	w.Resize(0, 0, 1)
	assert.Equal(t, mgl32.Vec2{1, 1}, w.Resolution.Value)
}

func TestWorldUpdate(t *testing.T) {
	w := NewWorldController(&nullDevice{}, stubLoader{})
	w.Update(1.5, 16, 90)
	assert.Equal(t, float32(1.5), w.Time.Float())
	assert.Equal(t, float32(90), w.Frame.Float())
}

func TestWorldLoaders(t *testing.T) {
	ctx := context.Background()
	w := NewWorldController(&nullDevice{}, stubLoader{})

	tex, err := w.LoadTexture(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", tex.Name)

	batch, err := w.LoadTextures(ctx, "a.png", "b.png")
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	svg, err := w.LoadSVG(ctx, config.TriangleSVG)
	require.NoError(t, err)
	assert.Len(t, svg.Paths, 1)

	boom := errors.New("boom")
	w = NewWorldController(&nullDevice{}, stubLoader{err: boom})
	_, err = w.LoadTexture(ctx, "a.png")
	assert.ErrorIs(t, err, boom)
	_, err = w.LoadModel(ctx, "m.glb")
	assert.ErrorIs(t, err, boom)
}

func TestFileLoaderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FileLoader{}.LoadSVG(ctx, config.TriangleSVG)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = FileLoader{}.LoadModel(ctx, "missing.glb")
	assert.ErrorIs(t, err, context.Canceled)

	data, err := FileLoader{}.LoadSVG(context.Background(), config.TriangleSVG)
	require.NoError(t, err)
	assert.Len(t, data.Paths, 1)
}

func TestCameraIgnoresInputUntilAnimateIn(t *testing.T) {
	cam := scene.NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	c := NewCameraController(cam)
	c.Resize(1000, 500)

	c.OnPointerMove(1000, 0)
	c.Update()
	assert.Equal(t, mgl32.Vec2{}, c.Mouse())
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, cam.Position)
	assert.False(t, c.Enabled())
}

func TestCameraFollowsPointer(t *testing.T) {
	cam := scene.NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	c := NewCameraController(cam)
	c.Resize(1000, 500)
	c.AnimateIn()

	c.OnPointerMove(1000, 0)
	assert.Equal(t, mgl32.Vec2{1, 1}, c.Mouse())
	c.OnPointerDown(500, 250)
	assert.Equal(t, mgl32.Vec2{0, 0}, c.Mouse())
	c.OnPointerUp(1000, 0)

	c.Update()
	// 2 % of the way to (5, 1, 10)
	assert.InDelta(t, 0.1, cam.Position.X(), 1e-6)
	assert.InDelta(t, 0.02, cam.Position.Y(), 1e-6)
	assert.InDelta(t, 10, cam.Position.Z(), 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, -2}, cam.Target)

	for i := 0; i < 2000; i++ {
		c.Update()
	}
	assert.InDelta(t, 5, cam.Position.X(), 1e-3)
	assert.InDelta(t, 1, cam.Position.Y(), 1e-3)
}

func TestCameraResizeDistance(t *testing.T) {
	cam := scene.NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	c := NewCameraController(cam)

	c.Resize(600, 900)
	assert.Equal(t, float32(14), cam.Position.Z())
	assert.InDelta(t, 600.0/900, cam.Aspect, 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, -2}, cam.Target)

	c.AnimateIn()
	c.Update()
	assert.InDelta(t, 14, cam.Position.Z(), 1e-6, "origin follows the new distance")

	c.Resize(900, 600)
	assert.Equal(t, float32(10), cam.Position.Z())
}

func newTestManager() *render.Manager {
	cam := scene.NewCamera(30, 1, 0.5, 40)
	return render.NewManager(&nullDevice{}, scene.NewScene(), cam, render.DefaultOptions())
}

func TestPanelItemsOrder(t *testing.T) {
	p := NewPanelController(newTestManager())

	var names []string
	for _, it := range p.Items() {
		names = append(names, it.Type.String()+":"+it.Name)
	}
	assert.Equal(t, []string{
		"fps:FPS",
		"divider:",
		"slider:Iterate",
		"slider:Density",
		"slider:Velocity",
		"slider:Pressure",
		"slider:Curl",
		"slider:Radius",
		"divider:",
		"slider:Thresh",
		"slider:Smooth",
		"slider:Strength",
		"slider:Radius",
		"slider:Chroma",
		"divider:",
		"slider:Post",
	}, names)
}

func TestPanelCallbacksWriteParameters(t *testing.T) {
	m := newTestManager()
	p := NewPanelController(m)
	items := p.Items()
	sim := m.Fluid()

	items[2].Set(7.4)
	assert.Equal(t, 7, sim.Iterations)
	items[3].Set(0.5)
	assert.Equal(t, float32(0.5), sim.DensityDissipation)
	items[6].Set(120)
	assert.Equal(t, float32(50), sim.CurlStrength, "clamped to max")
	items[7].Set(0.333)
	assert.Equal(t, float32(0.33), sim.Radius)

	items[11].Set(1)
	assert.Equal(t, float32(1), m.BloomStrength())
	assert.Equal(t, render.BloomFactors(1, m.BloomRadius()), m.BloomFactors())
	items[12].Set(0.5)
	assert.Equal(t, float32(0.5), m.BloomRadius())
	items[13].Set(3.26)
	assert.InDelta(t, 3.3, m.BloomDistortion(), 1e-6)
}

func TestPanelInitOnce(t *testing.T) {
	p := NewPanelController(newTestManager())
	ui := &recordingPanel{}
	p.Init(ui)
	p.Init(ui)
	assert.Len(t, ui.items, len(p.Items()))
}

func TestPanelApplyAndTogglePost(t *testing.T) {
	m := newTestManager()
	p := NewPanelController(m)

	tun := config.DefaultTunables()
	tun.CurlStrength = 12.34
	tun.BloomStrength = 5
	tun.PostProcessing = false
	p.Apply(tun)

	assert.InDelta(t, 12.3, m.Fluid().CurlStrength, 1e-5)
	assert.Equal(t, float32(2), m.BloomStrength())
	assert.False(t, m.Enabled())

	p.TogglePost()
	assert.True(t, m.Enabled())
	p.TogglePost()
	assert.False(t, m.Enabled())

	got := p.Tunables()
	assert.InDelta(t, 12.3, got.CurlStrength, 1e-5)
	assert.Equal(t, float32(2), got.BloomStrength)
	assert.False(t, got.PostProcessing)
	assert.Equal(t, tun.Iterations, got.Iterations)
}

func TestSceneControllerLifecycle(t *testing.T) {
	cam := scene.NewCamera(30, 1, 0.5, 40)
	v := view.NewSceneView(stubLoader{}, cam, config.Default().Assets)
	c := NewSceneController(v)

	c.Resize(1920, 1080)
	assert.Equal(t, 512, v.Floor.Reflector.Target.Width)

	c.Update()
	require.NoError(t, c.Ready(context.Background()))
	c.Mount()
	assert.NotNil(t, v.Floor.Mesh())
	assert.False(t, v.Group.Visible)
	c.AnimateIn()
	assert.True(t, v.Group.Visible)
}
