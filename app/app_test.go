package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-glow/config"
	"fluid-glow/core"
	"fluid-glow/platform"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

type recordingDevice struct {
	target        *core.Target
	width, height int
	renders       int
	screens       int
}

func (d *recordingDevice) SetRenderTarget(t *core.Target)     { d.target = t }
func (d *recordingDevice) RenderTarget() *core.Target         { return d.target }
func (d *recordingDevice) Render(*scene.Scene, *scene.Camera) { d.renders++ }
func (d *recordingDevice) RenderScreen(*shader.Material)      { d.screens++ }
func (d *recordingDevice) SetSize(w, h int)                   { d.width, d.height = w, h }
func (d *recordingDevice) Release(*core.Target)               {}

type memLoader struct {
	textureErr error
}

func (l memLoader) LoadTextures(_ context.Context, paths ...string) ([]*scene.Texture, error) {
	if l.textureErr != nil {
		return nil, l.textureErr
	}
	out := make([]*scene.Texture, len(paths))
	for i, p := range paths {
		out[i] = scene.NewSolidTexture(p, 128, 128, 128, 255)
	}
	return out, nil
}

func (l memLoader) LoadSVG(_ context.Context, src string) (*scene.SVGData, error) {
	return scene.LoadSVG(src)
}

func (l memLoader) LoadModel(context.Context, string) (*scene.ModelData, error) {
	return nil, errors.New("no models")
}

func newTestApp(t *testing.T, opts Options) (*App, *recordingDevice) {
	t.Helper()
	dev := &recordingDevice{}
	if opts.Loader == nil {
		opts.Loader = memLoader{}
	}
	a := New(dev, opts)
	t.Cleanup(a.Dispose)
	return a, dev
}

func waitReady(t *testing.T, a *App) {
	t.Helper()
	frame := core.Frame{Time: 16, Delta: 16, Number: 1}
	require.Eventually(t, func() bool {
		a.Update(frame)
		return a.Ready()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStartupHidesSceneUntilReady(t *testing.T) {
	var titles []string
	a, _ := newTestApp(t, Options{Title: func(s string) { titles = append(titles, s) }})
	a.Resize(1280, 720, 1)

	assert.False(t, a.View.Group.Visible)
	assert.False(t, a.Camera.Enabled())
	assert.Same(t, a.View.Group, a.World.Scene.Root.Children[0])

	a.Update(core.Frame{Time: 16, Delta: 16, Number: 1})
	assert.Nil(t, a.Keyboard.Selected(), "panel is filled on ready")

	a.Start(context.Background())
	waitReady(t, a)

	assert.True(t, a.View.Group.Visible)
	assert.True(t, a.Camera.Enabled())
	assert.NotNil(t, a.View.Floor.Mesh())
	require.NotNil(t, a.Keyboard.Selected())
	assert.Equal(t, "Iterate", a.Keyboard.Selected().Name)
	require.NotEmpty(t, titles)
	assert.Contains(t, titles[len(titles)-1], "Iterate")
}

func TestFloorFailureStillRevealsScene(t *testing.T) {
	a, _ := newTestApp(t, Options{Loader: memLoader{textureErr: errors.New("missing")}})
	a.Resize(800, 600, 1)
	a.Start(context.Background())
	waitReady(t, a)

	assert.Nil(t, a.View.Floor.Mesh())
	assert.True(t, a.View.Group.Visible)
	assert.Len(t, a.View.Triangle.Group.Children, 1)
}

func TestResizeFanOut(t *testing.T) {
	a, dev := newTestApp(t, Options{})
	a.Resize(600, 900, 2)

	assert.Equal(t, 1200, dev.width)
	assert.Equal(t, 1800, dev.height)
	assert.Equal(t, float32(14), a.World.Camera.Position.Z())
	assert.InDelta(t, 600.0/900, a.World.Aspect.Float(), 1e-6)
	assert.Equal(t, 256, a.View.Floor.Reflector.Target.Width)
	assert.Equal(t, 1200, a.Render.Targets()[0].Width)
}

func TestUpdateDrivesFrame(t *testing.T) {
	a, dev := newTestApp(t, Options{})
	a.Resize(800, 600, 1)

	a.Update(core.Frame{Time: 1500, Delta: 16, Number: 3})
	assert.Equal(t, float32(1.5), a.World.Time.Float())
	assert.Equal(t, float32(3), a.World.Frame.Float())
	assert.Equal(t, 1, dev.renders)
	assert.NotZero(t, dev.screens)

	a.OnKey(platform.KeyP, 0)
	assert.False(t, a.Render.Enabled())
	screens := dev.screens
	a.Update(core.Frame{Time: 1516, Delta: 16, Number: 4})
	assert.Equal(t, 2, dev.renders)
	assert.Equal(t, screens, dev.screens, "bypass draws the scene only")
}

func TestPointerReachesFluid(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a.Resize(800, 600, 1)

	a.OnPointerDown(100, 100)
	a.OnPointerMove(120, 90)
	require.Len(t, a.Render.Fluid().Splats, 1)
	assert.Equal(t, float32(100), a.Render.Fluid().Splats[0].DX)

	// camera ignores the pointer until ready
	assert.Zero(t, a.Camera.Mouse())
}

func TestKeys(t *testing.T) {
	quit := 0
	a, _ := newTestApp(t, Options{Quit: func() { quit++ }})
	a.Start(context.Background())
	waitReady(t, a)

	a.OnKey(platform.KeyEscape, 0)
	assert.Equal(t, 1, quit)

	a.OnKey(platform.KeyTab, 0)
	assert.Equal(t, "Density", a.Keyboard.Selected().Name)
	a.OnKey(platform.KeyTab, platform.ModShift)
	assert.Equal(t, "Iterate", a.Keyboard.Selected().Name)
	a.OnKey(platform.KeyDown, 0)
	a.OnKey(platform.KeyUp, 0)
	assert.Equal(t, "Iterate", a.Keyboard.Selected().Name)

	before := a.Render.Fluid().Iterations
	a.OnKey(platform.KeyRight, 0)
	assert.Equal(t, before+1, a.Render.Fluid().Iterations)
	a.OnKey(platform.KeyLeft, 0)
	assert.Equal(t, before, a.Render.Fluid().Iterations)

	a.OnKey(platform.KeyRight, 0)
	a.OnKey(platform.KeyR, 0)
	assert.Equal(t, config.DefaultTunables().Iterations, a.Render.Fluid().Iterations)
}

func TestSaveWritesLiveTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a, _ := newTestApp(t, Options{ConfigPath: path})

	a.Panel.Items()[6].Set(20)
	a.OnKey(platform.KeyS, 0)

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(20), got.Tunables.CurlStrength)
}

func TestTunablesChannelApplied(t *testing.T) {
	ch := make(chan config.Tunables, 1)
	a, _ := newTestApp(t, Options{Tunables: ch})

	tun := config.DefaultTunables()
	tun.BloomStrength = 1.25
	tun.PostProcessing = false
	ch <- tun
	a.Update(core.Frame{Time: 16, Delta: 16, Number: 1})

	assert.Equal(t, float32(1.25), a.Render.BloomStrength())
	assert.False(t, a.Render.Enabled())

	close(ch)
	a.Update(core.Frame{Time: 32, Delta: 16, Number: 2})
	assert.Nil(t, a.tunables)
}
