package fluid

import (
	"testing"

	"fluid-glow/core"
	"fluid-glow/shader"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draw struct {
	target   string
	material string
}

type fakeDevice struct {
	target   *core.Target
	draws    []draw
	released []*core.Target
}

func (d *fakeDevice) SetRenderTarget(t *core.Target) { d.target = t }

func (d *fakeDevice) RenderScreen(m *shader.Material) {
	d.draws = append(d.draws, draw{target: d.target.Name, material: m.Name})
}

func (d *fakeDevice) Release(t *core.Target) { d.released = append(d.released, t) }

func TestDefaults(t *testing.T) {
	s := New(&fakeDevice{}, DefaultOptions())
	assert.Equal(t, 3, s.Iterations)
	assert.Equal(t, float32(0.97), s.DensityDissipation)
	assert.Equal(t, float32(0.98), s.VelocityDissipation)
	assert.Equal(t, float32(0.8), s.PressureDissipation)
	assert.Equal(t, float32(0), s.CurlStrength)
	assert.Equal(t, float32(0.2), s.Radius)
	assert.Equal(t, 512, s.density.read.Width)
	assert.Equal(t, 128, s.velocity.read.Width)
}

func TestUpdatePassSequence(t *testing.T) {
	dev := &fakeDevice{}
	s := New(dev, DefaultOptions())
	s.Update()

	names := make([]string, len(dev.draws))
	for i, d := range dev.draws {
		names[i] = d.material
	}
	assert.Equal(t, []string{
		"fluid.curl",
		"fluid.vorticity",
		"fluid.divergence",
		"fluid.clear",
		"fluid.pressure", "fluid.pressure", "fluid.pressure",
		"fluid.gradientSubtract",
		"fluid.advection",
		"fluid.advection",
	}, names)
	assert.Equal(t, "fluid.curl", dev.draws[0].target)
}

func TestUpdateDrainsSplats(t *testing.T) {
	dev := &fakeDevice{}
	opts := DefaultOptions()
	opts.Iterations = 5
	s := New(dev, opts)

	s.Splats = append(s.Splats,
		Splat{X: 0.5, Y: 0.5, DX: 10, DY: -10},
		Splat{X: 0.2, Y: 0.7, DX: 1, DY: 1},
	)
	s.Update()

	assert.Empty(t, s.Splats)
	assert.Len(t, dev.draws, 2*2+7+5)
	assert.Equal(t, "fluid.splat", dev.draws[0].material)
	assert.Contains(t, dev.draws[0].target, "fluid.velocity")
	assert.Contains(t, dev.draws[1].target, "fluid.density")

	u := s.splat.Uniforms
	assert.Equal(t, mgl32.Vec2{0.2, 0.7}, u.Get("point"))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, u.Get("color"))
	assert.InDelta(t, 0.002, u.Float("radius"), 1e-7)
}

func TestOutputTracksDensity(t *testing.T) {
	dev := &fakeDevice{}
	s := New(dev, DefaultOptions())
	out := s.Output()

	s.Update()
	assert.Same(t, out, s.Output())
	assert.Same(t, s.density.read, out.Value)

	// the last draw wrote the target that is now read
	last := dev.draws[len(dev.draws)-1]
	assert.Equal(t, s.density.read.Name, last.target)
}

func TestSetAspectSharesUniform(t *testing.T) {
	s := New(&fakeDevice{}, DefaultOptions())
	aspect := core.NewUniform(float32(1.5))
	s.SetAspect(aspect)

	aspect.Value = float32(2)
	assert.Equal(t, float32(2), s.splat.Uniforms.Float("aspectRatio"))
}

func TestDisposeReleasesTargets(t *testing.T) {
	dev := &fakeDevice{}
	s := New(dev, DefaultOptions())
	s.Dispose()
	require.Len(t, dev.released, 8)
	assert.ElementsMatch(t, s.Targets(), dev.released)
}

func TestMaterialsHaveDistinctPrograms(t *testing.T) {
	s := New(&fakeDevice{}, DefaultOptions())
	keys := map[string]bool{}
	for _, m := range s.Materials() {
		assert.Contains(t, m.Program.Fragment, "#version 410 core")
		keys[m.Program.Key] = true
	}
	assert.Len(t, keys, 8)
}
