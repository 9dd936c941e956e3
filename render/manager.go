package render

import (
	"fmt"

	"fluid-glow/core"
	"fluid-glow/fluid"
	"fluid-glow/scene"
	"fluid-glow/shader"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
)

// NumMips is the depth of the bloom blur chain.
const NumMips = 5

// KernelSizes are the blur kernel radii per mip level.
var KernelSizes = [NumMips]int{3, 5, 7, 9, 11}

// mipWeights are the per-level bloom weights before radius and strength.
var mipWeights = [NumMips]float32{1, 0.8, 0.6, 0.4, 0.2}

var (
	blurDirectionX = mgl32.Vec2{1, 0}
	blurDirectionY = mgl32.Vec2{0, 1}
)

type Options struct {
	LuminosityThreshold float32
	LuminositySmoothing float32
	BloomStrength       float32
	BloomRadius         float32
	BloomDistortion     float32
	Fluid               fluid.Options

	// Aspect, when set, is shared with the fluid splat pass.
	Aspect *core.Uniform
}

func DefaultOptions() Options {
	return Options{
		LuminosityThreshold: 0.1,
		LuminositySmoothing: 1,
		BloomStrength:       0.3,
		BloomRadius:         0.2,
		BloomDistortion:     1.5,
		Fluid:               fluid.DefaultOptions(),
	}
}

// BloomFactors returns strength · lerp(b, 1.2 − b, radius) for each mip
// weight b.
func BloomFactors(strength, radius float32) []float32 {
	out := make([]float32, NumMips)
	for i, b := range mipWeights {
		out[i] = strength * core.Lerp(b, 1.2-b, radius)
	}
	return out
}

// MipSizes returns the bright-pass and per-level blur sizes for a physical
// framebuffer size: level 0 is half the floor power of two, and each later
// level halves with integer truncation. Sizes may reach 0; the backend
// allocates at least 1×1.
func MipSizes(width, height int) [NumMips][2]int {
	var out [NumMips][2]int
	w := core.FloorPowerOfTwo(width) / 2
	h := core.FloorPowerOfTwo(height) / 2
	for i := range out {
		out[i] = [2]int{w, h}
		w /= 2
		h /= 2
	}
	return out
}

type pointerState struct {
	x, y float32
	init bool
}

// Manager owns the post-processing pipeline.
type Manager struct {
	device Device
	scene  *scene.Scene
	camera *scene.Camera
	runner Runner

	width, height int

	enabled bool
	pointer pointerState

	bloomStrength float32
	bloomRadius   float32

	renderTarget       *core.Target
	renderTargetBright *core.Target
	targetsHorizontal  [NumMips]*core.Target
	targetsVertical    [NumMips]*core.Target

	fluid *fluid.Simulation

	luminosity     *shader.Material
	blurs          [NumMips]*shader.Material
	bloomComposite *shader.Material
	composite      *shader.Material

	passes []*Pass
	bypass *Pass
}

func NewManager(device Device, s *scene.Scene, camera *scene.Camera, opts Options) *Manager {
	m := &Manager{
		device:        device,
		scene:         s,
		camera:        camera,
		runner:        Runner{Device: device},
		width:         1,
		height:        1,
		enabled:       true,
		bloomStrength: opts.BloomStrength,
		bloomRadius:   opts.BloomRadius,
	}

	m.renderTarget = core.NewTarget("scene", 1, 1, core.TargetOptions{DepthBuffer: true})
	m.renderTargetBright = core.NewTarget("bright", 1, 1, core.TargetOptions{})
	for i := 0; i < NumMips; i++ {
		m.targetsHorizontal[i] = m.renderTargetBright.Clone(fmt.Sprintf("bloom.h%d", i))
		m.targetsVertical[i] = m.renderTargetBright.Clone(fmt.Sprintf("bloom.v%d", i))
	}

	m.fluid = fluid.New(device, opts.Fluid)
	if opts.Aspect != nil {
		m.fluid.SetAspect(opts.Aspect)
	}

	m.luminosity = newLuminosityMaterial(opts.LuminosityThreshold, opts.LuminositySmoothing)
	for i := range m.blurs {
		m.blurs[i] = newBlurMaterial(KernelSizes[i])
	}
	m.bloomComposite = newBloomCompositeMaterial(m.targetsVertical[:], m.BloomFactors())
	m.composite = newCompositeMaterial(m.fluid.Output(), opts.BloomDistortion)

	m.passes = m.buildPasses()
	m.bypass = &Pass{Name: "scene.screen", Scene: s, Camera: camera}
	return m
}

func (m *Manager) buildPasses() []*Pass {
	passes := []*Pass{
		{Name: "scene", Target: m.renderTarget, Scene: m.scene, Camera: m.camera},
		{Name: "luminosity", Target: m.renderTargetBright, Material: m.luminosity, Bindings: []Binding{
			{Name: "tMap", Value: m.renderTarget},
		}},
	}

	input := m.renderTargetBright
	for i := 0; i < NumMips; i++ {
		h, v := m.targetsHorizontal[i], m.targetsVertical[i]
		passes = append(passes,
			&Pass{Name: fmt.Sprintf("blur.h%d", i), Target: h, Material: m.blurs[i], Bindings: []Binding{
				{Name: "tMap", Value: input},
				{Name: "uDirection", Value: blurDirectionX},
			}},
			&Pass{Name: fmt.Sprintf("blur.v%d", i), Target: v, Material: m.blurs[i], Bindings: []Binding{
				{Name: "tMap", Value: h},
				{Name: "uDirection", Value: blurDirectionY},
			}},
		)
		input = v
	}

	return append(passes,
		&Pass{Name: "bloom.composite", Target: m.targetsHorizontal[0], Material: m.bloomComposite},
		&Pass{Name: "composite", Material: m.composite, Bindings: []Binding{
			{Name: "tScene", Value: m.renderTarget},
			{Name: "tBloom", Value: m.targetsHorizontal[0]},
		}},
	)
}

// Passes returns the declared frame, in execution order.
func (m *Manager) Passes() []*Pass {
	return m.passes
}

func (m *Manager) Fluid() *fluid.Simulation {
	return m.fluid
}

// BloomFactors computes the factors from the current strength and radius.
func (m *Manager) BloomFactors() []float32 {
	return BloomFactors(m.bloomStrength, m.bloomRadius)
}

func (m *Manager) BloomStrength() float32 { return m.bloomStrength }
func (m *Manager) BloomRadius() float32   { return m.bloomRadius }

func (m *Manager) SetBloomStrength(v float32) {
	m.bloomStrength = v
	m.bloomComposite.Uniforms.Set("uBloomFactors", m.BloomFactors())
}

func (m *Manager) SetBloomRadius(v float32) {
	m.bloomRadius = v
	m.bloomComposite.Uniforms.Set("uBloomFactors", m.BloomFactors())
}

func (m *Manager) LuminosityThreshold() float32 { return m.luminosity.Uniforms.Float("uThreshold") }
func (m *Manager) LuminositySmoothing() float32 { return m.luminosity.Uniforms.Float("uSmoothing") }
func (m *Manager) BloomDistortion() float32     { return m.composite.Uniforms.Float("uBloomDistortion") }

func (m *Manager) SetLuminosityThreshold(v float32) { m.luminosity.Uniforms.Set("uThreshold", v) }
func (m *Manager) SetLuminositySmoothing(v float32) { m.luminosity.Uniforms.Set("uSmoothing", v) }
func (m *Manager) SetBloomDistortion(v float32)     { m.composite.Uniforms.Set("uBloomDistortion", v) }

func (m *Manager) Enabled() bool { return m.enabled }

// SetEnabled toggles post-processing. Disabled frames draw the scene
// straight to the screen and ignore pointer input.
func (m *Manager) SetEnabled(enabled bool) {
	if m.enabled == enabled {
		return
	}
	m.enabled = enabled
	log.Info().Bool("enabled", enabled).Msg("post-processing")
}

// ── Input ─────────────────────────────────────────────────────────────────────

func (m *Manager) OnPointerDown(x, y float32) { m.onPointer(x, y) }
func (m *Manager) OnPointerMove(x, y float32) { m.onPointer(x, y) }
func (m *Manager) OnPointerUp(x, y float32)   { m.onPointer(x, y) }

// onPointer turns pointer motion in logical pixels into a fluid splat. The
// first event only records a baseline.
func (m *Manager) onPointer(x, y float32) {
	if !m.enabled {
		return
	}
	if !m.pointer.init {
		m.pointer = pointerState{x: x, y: y, init: true}
	}

	dx := x - m.pointer.x
	dy := y - m.pointer.y
	m.pointer.x, m.pointer.y = x, y

	if dx == 0 && dy == 0 {
		return
	}
	m.fluid.Splats = append(m.fluid.Splats, fluid.Splat{
		X:  x / float32(m.width),
		Y:  1 - y/float32(m.height),
		DX: dx * 5,
		DY: dy * -5,
	})
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// Resize takes the logical size and device pixel ratio. Targets are resized
// in place, so the declared passes stay valid.
func (m *Manager) Resize(width, height int, dpr float64) {
	m.width = width
	m.height = height

	pw, ph := core.PhysicalSize(width, height, dpr)
	m.device.SetSize(pw, ph)
	m.renderTarget.SetSize(pw, ph)

	sizes := MipSizes(pw, ph)
	m.renderTargetBright.SetSize(sizes[0][0], sizes[0][1])
	for i, sz := range sizes {
		m.targetsHorizontal[i].SetSize(sz[0], sz[1])
		m.targetsVertical[i].SetSize(sz[0], sz[1])
		m.blurs[i].Uniforms.Set("uResolution", mgl32.Vec2{
			float32(max(sz[0], 1)),
			float32(max(sz[1], 1)),
		})
	}
}

func (m *Manager) Update() {
	if !m.enabled {
		m.runner.Run(m.bypass)
		return
	}
	m.fluid.Update()
	m.runner.RunAll(m.passes)
}

// Materials lists every fullscreen material the frame draws with, the
// fluid solver's included.
func (m *Manager) Materials() []*shader.Material {
	out := []*shader.Material{m.luminosity}
	out = append(out, m.blurs[:]...)
	out = append(out, m.bloomComposite, m.composite)
	return append(out, m.fluid.Materials()...)
}

// Targets lists the pipeline's own render targets.
func (m *Manager) Targets() []*core.Target {
	out := []*core.Target{m.renderTarget, m.renderTargetBright}
	out = append(out, m.targetsHorizontal[:]...)
	return append(out, m.targetsVertical[:]...)
}

func (m *Manager) Dispose() {
	for _, t := range m.Targets() {
		m.device.Release(t)
	}
	m.fluid.Dispose()
}
