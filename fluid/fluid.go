// Package fluid is a GPU stable-fluids solver. Every step is a full-screen
// pass drawn through a Device into ping-ponged render targets.
package fluid

import (
	"fluid-glow/core"
	"fluid-glow/shader"

	"github.com/go-gl/mathgl/mgl32"
)

// Device is the slice of the rendering backend the solver draws with.
type Device interface {
	SetRenderTarget(t *core.Target)
	RenderScreen(m *shader.Material)
	Release(t *core.Target)
}

// Splat is a pointer impulse in UV space: position (X, Y) and force
// (DX, DY).
type Splat struct {
	X, Y   float32
	DX, DY float32
}

type Options struct {
	SimResolution       int
	DyeResolution       int
	Iterations          int
	DensityDissipation  float32
	VelocityDissipation float32
	PressureDissipation float32
	CurlStrength        float32
	Radius              float32
}

func DefaultOptions() Options {
	return Options{
		SimResolution:       128,
		DyeResolution:       512,
		Iterations:          3,
		DensityDissipation:  0.97,
		VelocityDissipation: 0.98,
		PressureDissipation: 0.8,
		CurlStrength:        0,
		Radius:              0.2,
	}
}

// TimeStep is the fixed solver step in seconds.
const TimeStep = 0.016

type doubleTarget struct {
	read, write *core.Target
}

func newDoubleTarget(name string, size int, filter core.Filter) *doubleTarget {
	opts := core.TargetOptions{Format: core.FormatRGBA16F, Filter: filter}
	return &doubleTarget{
		read:  core.NewTarget(name+".read", size, size, opts),
		write: core.NewTarget(name+".write", size, size, opts),
	}
}

func (d *doubleTarget) swap() {
	d.read, d.write = d.write, d.read
}

// Simulation holds the solver state. The exported tunables are read on every
// Update and may be changed between frames.
type Simulation struct {
	Iterations          int
	DensityDissipation  float32
	VelocityDissipation float32
	PressureDissipation float32
	CurlStrength        float32
	Radius              float32

	// Splats queued since the last Update.
	Splats []Splat

	device Device

	velocity *doubleTarget
	density  *doubleTarget
	pressure *doubleTarget

	curl       *core.Target
	divergence *core.Target

	splat            *shader.Material
	curlPass         *shader.Material
	vorticity        *shader.Material
	divergencePass   *shader.Material
	clear            *shader.Material
	pressurePass     *shader.Material
	gradientSubtract *shader.Material
	advection        *shader.Material

	output *core.Uniform
}

func New(device Device, opts Options) *Simulation {
	sim := opts.SimResolution
	dye := opts.DyeResolution
	simTexel := mgl32.Vec2{1 / float32(sim), 1 / float32(sim)}

	s := &Simulation{
		Iterations:          opts.Iterations,
		DensityDissipation:  opts.DensityDissipation,
		VelocityDissipation: opts.VelocityDissipation,
		PressureDissipation: opts.PressureDissipation,
		CurlStrength:        opts.CurlStrength,
		Radius:              opts.Radius,

		device:   device,
		velocity: newDoubleTarget("fluid.velocity", sim, core.FilterLinear),
		density:  newDoubleTarget("fluid.density", dye, core.FilterLinear),
		pressure: newDoubleTarget("fluid.pressure", sim, core.FilterNearest),
		curl: core.NewTarget("fluid.curl", sim, sim, core.TargetOptions{
			Format: core.FormatRGBA16F, Filter: core.FilterNearest,
		}),
		divergence: core.NewTarget("fluid.divergence", sim, sim, core.TargetOptions{
			Format: core.FormatRGBA16F, Filter: core.FilterNearest,
		}),
	}

	texel := func() *core.Uniform { return core.NewUniform(simTexel) }
	material := func(name, fragment string, u core.Uniforms) *shader.Material {
		if _, ok := u["texelSize"]; !ok {
			u["texelSize"] = texel()
		}
		return shader.NewMaterial(name, shader.ScreenProgram(name, fragment), u)
	}

	s.splat = material("fluid.splat", splatFragment, core.Uniforms{
		"uTarget":     core.NewUniform(nil),
		"aspectRatio": core.NewUniform(float32(1)),
		"color":       core.NewUniform(mgl32.Vec3{}),
		"point":       core.NewUniform(mgl32.Vec2{}),
		"radius":      core.NewUniform(float32(0)),
	})
	s.curlPass = material("fluid.curl", curlFragment, core.Uniforms{
		"uVelocity": core.NewUniform(nil),
	})
	s.vorticity = material("fluid.vorticity", vorticityFragment, core.Uniforms{
		"uVelocity": core.NewUniform(nil),
		"uCurl":     core.NewUniform(s.curl),
		"curl":      core.NewUniform(float32(0)),
		"dt":        core.NewUniform(float32(TimeStep)),
	})
	s.divergencePass = material("fluid.divergence", divergenceFragment, core.Uniforms{
		"uVelocity": core.NewUniform(nil),
	})
	s.clear = material("fluid.clear", clearFragment, core.Uniforms{
		"uTexture": core.NewUniform(nil),
		"value":    core.NewUniform(float32(0)),
	})
	s.pressurePass = material("fluid.pressure", pressureFragment, core.Uniforms{
		"uPressure":   core.NewUniform(nil),
		"uDivergence": core.NewUniform(s.divergence),
	})
	s.gradientSubtract = material("fluid.gradientSubtract", gradientSubtractFragment, core.Uniforms{
		"uPressure": core.NewUniform(nil),
		"uVelocity": core.NewUniform(nil),
	})
	s.advection = material("fluid.advection", advectionFragment, core.Uniforms{
		"uVelocity":   core.NewUniform(nil),
		"uSource":     core.NewUniform(nil),
		"dt":          core.NewUniform(float32(TimeStep)),
		"dissipation": core.NewUniform(float32(1)),
	})

	s.output = core.NewUniform(s.density.read)
	return s
}

// SetAspect shares u as the splat aspect-ratio uniform.
func (s *Simulation) SetAspect(u *core.Uniform) {
	s.splat.Uniforms["aspectRatio"] = u
}

// Output is the dye texture reference; its Value is retargeted after every
// swap so readers always see the latest density.
func (s *Simulation) Output() *core.Uniform {
	return s.output
}

func (s *Simulation) draw(target *core.Target, m *shader.Material) {
	s.device.SetRenderTarget(target)
	s.device.RenderScreen(m)
}

func (s *Simulation) applySplat(sp Splat) {
	u := s.splat.Uniforms
	u.Set("point", mgl32.Vec2{sp.X, sp.Y})
	u.Set("color", mgl32.Vec3{sp.DX, sp.DY, 1})
	u.Set("radius", s.Radius/100)

	u.Set("uTarget", s.velocity.read)
	s.draw(s.velocity.write, s.splat)
	s.velocity.swap()

	u.Set("uTarget", s.density.read)
	s.draw(s.density.write, s.splat)
	s.density.swap()
}

// Update drains the splat queue and advances the simulation one step.
func (s *Simulation) Update() {
	for _, sp := range s.Splats {
		s.applySplat(sp)
	}
	s.Splats = s.Splats[:0]

	s.curlPass.Uniforms.Set("uVelocity", s.velocity.read)
	s.draw(s.curl, s.curlPass)

	s.vorticity.Uniforms.Set("uVelocity", s.velocity.read)
	s.vorticity.Uniforms.Set("curl", s.CurlStrength)
	s.draw(s.velocity.write, s.vorticity)
	s.velocity.swap()

	s.divergencePass.Uniforms.Set("uVelocity", s.velocity.read)
	s.draw(s.divergence, s.divergencePass)

	s.clear.Uniforms.Set("uTexture", s.pressure.read)
	s.clear.Uniforms.Set("value", s.PressureDissipation)
	s.draw(s.pressure.write, s.clear)
	s.pressure.swap()

	for i := 0; i < s.Iterations; i++ {
		s.pressurePass.Uniforms.Set("uPressure", s.pressure.read)
		s.draw(s.pressure.write, s.pressurePass)
		s.pressure.swap()
	}

	s.gradientSubtract.Uniforms.Set("uPressure", s.pressure.read)
	s.gradientSubtract.Uniforms.Set("uVelocity", s.velocity.read)
	s.draw(s.velocity.write, s.gradientSubtract)
	s.velocity.swap()

	adv := s.advection.Uniforms
	adv.Set("uVelocity", s.velocity.read)
	adv.Set("uSource", s.velocity.read)
	adv.Set("dissipation", s.VelocityDissipation)
	s.draw(s.velocity.write, s.advection)
	s.velocity.swap()

	adv.Set("uVelocity", s.velocity.read)
	adv.Set("uSource", s.density.read)
	adv.Set("dissipation", s.DensityDissipation)
	s.draw(s.density.write, s.advection)
	s.density.swap()

	s.output.Value = s.density.read
}

// Materials lists the solver's pass materials.
func (s *Simulation) Materials() []*shader.Material {
	return []*shader.Material{
		s.splat, s.curlPass, s.vorticity, s.divergencePass,
		s.clear, s.pressurePass, s.gradientSubtract, s.advection,
	}
}

// Targets lists every render target the solver owns.
func (s *Simulation) Targets() []*core.Target {
	return []*core.Target{
		s.velocity.read, s.velocity.write,
		s.density.read, s.density.write,
		s.pressure.read, s.pressure.write,
		s.curl, s.divergence,
	}
}

func (s *Simulation) Dispose() {
	for _, t := range s.Targets() {
		s.device.Release(t)
	}
}
