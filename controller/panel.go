package controller

import (
	"fluid-glow/config"
	"fluid-glow/panel"
	"fluid-glow/render"
)

// PanelController exposes the pipeline tunables as panel sliders. Slider
// callbacks write straight into the fluid solver and the render manager.
type PanelController struct {
	manager *render.Manager
	items   []*panel.Item

	iterations *panel.Item
	density    *panel.Item
	velocity   *panel.Item
	pressure   *panel.Item
	curl       *panel.Item
	radius     *panel.Item

	threshold   *panel.Item
	smoothing   *panel.Item
	strength    *panel.Item
	bloomRadius *panel.Item
	chroma      *panel.Item

	post *panel.Item

	attached bool
}

// NewPanelController builds the items from the manager's current values.
// Nothing is shown until Init.
func NewPanelController(m *render.Manager) *PanelController {
	sim := m.Fluid()
	p := &PanelController{manager: m}

	p.iterations = panel.Slider("Iterate", 0, 10, 1, float32(sim.Iterations), func(v float32) {
		sim.Iterations = int(v)
	})
	p.density = panel.Slider("Density", 0, 1, 0.01, sim.DensityDissipation, func(v float32) {
		sim.DensityDissipation = v
	})
	p.velocity = panel.Slider("Velocity", 0, 1, 0.01, sim.VelocityDissipation, func(v float32) {
		sim.VelocityDissipation = v
	})
	p.pressure = panel.Slider("Pressure", 0, 1, 0.01, sim.PressureDissipation, func(v float32) {
		sim.PressureDissipation = v
	})
	p.curl = panel.Slider("Curl", 0, 50, 0.1, sim.CurlStrength, func(v float32) {
		sim.CurlStrength = v
	})
	p.radius = panel.Slider("Radius", 0, 1, 0.01, sim.Radius, func(v float32) {
		sim.Radius = v
	})

	p.threshold = panel.Slider("Thresh", 0, 1, 0.01, m.LuminosityThreshold(), m.SetLuminosityThreshold)
	p.smoothing = panel.Slider("Smooth", 0, 1, 0.01, m.LuminositySmoothing(), m.SetLuminositySmoothing)
	p.strength = panel.Slider("Strength", 0, 2, 0.01, m.BloomStrength(), m.SetBloomStrength)
	p.bloomRadius = panel.Slider("Radius", 0, 1, 0.01, m.BloomRadius(), m.SetBloomRadius)
	p.chroma = panel.Slider("Chroma", 0, 10, 0.1, m.BloomDistortion(), m.SetBloomDistortion)

	p.post = panel.Slider("Post", 0, 1, 1, boolValue(m.Enabled()), func(v float32) {
		m.SetEnabled(v >= 0.5)
	})

	p.items = []*panel.Item{
		panel.FPS(),
		panel.Divider(),
		p.iterations,
		p.density,
		p.velocity,
		p.pressure,
		p.curl,
		p.radius,
		panel.Divider(),
		p.threshold,
		p.smoothing,
		p.strength,
		p.bloomRadius,
		p.chroma,
		panel.Divider(),
		p.post,
	}
	return p
}

// Init adds every item to ui, once.
func (p *PanelController) Init(ui panel.Panel) {
	if p.attached {
		return
	}
	for _, it := range p.items {
		ui.Add(it)
	}
	p.attached = true
}

func (p *PanelController) Items() []*panel.Item {
	return p.items
}

// Apply pushes a set of tunables through the sliders, so the values are
// clamped and snapped exactly as panel edits are.
func (p *PanelController) Apply(t config.Tunables) {
	p.iterations.Set(float32(t.Iterations))
	p.density.Set(t.DensityDissipation)
	p.velocity.Set(t.VelocityDissipation)
	p.pressure.Set(t.PressureDissipation)
	p.curl.Set(t.CurlStrength)
	p.radius.Set(t.Radius)

	p.threshold.Set(t.LuminosityThreshold)
	p.smoothing.Set(t.LuminositySmoothing)
	p.strength.Set(t.BloomStrength)
	p.bloomRadius.Set(t.BloomRadius)
	p.chroma.Set(t.BloomDistortion)

	p.post.Set(boolValue(t.PostProcessing))
}

// Tunables reads the current slider values back.
func (p *PanelController) Tunables() config.Tunables {
	return config.Tunables{
		Iterations:          int(p.iterations.Value),
		DensityDissipation:  p.density.Value,
		VelocityDissipation: p.velocity.Value,
		PressureDissipation: p.pressure.Value,
		CurlStrength:        p.curl.Value,
		Radius:              p.radius.Value,
		LuminosityThreshold: p.threshold.Value,
		LuminositySmoothing: p.smoothing.Value,
		BloomStrength:       p.strength.Value,
		BloomRadius:         p.bloomRadius.Value,
		BloomDistortion:     p.chroma.Value,
		PostProcessing:      p.post.Value >= 0.5,
	}
}

// TogglePost flips post-processing through its slider.
func (p *PanelController) TogglePost() {
	p.post.Set(1 - p.post.Value)
}

func boolValue(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
