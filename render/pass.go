// Package render drives the frame: a fixed list of passes (scene, bright
// pass, mip blur chain, bloom composite, final composite) drawn through a
// Device.
package render

import (
	"fluid-glow/core"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

// Device is the rendering backend.
type Device interface {
	scene.Renderer
	// RenderScreen draws a fullscreen triangle with m into the current target.
	RenderScreen(m *shader.Material)
	// SetSize sets the default framebuffer size in physical pixels.
	SetSize(width, height int)
	// Release frees any GPU storage behind t.
	Release(t *core.Target)
}

// Binding is a uniform value written into a pass's material before it draws.
type Binding struct {
	Name  string
	Value any
}

// Pass is one draw of the frame. A nil Target draws to the screen; a nil
// Material draws Scene through Camera.
type Pass struct {
	Name     string
	Target   *core.Target
	Material *shader.Material
	Scene    *scene.Scene
	Camera   *scene.Camera
	Bindings []Binding
}

// Runner executes passes in order.
type Runner struct {
	Device Device
}

func (r Runner) Run(p *Pass) {
	r.Device.SetRenderTarget(p.Target)
	if p.Material == nil {
		r.Device.Render(p.Scene, p.Camera)
		return
	}
	for _, b := range p.Bindings {
		p.Material.Uniforms.Set(b.Name, b.Value)
	}
	r.Device.RenderScreen(p.Material)
}

func (r Runner) RunAll(passes []*Pass) {
	for _, p := range passes {
		r.Run(p)
	}
}
