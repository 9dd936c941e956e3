package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"

	"fluid-glow/core"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

const maxDirLights = 4

// Device is the OpenGL rendering backend. It draws scenes and fullscreen
// materials into core.Target descriptors, allocating GPU storage on first
// use. All methods must be called from the goroutine owning the GL context.
type Device struct {
	programs map[string]*program
	failed   map[string]error

	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}
	targets   map[*core.Target]*glTarget

	target   *core.Target
	boundFBO uint32
	viewport [2]int32

	width, height int32

	screenVAO uint32

	standard shader.Template
	basic    shader.Template

	fallback *scene.Material
}

// ── NewDevice ─────────────────────────────────────────────────────────────────

// NewDevice initialises OpenGL and compiles the built-in scene programs.
// Must be called after the GLFW window context is made current.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info().
		Str("version", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Msg("opengl")

	d := &Device{
		programs:  make(map[string]*program),
		failed:    make(map[string]error),
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),
		targets:   make(map[*core.Target]*glTarget),
		width:     1,
		height:    1,
		viewport:  [2]int32{1, 1},
		standard:  standardTemplate,
		basic:     basicTemplate,
		fallback:  scene.NewBasicMaterial("fallback", core.ColorWhite),
	}

	for _, t := range []shader.Template{d.standard, d.basic} {
		p, err := t.Assemble(nil)
		if err != nil {
			return nil, err
		}
		if err := d.Compile(p); err != nil {
			return nil, fmt.Errorf("%s shader compile: %w", t.Name, err)
		}
	}

	gl.GenVertexArrays(1, &d.screenVAO)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	return d, nil
}

// Compile builds and caches p. Programs are otherwise compiled on first
// draw; calling Compile up front turns shader errors into startup errors.
func (d *Device) Compile(p shader.Program) error {
	_, err := d.program(p)
	return err
}

// ── Targets ───────────────────────────────────────────────────────────────────

// SetSize records the default framebuffer size in physical pixels.
func (d *Device) SetSize(width, height int) {
	d.width = int32(max(width, 1))
	d.height = int32(max(height, 1))
	if d.target == nil {
		d.viewport = [2]int32{d.width, d.height}
		gl.Viewport(0, 0, d.width, d.height)
	}
}

// SetRenderTarget binds t, or the default framebuffer when t is nil, and
// sets the viewport to its size.
func (d *Device) SetRenderTarget(t *core.Target) {
	d.target = t
	d.bindTarget()
}

func (d *Device) RenderTarget() *core.Target {
	return d.target
}

func (d *Device) bindTarget() {
	if d.target == nil {
		d.boundFBO = 0
		d.viewport = [2]int32{d.width, d.height}
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, d.width, d.height)
		return
	}
	gt := d.ensureTarget(d.target)
	d.boundFBO = gt.fbo
	d.viewport = [2]int32{gt.width, gt.height}
	gl.BindFramebuffer(gl.FRAMEBUFFER, gt.fbo)
	gl.Viewport(0, 0, gt.width, gt.height)
}

// ── Screen passes ─────────────────────────────────────────────────────────────

// RenderScreen draws a fullscreen triangle with m into the current target.
func (d *Device) RenderScreen(m *shader.Material) {
	prog, err := d.program(m.Program)
	if err != nil {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)

	gl.UseProgram(prog.id)
	d.bindUniforms(prog, m.Uniforms, 0)

	gl.BindVertexArray(d.screenVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// ── Scene ─────────────────────────────────────────────────────────────────────

// Render clears the current target to the scene background and draws every
// visible mesh inside the camera frustum. A node's OnBeforeRender hook runs right before the node is
// drawn; the hook may render elsewhere, so the target is re-bound after it.
func (d *Device) Render(s *scene.Scene, c *scene.Camera) {
	target := d.target

	bg := s.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()

	for _, node := range s.NodesInView(c) {
		if node.OnBeforeRender != nil {
			node.OnBeforeRender(d, s, c)
			d.SetRenderTarget(target)
		}
		d.drawNode(node, s, c, view, proj)
	}
}

func (d *Device) drawNode(node *scene.Node, s *scene.Scene, c *scene.Camera, view, proj mgl32.Mat4) {
	mesh := node.Mesh
	gpu := d.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	mat := mesh.Material
	if mat == nil {
		mat = d.fallback
	}
	prog, err := d.materialProgram(mat)
	if err != nil {
		return
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	model := node.WorldMatrix()
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	// negative scale flips winding
	if model.Det() < 0 {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}

	gl.UseProgram(prog.id)

	unit := int32(0)
	set := func(name string, v any) { d.setUniform(prog, name, v, &unit) }

	set("modelMatrix", model)
	set("viewMatrix", view)
	set("projectionMatrix", proj)
	set("normalMatrix", model.Mat3().Inv().Transpose())
	set("cameraPosition", c.Position)

	d.bindMaterial(set, mat)
	d.bindEnvironment(set, s, mat)

	if mat.Extension != nil {
		d.bindUniforms(prog, mat.Extension.Uniforms, unit)
	}

	gl.BindVertexArray(gpu.VAO)
	mode := uint32(gl.TRIANGLES)
	if mesh.DrawMode == scene.DrawLines {
		mode = gl.LINES
	}
	if gpu.HasIndices {
		gl.DrawElements(mode, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, gpu.VertexCount)
	}
	gl.BindVertexArray(0)
}

func (d *Device) materialProgram(mat *scene.Material) (*program, error) {
	tmpl := d.standard
	if mat.Kind == scene.MaterialBasic {
		tmpl = d.basic
	}
	p, err := tmpl.Assemble(mat.Extension)
	if err != nil {
		if _, seen := d.failed[mat.Name]; !seen {
			d.failed[mat.Name] = err
			log.Error().Err(err).Str("material", mat.Name).Msg("assemble material")
		}
		return nil, err
	}
	return d.program(p)
}

func (d *Device) bindMaterial(set func(string, any), mat *scene.Material) {
	set("diffuse", mat.Color.Vec3())
	set("opacity", mat.Color.A)
	set("metalness", mat.Metalness)
	set("roughness", mat.Roughness)
	set("normalScale", mat.NormalScale)
	set("aoMapIntensity", mat.AOMapIntensity)
	set("doubleSided", mat.DoubleSided)

	maps := []struct {
		name, flag string
		tex        *scene.Texture
	}{
		{"map", "hasMap", mat.Map},
		{"normalMap", "hasNormalMap", mat.NormalMap},
		{"metalnessMap", "hasMetalnessMap", mat.MetalnessMap},
		{"roughnessMap", "hasRoughnessMap", mat.RoughnessMap},
		{"aoMap", "hasAoMap", mat.AOMap},
	}
	for _, m := range maps {
		set(m.flag, m.tex != nil)
		if m.tex != nil {
			set(m.name, m.tex)
		}
	}

	set("uvRepeat", textureRepeat(mat.Map))
	set("uv1Repeat", textureRepeat(mat.AOMap))
}

func textureRepeat(t *scene.Texture) mgl32.Vec2 {
	if t == nil || t.Repeat == (mgl32.Vec2{}) {
		return mgl32.Vec2{1, 1}
	}
	return t.Repeat
}

func (d *Device) bindEnvironment(set func(string, any), s *scene.Scene, mat *scene.Material) {
	var (
		sky, ground mgl32.Vec3
		dirs        [maxDirLights]mgl32.Vec3
		colors      [maxDirLights]mgl32.Vec3
		n           int
	)
	for _, l := range s.Lights {
		switch l.Type {
		case scene.LightTypeHemisphere:
			sky = sky.Add(l.Color.Vec3().Mul(l.Intensity))
			ground = ground.Add(l.GroundColor.Vec3().Mul(l.Intensity))
		case scene.LightTypeDirectional:
			if n == maxDirLights || l.Position.Len() == 0 {
				continue
			}
			dirs[n] = l.Position.Normalize()
			colors[n] = l.Color.Vec3().Mul(l.Intensity)
			n++
		}
	}
	set("hemiSkyColor", sky)
	set("hemiGroundColor", ground)
	set("numDirLights", n)
	set("dirLightDirection", dirs[:n])
	set("dirLightColor", colors[:n])

	useFog := s.Fog != nil && mat.Fog
	set("useFog", useFog)
	if useFog {
		set("fogColor", s.Fog.Color.Vec3())
		set("fogNear", s.Fog.Near)
		set("fogFar", s.Fog.Far)
	}
}

// ── Resource management ───────────────────────────────────────────────────────

// Destroy frees every GPU object the device created.
func (d *Device) Destroy() {
	for mesh := range d.gpuMeshes {
		d.ReleaseMesh(mesh)
	}
	for tex := range d.textures {
		DeleteTexture(tex)
	}
	clear(d.textures)
	for t := range d.targets {
		d.Release(t)
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p.id)
	}
	clear(d.programs)
	if d.screenVAO != 0 {
		gl.DeleteVertexArrays(1, &d.screenVAO)
		d.screenVAO = 0
	}
}
