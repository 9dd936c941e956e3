package opengl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-glow/core"
	"fluid-glow/render"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

func TestSceneTemplatesDeclareSlots(t *testing.T) {
	all := []shader.Slot{shader.FragmentDiffuse, shader.FragmentPars, shader.VertexMain, shader.VertexPars}
	assert.Equal(t, all, standardTemplate.Slots())
	assert.Equal(t, all, basicTemplate.Slots())
}

func TestStandardTemplateAcceptsExtension(t *testing.T) {
	p, err := standardTemplate.Assemble(&shader.Extension{
		Name: "mirror",
		Code: map[shader.Slot]string{
			shader.VertexPars:      "uniform mat4 textureMatrix;\nout vec4 vCoord;",
			shader.VertexMain:      "vCoord = textureMatrix * vec4(transformed, 1.0);",
			shader.FragmentPars:    "in vec4 vCoord;",
			shader.FragmentDiffuse: "diffuseColor.rgb *= vCoord.w;",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "standard+mirror", p.Key)
	assert.Contains(t, p.Vertex, "vCoord = textureMatrix * vec4(transformed, 1.0);")
	assert.Contains(t, p.Fragment, "diffuseColor.rgb *= vCoord.w;")
	assert.NotContains(t, p.Vertex+p.Fragment, "#pragma slot")
}

func TestTextureRepeat(t *testing.T) {
	assert.Equal(t, mgl32.Vec2{1, 1}, textureRepeat(nil))
	assert.Equal(t, mgl32.Vec2{1, 1}, textureRepeat(&scene.Texture{}))

	tex := &scene.Texture{}
	tex.SetRepeat(16)
	assert.Equal(t, mgl32.Vec2{16, 16}, textureRepeat(tex))
}

type nullDevice struct{ target *core.Target }

func (d *nullDevice) SetRenderTarget(t *core.Target)     { d.target = t }
func (d *nullDevice) RenderTarget() *core.Target         { return d.target }
func (d *nullDevice) Render(*scene.Scene, *scene.Camera) {}
func (d *nullDevice) RenderScreen(*shader.Material)      {}
func (d *nullDevice) SetSize(int, int)                   {}
func (d *nullDevice) Release(*core.Target)               {}

func samplerCount(u core.Uniforms) int {
	n := 0
	for _, v := range u {
		switch v.Value.(type) {
		case *core.Target, *scene.Texture:
			n++
		}
	}
	return n
}

// Lazily allocated storage is specified on the scratch unit, so every draw
// must fit its samplers below it.
func TestSamplersFitBelowScratchUnit(t *testing.T) {
	m := render.NewManager(&nullDevice{}, scene.NewScene(), scene.NewCamera(30, 1, 0.5, 40), render.DefaultOptions())
	mats := m.Materials()
	require.NotEmpty(t, mats)
	for _, mat := range mats {
		assert.Less(t, samplerCount(mat.Uniforms), scratchUnit, mat.Name)
	}

	assert.True(t, samplerUnitFree("tMap", scratchUnit-1))
	assert.False(t, samplerUnitFree("tMap", scratchUnit))
}
