package scene

import (
	"fluid-glow/core"
	"fluid-glow/shader"

	"github.com/go-gl/mathgl/mgl32"
)

type MaterialKind int

const (
	// MaterialStandard is lit metal/roughness shading.
	MaterialStandard MaterialKind = iota
	// MaterialBasic outputs Color (times Map) with no lighting.
	MaterialBasic
)

// Material describes surface appearance properties for a mesh.
type Material struct {
	Name      string
	Kind      MaterialKind
	Color     core.Color
	Metalness float32
	Roughness float32

	Map          *Texture
	NormalMap    *Texture
	NormalScale  mgl32.Vec2
	MetalnessMap *Texture // B channel
	RoughnessMap *Texture // G channel

	// AOMap is sampled with the second UV set (R channel).
	AOMap          *Texture
	AOMapIntensity float32

	DoubleSided bool
	Fog         bool

	// Extension, when set, is compiled into the material's program.
	Extension *shader.Extension
}

func NewStandardMaterial(name string) *Material {
	return &Material{
		Name:           name,
		Kind:           MaterialStandard,
		Color:          core.ColorWhite,
		Metalness:      0,
		Roughness:      1,
		NormalScale:    mgl32.Vec2{1, 1},
		AOMapIntensity: 1,
		Fog:            true,
	}
}

func NewBasicMaterial(name string, color core.Color) *Material {
	return &Material{
		Name:  name,
		Kind:  MaterialBasic,
		Color: color,
		Fog:   true,
	}
}

// Textures lists the non-nil texture maps.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.NormalMap, m.MetalnessMap, m.RoughnessMap, m.AOMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
