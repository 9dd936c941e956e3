package scene

import (
	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene holds the graph root plus the environment every draw shares.
type Scene struct {
	Root       *Node
	Background core.Color
	Fog        *Fog
	Lights     []*Light
}

// Fog is linear: no fog at Near, full Color at Far.
type Fog struct {
	Color core.Color
	Near  float32
	Far   float32
}

// Light types
const (
	LightTypeDirectional = iota
	LightTypeHemisphere
)

// Light represents a light source. Directional lights shine from Position
// toward the origin; hemisphere lights blend Color (sky) and GroundColor by
// the surface normal's Y.
type Light struct {
	Type        int
	Position    mgl32.Vec3
	Color       core.Color
	GroundColor core.Color
	Intensity   float32
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.ColorBlack,
	}
}

func (s *Scene) Add(node *Node) {
	s.Root.Add(node)
}

func (s *Scene) Remove(node *Node) {
	s.Root.Remove(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// VisibleNodes returns nodes with meshes whose whole ancestry is visible,
// in graph order.
func (s *Scene) VisibleNodes() []*Node {
	var visible []*Node
	s.Root.TraverseVisible(func(node *Node) {
		if node.Mesh != nil {
			visible = append(visible, node)
		}
	})
	return visible
}
