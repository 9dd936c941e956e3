package scene

import (
	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawMode controls the primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawLines
)

type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32
	DrawMode   DrawMode

	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, a white basic
	// material is used.
	Material *Material

	// GPUData is set by the renderer backend.
	GPUData any
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
	m.ComputeBounds()
	return m
}

func (m *Mesh) ComputeBounds() {
	if len(m.Vertices) == 0 {
		m.HasLocalAABB = false
		return
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		p := v.Position
		for i := 0; i < 3; i++ {
			if p[i] < lo[i] {
				lo[i] = p[i]
			}
			if p[i] > hi[i] {
				hi[i] = p[i]
			}
		}
	}
	m.LocalAABB = AABB{Min: lo, Max: hi}
	m.HasLocalAABB = true
}

// Center translates the vertices so the bounding box is centred on the
// origin. It must run before the mesh is uploaded.
func (m *Mesh) Center() {
	if !m.HasLocalAABB {
		return
	}
	offset := m.LocalAABB.Center()
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Sub(offset)
	}
	m.ComputeBounds()
}
