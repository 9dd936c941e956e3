package scene

import (
	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer is the slice of the rendering device a node hook may use.
type Renderer interface {
	SetRenderTarget(t *core.Target)
	RenderTarget() *core.Target
	Render(s *Scene, c *Camera)
}

// BeforeRenderFunc runs on the render thread immediately before the node's
// mesh is drawn.
type BeforeRenderFunc func(r Renderer, s *Scene, c *Camera)

// Node is an object in the scene graph. A node without a mesh is a group.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Parent   *Node
	Children []*Node
	Mesh     *Mesh
	Visible  bool

	OnBeforeRender BeforeRenderFunc

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      mgl32.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Rotation:         mgl32.QuatIdent(),
		Scale:            mgl32.Vec3{1, 1, 1},
		Visible:          true,
		worldMatrixDirty: true,
	}
}

// NewMeshNode wraps a mesh in a node named after it.
func NewMeshNode(mesh *Mesh) *Node {
	n := NewNode(mesh.Name)
	n.Mesh = mesh
	return n
}

func (n *Node) Add(child *Node) {
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	child.MarkWorldMatrixDirty()
	n.Children = append(n.Children, child)
}

func (n *Node) Remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

func (n *Node) WorldMatrix() mgl32.Mat4 {
	if n.worldMatrixDirty {
		local := n.LocalMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.WorldMatrix().Mul4(local)
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos mgl32.Vec3) {
	n.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot mgl32.Quat) {
	n.Rotation = rot
	n.MarkWorldMatrixDirty()
}

// SetRotationX replaces the rotation with angle radians about +X.
func (n *Node) SetRotationX(angle float32) {
	n.SetRotation(mgl32.QuatRotate(angle, mgl32.Vec3{1, 0, 0}))
}

func (n *Node) SetScale(scale mgl32.Vec3) {
	n.Scale = scale
	n.MarkWorldMatrixDirty()
}

// LookAt rotates the node so its local +Z axis points at target, given in
// world space.
func (n *Node) LookAt(target mgl32.Vec3) {
	pos := n.WorldPosition()
	z := target.Sub(pos)
	if z.Len() < 1e-6 {
		return
	}
	z = z.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	x := up.Cross(z)
	if x.Len() < 1e-6 {
		// target straight above or below; nudge the reference axis
		x = mgl32.Vec3{0, 0, 1}.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl32.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}
	q := mgl32.Mat4ToQuat(m)
	if n.Parent != nil {
		parent := mgl32.Mat4ToQuat(n.Parent.WorldMatrix())
		q = parent.Inverse().Mul(q)
	}
	n.SetRotation(q.Normalize())
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// TraverseVisible visits nodes whose whole ancestry is visible.
func (n *Node) TraverseVisible(callback func(*Node)) {
	if !n.Visible {
		return
	}
	callback(n)
	for _, child := range n.Children {
		child.TraverseVisible(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
