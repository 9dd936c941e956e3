package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is the half-space Normal·p + D >= 0. Normal points into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt; positive is inside.
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// FrustumFromVP extracts normalised planes from a view-projection matrix
// (Gribb/Hartmann). mgl32 is column-major, so Row(i) is the GLSL row.
func FrustumFromVP(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))
	f.Planes[1] = normalizePlane(r3.Sub(r0))
	f.Planes[2] = normalizePlane(r3.Add(r1))
	f.Planes[3] = normalizePlane(r3.Sub(r1))
	f.Planes[4] = normalizePlane(r3.Add(r2))
	f.Planes[5] = normalizePlane(r3.Sub(r2))
	return f
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// IntersectsFrustum reports false only when the box is wholly outside one
// plane. For each plane it tests the corner furthest along the normal.
func (b AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		var corner mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] < 0 {
				corner[i] = b.Min[i]
			} else {
				corner[i] = b.Max[i]
			}
		}
		if p.DistanceTo(corner) < 0 {
			return false
		}
	}
	return true
}

// ComputeAABB returns the world-space box of mesh under world. The cached
// local box is transformed by its corners; otherwise every vertex is used.
func ComputeAABB(mesh *Mesh, world mgl32.Mat4) AABB {
	if mesh.HasLocalAABB {
		mn, mx := mesh.LocalAABB.Min, mesh.LocalAABB.Max
		var box AABB
		for i := 0; i < 8; i++ {
			c := mn
			if i&1 != 0 {
				c[0] = mx[0]
			}
			if i&2 != 0 {
				c[1] = mx[1]
			}
			if i&4 != 0 {
				c[2] = mx[2]
			}
			box = box.extend(mgl32.TransformCoordinate(c, world), i == 0)
		}
		return box
	}

	var box AABB
	for i, v := range mesh.Vertices {
		box = box.extend(mgl32.TransformCoordinate(v.Position, world), i == 0)
	}
	return box
}

func (b AABB) extend(p mgl32.Vec3, first bool) AABB {
	if first {
		return AABB{Min: p, Max: p}
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// NodesInView returns the visible mesh nodes whose world box touches the
// camera frustum, in graph order.
func (s *Scene) NodesInView(c *Camera) []*Node {
	f := FrustumFromVP(c.ViewProjectionMatrix())
	nodes := s.VisibleNodes()
	out := nodes[:0]
	for _, n := range nodes {
		if ComputeAABB(n.Mesh, n.WorldMatrix()).IntersectsFrustum(&f) {
			out = append(out, n)
		}
	}
	return out
}
