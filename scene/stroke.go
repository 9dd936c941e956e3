package scene

import (
	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
)

// StrokeStyle controls the outline geometry built by PointsToStroke. Joins
// are mitred; a join whose miter would exceed MiterLimit×Width/2 is bevelled.
type StrokeStyle struct {
	Width      float32
	MiterLimit float32
}

func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Width: 1, MiterLimit: 4}
}

// PointsToStroke builds a flat ribbon mesh of the given width around a
// polyline in the XY plane. It returns nil for fewer than two distinct
// points.
func PointsToStroke(name string, sub SubPath, style StrokeStyle) *Mesh {
	pts := dedupe(sub.Points)
	if sub.Closed && len(pts) > 2 && pts[len(pts)-1].ApproxEqual(pts[0]) {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 2 || style.Width <= 0 {
		return nil
	}
	closed := sub.Closed && len(pts) > 2
	hw := style.Width / 2

	n := len(pts)
	segDir := func(i int) mgl32.Vec2 {
		return pts[(i+1)%n].Sub(pts[i]).Normalize()
	}
	perp := func(d mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{-d.Y(), d.X()} }

	type pair struct{ left, right, at mgl32.Vec2 }
	var pairs []pair
	emit := func(p, offset mgl32.Vec2) {
		pairs = append(pairs, pair{left: p.Add(offset), right: p.Sub(offset), at: p})
	}

	for i := 0; i < n; i++ {
		p := pts[i]
		var in, out mgl32.Vec2
		switch {
		case !closed && i == 0:
			emit(p, perp(segDir(0)).Mul(hw))
			continue
		case !closed && i == n-1:
			emit(p, perp(pts[i].Sub(pts[i-1]).Normalize()).Mul(hw))
			continue
		default:
			in = segDir((i - 1 + n) % n)
			out = segDir(i)
		}

		n0, n1 := perp(in), perp(out)
		m := n0.Add(n1)
		if m.Len() < 1e-6 {
			// full reversal
			emit(p, n0.Mul(hw))
			emit(p, n1.Mul(hw))
			continue
		}
		m = m.Normalize()
		cos := m.Dot(n1)
		if cos < 1e-6 || 1/cos > style.MiterLimit {
			emit(p, n0.Mul(hw))
			emit(p, n1.Mul(hw))
			continue
		}
		emit(p, m.Mul(hw/cos))
	}
	if closed {
		pairs = append(pairs, pairs[0])
	}

	var total float32
	lengths := make([]float32, len(pairs))
	for i := 1; i < len(pairs); i++ {
		total += pairs[i].at.Sub(pairs[i-1].at).Len()
		lengths[i] = total
	}

	vertices := make([]core.Vertex, 0, len(pairs)*2)
	for i, pr := range pairs {
		u := float32(0)
		if total > 0 {
			u = lengths[i] / total
		}
		for side, p := range []mgl32.Vec2{pr.left, pr.right} {
			uv := mgl32.Vec2{u, float32(side)}
			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{p.X(), p.Y(), 0},
				Normal:   mgl32.Vec3{0, 0, 1},
				UV:       uv,
				UV1:      uv,
				Tangent:  mgl32.Vec3{1, 0, 0},
			})
		}
	}

	indices := make([]uint32, 0, (len(pairs)-1)*6)
	for i := 0; i+1 < len(pairs); i++ {
		l0, r0 := uint32(2*i), uint32(2*i+1)
		l1, r1 := uint32(2*i+2), uint32(2*i+3)
		indices = append(indices, l0, r0, l1, r0, r1, l1)
	}

	return CreateMeshFromData(name, vertices, indices)
}

func dedupe(points []mgl32.Vec2) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].ApproxEqual(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
