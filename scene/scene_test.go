package scene

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestNodeWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.Add(child)

	parent.SetPosition(mgl32.Vec3{1, 2, 3})
	child.SetPosition(mgl32.Vec3{0, 1, 0})
	vecNear(t, mgl32.Vec3{1, 3, 3}, child.WorldPosition())

	parent.SetScale(mgl32.Vec3{1, -1, 1})
	vecNear(t, mgl32.Vec3{1, 1, 3}, child.WorldPosition())
}

func TestNodeAddReparents(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.Add(c)
	b.Add(c)
	assert.Empty(t, a.Children)
	assert.Same(t, b, c.Parent)
	assert.Same(t, c, b.Find("c"))
}

func TestNodeLookAt(t *testing.T) {
	n := NewNode("n")
	n.SetPosition(mgl32.Vec3{0, 1.4, -11})
	n.LookAt(mgl32.Vec3{0, 0, 10})

	forward := n.Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	want := mgl32.Vec3{0, -1.4, 21}.Normalize()
	vecNear(t, want, forward)
}

func TestTraverseVisibleSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	group := NewNode("group")
	group.Add(NewMeshNode(CreatePlane(1, 1, 1, 1)))
	s.Add(group)
	s.Add(NewMeshNode(CreatePlane(1, 1, 1, 1)))

	assert.Len(t, s.VisibleNodes(), 2)
	group.Visible = false
	assert.Len(t, s.VisibleNodes(), 1)
}

func TestCreatePlane(t *testing.T) {
	m := CreatePlane(100, 100, 1, 1)
	require.Len(t, m.Vertices, 4)
	assert.Len(t, m.Indices, 6)

	for _, v := range m.Vertices {
		assert.Equal(t, v.UV, v.UV1)
		vecNear(t, mgl32.Vec3{0, 0, 1}, v.Normal)
		vecNear(t, mgl32.Vec3{1, 0, 0}, v.Tangent)
	}
	// first vertex is top-left with v = 1
	vecNear(t, mgl32.Vec3{-50, 50, 0}, m.Vertices[0].Position)
	assert.Equal(t, mgl32.Vec2{0, 1}, m.Vertices[0].UV)
	vecNear(t, mgl32.Vec3{-50, -50, 0}, m.LocalAABB.Min)
}

func TestMeshCenter(t *testing.T) {
	m := CreateMeshFromData("m", []core.Vertex{
		{Position: mgl32.Vec3{2, 2, 0}},
		{Position: mgl32.Vec3{4, 6, 0}},
	}, nil)
	m.Center()
	vecNear(t, mgl32.Vec3{0, 0, 0}, m.LocalAABB.Center())
	vecNear(t, mgl32.Vec3{-1, -2, 0}, m.Vertices[0].Position)
}

const triangleSVG = `data:image/svg+xml;utf8,<svg><path d="M 3 0 L 0 5 H 6 Z" stroke-width="0.25"/></svg>`

func TestLoadSVGDataURI(t *testing.T) {
	data, err := LoadSVG(triangleSVG)
	require.NoError(t, err)
	require.Len(t, data.Paths, 1)

	p := data.Paths[0]
	assert.InDelta(t, 0.25, p.Style.Width, 1e-6)
	require.Len(t, p.SubPaths, 1)
	sub := p.SubPaths[0]
	assert.True(t, sub.Closed)
	assert.Equal(t, []mgl32.Vec2{{3, 0}, {0, 5}, {6, 5}}, sub.Points)
}

func TestLoadSVGPercentEncoded(t *testing.T) {
	data, err := LoadSVG(`data:image/svg+xml,%3Csvg%3E%3Cpath%20d%3D%22M0%200h1v1%22%2F%3E%3C%2Fsvg%3E`)
	require.NoError(t, err)
	require.Len(t, data.Paths, 1)
	assert.Equal(t, []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}}, data.Paths[0].SubPaths[0].Points)
	assert.InDelta(t, 1, data.Paths[0].Style.Width, 1e-6)
}

func TestParsePathData(t *testing.T) {
	tests := []struct {
		name   string
		d      string
		subs   int
		points int
		closed bool
	}{
		{"relative lines", "m1,1 l2,0 0,2 z", 1, 3, true},
		{"two contours", "M0 0 L1 0 M5 5 L6 5 L6 6", 2, 2, false},
		{"cubic", "M0 0 C 0 1 1 1 1 0", 1, 1 + curveSegments, false},
		{"quadratic", "M0 0 Q 1 1 2 0 T 4 0", 1, 1 + 2*curveSegments, false},
		{"exponents", "M1e1-2L.5.5", 1, 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subs, err := ParsePathData(tc.d)
			require.NoError(t, err)
			require.Len(t, subs, tc.subs)
			assert.Len(t, subs[0].Points, tc.points)
			assert.Equal(t, tc.closed, subs[0].Closed)
		})
	}
}

func TestParsePathDataErrors(t *testing.T) {
	for _, d := range []string{"M 0 0 A 1 1 0 0 0 2 2", "M 0", "10 10"} {
		_, err := ParsePathData(d)
		assert.Error(t, err, d)
	}
}

func TestPointsToStrokeClosedTriangle(t *testing.T) {
	sub := SubPath{Points: []mgl32.Vec2{{3, 0}, {0, 5}, {6, 5}}, Closed: true}
	m := PointsToStroke("tri", sub, StrokeStyle{Width: 0.25, MiterLimit: 4})
	require.NotNil(t, m)

	// three mitred corners plus the wrap-around pair
	assert.Len(t, m.Vertices, 8)
	assert.Len(t, m.Indices, 18)

	// every corner pair straddles the path at half-width or more
	for i := 0; i < 6; i += 2 {
		l := m.Vertices[i].Position
		r := m.Vertices[i+1].Position
		assert.Greater(t, l.Sub(r).Len(), float32(0.25)-1e-4)
	}
}

func TestPointsToStrokeDegenerate(t *testing.T) {
	assert.Nil(t, PointsToStroke("p", SubPath{Points: []mgl32.Vec2{{1, 1}, {1, 1}}}, DefaultStrokeStyle()))
}

func TestPointsToStrokeOpenLine(t *testing.T) {
	m := PointsToStroke("line", SubPath{Points: []mgl32.Vec2{{0, 0}, {2, 0}}}, StrokeStyle{Width: 1, MiterLimit: 4})
	require.NotNil(t, m)
	require.Len(t, m.Vertices, 4)
	vecNear(t, mgl32.Vec3{0, 0.5, 0}, m.Vertices[0].Position)
	vecNear(t, mgl32.Vec3{0, -0.5, 0}, m.Vertices[1].Position)
	assert.Equal(t, float32(1), m.Vertices[2].UV.X())
}

type recordingRenderer struct {
	target  *core.Target
	calls   []string
	cameras []*Camera
}

func (r *recordingRenderer) SetRenderTarget(t *core.Target) {
	name := "screen"
	if t != nil {
		name = t.Name
	}
	r.calls = append(r.calls, "target:"+name)
	r.target = t
}

func (r *recordingRenderer) RenderTarget() *core.Target { return r.target }

func (r *recordingRenderer) Render(s *Scene, c *Camera) {
	r.calls = append(r.calls, "render")
	r.cameras = append(r.cameras, c)
}

func newFloorReflector() (*Reflector, *Node) {
	floor := NewNode("floor")
	floor.SetPosition(mgl32.Vec3{0, -1.6, 0})
	floor.SetRotationX(-math.Pi / 2)
	rf := NewReflector(512, 512)
	floor.Add(rf.Node)
	return rf, floor
}

func TestReflectorMirrorsCamera(t *testing.T) {
	rf, floor := newFloorReflector()
	s := NewScene()
	s.Add(floor)

	cam := NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	cam.LookAt(mgl32.Vec3{})

	prev := core.NewTarget("scene", 8, 8, core.TargetOptions{})
	r := &recordingRenderer{target: prev}
	rf.Update(r, s, cam)

	assert.Equal(t, []string{"target:reflector", "render", "target:scene"}, r.calls)
	assert.Same(t, prev, r.RenderTarget())
	require.Len(t, r.cameras, 1)
	vecNear(t, mgl32.Vec3{0, -3.2, 10}, r.cameras[0].Position)
	assert.NotEqual(t, mgl32.Ident4(), rf.TextureMatrixUniform.Value)
}

func TestReflectorSkipsCameraBehindPlane(t *testing.T) {
	rf, floor := newFloorReflector()
	s := NewScene()
	s.Add(floor)

	cam := NewCamera(30, 1, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, -5, 10})

	r := &recordingRenderer{}
	rf.Update(r, s, cam)
	assert.Empty(t, r.calls)
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadTexturesFlipsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path)

	texs, err := LoadTextures(context.Background(), path, path)
	require.NoError(t, err)
	require.Len(t, texs, 2)
	assert.Equal(t, 2, texs[0].Width)
	// the red top-left pixel lands on the last row after the flip
	assert.Equal(t, []byte{255, 0, 0, 255}, texs[0].Pixels[8:12])
}

func TestLoadTexturesFailsWholeBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.png")
	writePNG(t, good)

	texs, err := LoadTextures(context.Background(), good, filepath.Join(dir, "missing.jpg"))
	require.Error(t, err)
	assert.Nil(t, texs)
	assert.True(t, strings.Contains(err.Error(), "missing.jpg"))
}
