package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-glow/config"
	"fluid-glow/core"
	"fluid-glow/scene"
)

// memLoader serves solid textures and parses SVG sources in memory.
type memLoader struct {
	mu         sync.Mutex
	calls      []string
	textureErr error
	modelErr   error
	roots      []*scene.Node

	// textureDelay holds texture loads back, failing them if ctx ends first
	textureDelay time.Duration
}

func (l *memLoader) record(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *memLoader) LoadTextures(ctx context.Context, paths ...string) ([]*scene.Texture, error) {
	l.record("textures")
	if l.textureDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.textureDelay):
		}
	}
	if l.textureErr != nil {
		return nil, l.textureErr
	}
	out := make([]*scene.Texture, len(paths))
	for i, p := range paths {
		out[i] = scene.NewSolidTexture(p, 255, 255, 255, 255)
	}
	return out, nil
}

func (l *memLoader) LoadSVG(_ context.Context, src string) (*scene.SVGData, error) {
	l.record("svg")
	return scene.LoadSVG(src)
}

func (l *memLoader) LoadModel(_ context.Context, path string) (*scene.ModelData, error) {
	l.record("model")
	if l.modelErr != nil {
		return nil, l.modelErr
	}
	return &scene.ModelData{Roots: l.roots}, nil
}

// hookRenderer records whether the floor was visible during each scene draw.
type hookRenderer struct {
	floor        *scene.Node
	target       *core.Target
	targets      []*core.Target
	floorVisible []bool
}

func (r *hookRenderer) SetRenderTarget(t *core.Target) {
	r.target = t
	r.targets = append(r.targets, t)
}

func (r *hookRenderer) RenderTarget() *core.Target { return r.target }

func (r *hookRenderer) Render(s *scene.Scene, c *scene.Camera) {
	r.floorVisible = append(r.floorVisible, r.floor.Visible)
}

func testAssets() config.Assets {
	return config.Default().Assets
}

func testCamera() *scene.Camera {
	cam := scene.NewCamera(30, 16.0/9, 0.5, 40)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	cam.LookAt(mgl32.Vec3{})
	return cam
}

func TestFloorLoadBuildsMirroredMesh(t *testing.T) {
	f := NewFloor(&memLoader{}, testAssets().Floor)
	f.Load(context.Background())

	node := f.Mesh()
	require.NotNil(t, node)
	assert.Equal(t, float32(-1.6), node.Position.Y())
	assert.Same(t, f.Reflector.Node, node.Children[0])

	mat := node.Mesh.Material
	require.NotNil(t, mat)
	assert.InDelta(t, 0.35, mat.Color.R, 1e-4)
	assert.Equal(t, float32(1), mat.Metalness)
	assert.Equal(t, float32(1), mat.Roughness)
	assert.Equal(t, mgl32.Vec2{3, 3}, mat.NormalScale)
	assert.Same(t, mat.MetalnessMap, mat.AOMap)
	assert.Same(t, mat.RoughnessMap, mat.AOMap)
	for _, tex := range mat.Textures() {
		assert.Equal(t, mgl32.Vec2{16, 16}, tex.Repeat, tex.Name)
		assert.Equal(t, scene.WrapRepeat, tex.WrapS)
	}

	require.NotNil(t, mat.Extension)
	u := mat.Extension.Uniforms
	assert.Same(t, f.Reflector.TargetUniform, u["reflectMap"])
	assert.Same(t, f.Reflector.TextureMatrixUniform, u["textureMatrix"])
	assert.Equal(t, float32(0), u.Float("mirror"))
	assert.Equal(t, float32(10), u.Float("mixStrength"))

	assert.Empty(t, f.Group.Children, "attached only on Mount")
	f.Mount()
	f.Mount()
	assert.Len(t, f.Group.Children, 1)
}

func TestFloorHiddenWhileReflecting(t *testing.T) {
	f := NewFloor(&memLoader{}, testAssets().Floor)
	f.Load(context.Background())
	f.Mount()

	s := scene.NewScene()
	s.Add(f.Group)

	r := &hookRenderer{floor: f.Group}
	f.Mesh().OnBeforeRender(r, s, testCamera())

	assert.Equal(t, []bool{false}, r.floorVisible)
	assert.True(t, f.Group.Visible)
	require.Len(t, r.targets, 2)
	assert.Same(t, f.Reflector.Target, r.targets[0])
	assert.Nil(t, r.target, "previous target restored")
}

func TestFloorTextureFailureLeavesFloorEmpty(t *testing.T) {
	f := NewFloor(&memLoader{textureErr: errors.New("no such file")}, testAssets().Floor)
	f.Load(context.Background())
	f.Mount()

	assert.Nil(t, f.Mesh())
	assert.Empty(t, f.Group.Children)
}

func TestFloorResize(t *testing.T) {
	f := NewFloor(&memLoader{}, testAssets().Floor)
	f.Resize(1920, 1080)
	assert.Equal(t, 512, f.Reflector.Target.Width)
	assert.Equal(t, 1024, f.Reflector.Target.Height)

	f.Resize(800, 2000)
	assert.Equal(t, 256, f.Reflector.Target.Width)
	assert.Equal(t, 1024, f.Reflector.Target.Height)
}

func TestTriangleStrokes(t *testing.T) {
	cam := testCamera()
	s := scene.NewScene()
	tri := NewTriangle(&memLoader{}, cam, config.TriangleSVG)
	s.Add(tri.Group)

	require.NoError(t, tri.Load(context.Background()))
	require.Len(t, tri.Strokes(), 1)

	mesh := tri.Strokes()[0].Mesh
	assert.InDelta(t, 0, mesh.LocalAABB.Center().X(), 1e-5)
	assert.InDelta(t, 0, mesh.LocalAABB.Center().Y(), 1e-5)
	assert.Equal(t, scene.MaterialBasic, mesh.Material.Kind)
	assert.Equal(t, core.ColorWhite, mesh.Material.Color)

	tri.Mount()
	assert.Len(t, tri.Group.Children, 1)
	assert.Equal(t, mgl32.Vec3{0, 1.4, -11}, tri.Group.Position)
	assert.Equal(t, float32(-1), tri.Group.Scale.Y())

	// +Z of the group now points at the camera
	forward := tri.Group.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3().Normalize()
	want := cam.Position.Sub(tri.Group.WorldPosition()).Normalize()
	assert.InDelta(t, 1, forward.Dot(want), 1e-4)
}

func TestTriangleBadSource(t *testing.T) {
	tri := NewTriangle(&memLoader{}, testCamera(), "data:image/svg+xml;base64,!!!")
	assert.Error(t, tri.Load(context.Background()))
}

func TestSceneViewLifecycle(t *testing.T) {
	loader := &memLoader{roots: []*scene.Node{scene.NewNode("helmet")}}
	assets := testAssets()
	assets.Model = "helmet.glb"

	v := NewSceneView(loader, testCamera(), assets)
	require.NotNil(t, v.Model)
	assert.False(t, v.Group.Visible)

	require.NoError(t, v.Ready(context.Background()))
	assert.ElementsMatch(t, []string{"textures", "svg", "model"}, loader.calls)

	v.Mount()
	assert.NotNil(t, v.Floor.Mesh())
	assert.Len(t, v.Floor.Group.Children, 1)
	assert.Len(t, v.Triangle.Group.Children, 1)
	assert.Len(t, v.Model.Group.Children, 1)
	assert.False(t, v.Group.Visible)

	v.AnimateIn()
	assert.True(t, v.Group.Visible)
}

func TestSceneViewAbsorbsAssetFailures(t *testing.T) {
	loader := &memLoader{
		textureErr: errors.New("missing texture"),
		modelErr:   errors.New("missing model"),
	}
	assets := testAssets()
	assets.Model = "missing.glb"

	v := NewSceneView(loader, testCamera(), assets)
	require.NoError(t, v.Ready(context.Background()))
	v.Mount()

	assert.Nil(t, v.Floor.Mesh())
	assert.Empty(t, v.Model.Group.Children)
	assert.Len(t, v.Triangle.Group.Children, 1)
}

func TestSceneViewWithoutModel(t *testing.T) {
	v := NewSceneView(&memLoader{}, testCamera(), testAssets())
	assert.Nil(t, v.Model)
	assert.Len(t, v.Group.Children, 2)
}

func TestSceneViewTriangleFailureKeepsFloor(t *testing.T) {
	assets := testAssets()
	assets.Triangle = "data:image/svg+xml;base64,!!!"
	v := NewSceneView(&memLoader{textureDelay: 100 * time.Millisecond}, testCamera(), assets)

	assert.Error(t, v.Ready(context.Background()))
	v.Mount()

	assert.NotNil(t, v.Floor.Mesh(), "floor textures load even though the triangle failed")
	assert.Len(t, v.Floor.Group.Children, 1)
	assert.Empty(t, v.Triangle.Group.Children)
}
