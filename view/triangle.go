package view

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"fluid-glow/core"
	"fluid-glow/scene"
)

var trianglePosition = mgl32.Vec3{0, 1.4, -11}

// Triangle is the stroked outline of an SVG path, floating behind the floor's
// horizon and turned toward the camera.
type Triangle struct {
	Group *scene.Node

	camera *scene.Camera
	loader Loader
	src    string

	strokes []*scene.Node
	mounted bool
}

func NewTriangle(loader Loader, camera *scene.Camera, src string) *Triangle {
	g := scene.NewNode("Triangle")
	g.SetPosition(trianglePosition)
	// SVG y grows downward
	g.SetScale(mgl32.Vec3{1, -1, 1})
	return &Triangle{
		Group:  g,
		camera: camera,
		loader: loader,
		src:    src,
	}
}

// Load parses the SVG and builds one stroke mesh per sub-path.
func (t *Triangle) Load(ctx context.Context) error {
	data, err := t.loader.LoadSVG(ctx, t.src)
	if err != nil {
		return fmt.Errorf("triangle: %w", err)
	}

	mat := scene.NewBasicMaterial("triangle", core.ColorWhite)
	mat.DoubleSided = true

	var strokes []*scene.Node
	for i, path := range data.Paths {
		for j, sub := range path.SubPaths {
			mesh := scene.PointsToStroke(fmt.Sprintf("triangle.%d.%d", i, j), sub, path.Style)
			if mesh == nil {
				continue
			}
			mesh.Center()
			mesh.Material = mat
			strokes = append(strokes, scene.NewMeshNode(mesh))
		}
	}
	t.strokes = strokes
	return nil
}

// Mount attaches the strokes and faces the group toward the camera. It runs
// on the render thread.
func (t *Triangle) Mount() {
	if t.mounted {
		return
	}
	for _, s := range t.strokes {
		t.Group.Add(s)
	}
	t.Group.LookAt(t.camera.Position)
	t.mounted = true
}

// Strokes returns the stroke meshes built by Load.
func (t *Triangle) Strokes() []*scene.Node {
	return t.strokes
}
