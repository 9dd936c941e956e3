package view

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fluid-glow/config"
	"fluid-glow/scene"
)

// SceneView groups the floor, the triangle and the optional model. It stays
// hidden until AnimateIn.
type SceneView struct {
	Group    *scene.Node
	Floor    *Floor
	Triangle *Triangle
	Model    *Model // nil when no model is configured
}

func NewSceneView(loader Loader, camera *scene.Camera, assets config.Assets) *SceneView {
	v := &SceneView{
		Group:    scene.NewNode("SceneView"),
		Floor:    NewFloor(loader, assets.Floor),
		Triangle: NewTriangle(loader, camera, assets.Triangle),
	}
	v.Group.Visible = false
	v.Group.Add(v.Floor.Group)
	v.Group.Add(v.Triangle.Group)
	if assets.Model != "" {
		v.Model = NewModel(loader, assets.Model)
		v.Group.Add(v.Model.Group)
	}
	return v
}

func (v *SceneView) Resize(width, height int) {
	v.Floor.Resize(width, height)
}

// Ready loads every child concurrently and returns once all loads have
// finished. Nothing is attached to the graph until Mount. The children
// share ctx but not each other's failures: a bad triangle source does not
// cancel the floor textures.
func (v *SceneView) Ready(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		v.Floor.Load(ctx)
		return nil
	})
	g.Go(func() error {
		return v.Triangle.Load(ctx)
	})
	if v.Model != nil {
		g.Go(func() error {
			v.Model.Load(ctx)
			return nil
		})
	}
	return g.Wait()
}

// Mount attaches whatever Ready built. It runs on the render thread.
func (v *SceneView) Mount() {
	v.Floor.Mount()
	v.Triangle.Mount()
	if v.Model != nil {
		v.Model.Mount()
	}
}

func (v *SceneView) AnimateIn() {
	v.Group.Visible = true
}
