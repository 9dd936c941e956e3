package controller

import (
	"context"

	"fluid-glow/view"
)

// SceneController forwards the app lifecycle to the scene view.
type SceneController struct {
	view *view.SceneView
}

func NewSceneController(v *view.SceneView) *SceneController {
	return &SceneController{view: v}
}

func (c *SceneController) Resize(width, height int) {
	c.view.Resize(width, height)
}

func (c *SceneController) Update() {}

// Ready blocks until every view has finished loading.
func (c *SceneController) Ready(ctx context.Context) error {
	return c.view.Ready(ctx)
}

func (c *SceneController) Mount() {
	c.view.Mount()
}

func (c *SceneController) AnimateIn() {
	c.view.AnimateIn()
}
