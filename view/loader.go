// Package view builds the scene content: a reflective floor, a stroked SVG
// triangle and an optional glTF model, grouped under a SceneView.
package view

import (
	"context"

	"fluid-glow/scene"
)

// Loader fetches assets. Implementations must be safe to call from several
// goroutines; views load concurrently and only touch the scene graph from
// Mount.
type Loader interface {
	LoadTextures(ctx context.Context, paths ...string) ([]*scene.Texture, error)
	LoadSVG(ctx context.Context, src string) (*scene.SVGData, error)
	LoadModel(ctx context.Context, path string) (*scene.ModelData, error)
}
