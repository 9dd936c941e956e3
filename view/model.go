package view

import (
	"context"

	"github.com/rs/zerolog/log"

	"fluid-glow/scene"
)

// Model is an optional glTF asset placed under the scene view.
type Model struct {
	Group *scene.Node

	loader Loader
	path   string

	roots   []*scene.Node
	mounted bool
}

func NewModel(loader Loader, path string) *Model {
	return &Model{
		Group:  scene.NewNode("Model"),
		loader: loader,
		path:   path,
	}
}

// Load reads the model. Failures are logged and leave the group empty.
func (m *Model) Load(ctx context.Context) {
	res, err := m.loader.LoadModel(ctx, m.path)
	if err != nil {
		log.Error().Err(err).Str("model", m.path).Msg("model load")
		return
	}
	m.roots = res.Roots
	log.Info().Str("model", m.path).Int("roots", len(res.Roots)).Int("textures", len(res.Textures)).Msg("model loaded")
}

func (m *Model) Mount() {
	if m.mounted {
		return
	}
	for _, r := range m.roots {
		m.Group.Add(r)
	}
	m.mounted = true
}
