package scene

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadTextures loads every path concurrently. The batch fails as a whole:
// if any texture fails, the first error is returned and no textures are.
func LoadTextures(ctx context.Context, paths ...string) ([]*Texture, error) {
	out := make([]*Texture, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := LoadTexture(path)
			if err != nil {
				return err
			}
			out[i] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
