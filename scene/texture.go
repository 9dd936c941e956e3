package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, bottom row first
	// when loaded with flipY).
	Pixels []byte

	WrapS, WrapT Wrap
	// Repeat scales UVs before sampling.
	Repeat mgl32.Vec2

	GLID uint32
}

// SetRepeat switches both axes to repeat wrapping and tiles the texture
// n times per UV unit.
func (t *Texture) SetRepeat(n float32) {
	t.WrapS = WrapRepeat
	t.WrapT = WrapRepeat
	t.Repeat = mgl32.Vec2{n, n}
}

// LoadTexture reads a PNG, JPEG, WebP or BMP file from disk and returns a
// CPU-side Texture with rows flipped to GL's bottom-left origin.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := DecodeTexture(path, f, true)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

func loadTextureNoFlip(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()
	return DecodeTexture(path, f, false)
}

// DecodeTexture decodes any registered image format into an RGBA8 Texture.
func DecodeTexture(name string, r io.Reader, flipY bool) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	var rgba *image.RGBA
	if flipY {
		rgba = transform.FlipV(img)
	} else {
		rgba = clone.AsRGBA(img)
	}
	b := rgba.Bounds()

	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
		Repeat: mgl32.Vec2{1, 1},
	}, nil
}

func decodeImageBytes(name string, data []byte) (*Texture, error) {
	return DecodeTexture(name, bytes.NewReader(data), false)
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
		Repeat: mgl32.Vec2{1, 1},
	}
}
