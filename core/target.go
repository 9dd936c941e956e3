package core

// Format is the pixel storage of a render target's color attachment.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

type TargetOptions struct {
	Format      Format
	Filter      Filter
	DepthBuffer bool
}

// Target describes an off-screen image buffer. The backend allocates GPU
// storage lazily and re-specifies it when Generation changes, so a Target is
// resized in place and never recreated.
type Target struct {
	Name        string
	Width       int
	Height      int
	Format      Format
	Filter      Filter
	DepthBuffer bool

	// Generation increments on every size change.
	Generation uint64

	// Handle is owned by the rendering backend.
	Handle any
}

func NewTarget(name string, width, height int, opts TargetOptions) *Target {
	return &Target{
		Name:        name,
		Width:       width,
		Height:      height,
		Format:      opts.Format,
		Filter:      opts.Filter,
		DepthBuffer: opts.DepthBuffer,
		Generation:  1,
	}
}

// SetSize records new dimensions. Zero and negative sizes are stored as
// given; the backend clamps allocation to 1×1.
func (t *Target) SetSize(width, height int) {
	if t.Width == width && t.Height == height {
		return
	}
	t.Width = width
	t.Height = height
	t.Generation++
}

// Clone returns a target with the same options and size but no storage.
func (t *Target) Clone(name string) *Target {
	return NewTarget(name, t.Width, t.Height, TargetOptions{
		Format:      t.Format,
		Filter:      t.Filter,
		DepthBuffer: t.DepthBuffer,
	})
}
