package platform

import "github.com/go-gl/glfw/v3.3/glfw"

type Key int

// Mods is a bit set of held modifier keys.
type Mods int

const (
	KeyEscape = Key(glfw.KeyEscape)
	KeyTab    = Key(glfw.KeyTab)
	KeyRight  = Key(glfw.KeyRight)
	KeyLeft   = Key(glfw.KeyLeft)
	KeyDown   = Key(glfw.KeyDown)
	KeyUp     = Key(glfw.KeyUp)
	KeyP      = Key(glfw.KeyP)
	KeyR      = Key(glfw.KeyR)
	KeyS      = Key(glfw.KeyS)
)

const (
	ModShift   = Mods(glfw.ModShift)
	ModControl = Mods(glfw.ModControl)
	ModAlt     = Mods(glfw.ModAlt)
)

func (m Mods) Has(mod Mods) bool {
	return m&mod != 0
}
