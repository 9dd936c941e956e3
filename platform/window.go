// Package platform owns the GLFW window: the GL context, size and pixel
// ratio, and pointer/key input delivered as callbacks on the main thread.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog/log"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	handlers Handlers
	pressed  bool
}

type Config struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Title:     "Fluid Glow",
		Resizable: true,
		VSync:     true,
	}
}

// Handlers receive window events. Pointer coordinates are logical pixels
// from the top-left corner. Nil handlers are skipped.
type Handlers struct {
	OnResize      func(width, height int, dpr float64)
	OnPointerDown func(x, y float32)
	OnPointerMove func(x, y float32)
	OnPointerUp   func(x, y float32)
	OnKey         func(key Key, mods Mods)
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		Handle: handle,
		Title:  config.Title,
	}
	w.Width, w.Height = handle.GetSize()

	handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width, w.Height = width, height
		w.emitResize()
	})
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		w.emitResize()
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if h := w.handlers.OnPointerMove; h != nil {
			h(float32(x), float32(y))
		}
	})
	handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		x, y := win.GetCursorPos()
		switch action {
		case glfw.Press:
			w.pressed = true
			if h := w.handlers.OnPointerDown; h != nil {
				h(float32(x), float32(y))
			}
		case glfw.Release:
			w.pressed = false
			if h := w.handlers.OnPointerUp; h != nil {
				h(float32(x), float32(y))
			}
		}
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		if h := w.handlers.OnKey; h != nil {
			h(Key(key), Mods(mods))
		}
	})

	log.Info().Int("width", w.Width).Int("height", w.Height).Float64("dpr", w.PixelRatio()).Msg("window created")
	return w, nil
}

// SetHandlers replaces the event handlers.
func (w *Window) SetHandlers(h Handlers) {
	w.handlers = h
}

func (w *Window) emitResize() {
	if h := w.handlers.OnResize; h != nil && w.Width > 0 && w.Height > 0 {
		h(w.Width, w.Height, w.PixelRatio())
	}
}

// Size returns the logical size and device pixel ratio.
func (w *Window) Size() (int, int, float64) {
	return w.Width, w.Height, w.PixelRatio()
}

// PixelRatio is framebuffer pixels per logical pixel.
func (w *Window) PixelRatio() float64 {
	fbw, _ := w.Handle.GetFramebufferSize()
	return pixelRatio(w.Width, fbw)
}

func pixelRatio(logical, physical int) float64 {
	if logical <= 0 || physical <= 0 {
		return 1
	}
	return float64(physical) / float64(logical)
}

// Pressed reports whether the primary button is held.
func (w *Window) Pressed() bool {
	return w.pressed
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) SetTitle(title string) {
	if title == w.Title {
		return
	}
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
