// Package app wires the controllers, views and panels together and runs the
// frame loop.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"fluid-glow/config"
	"fluid-glow/controller"
	"fluid-glow/core"
	"fluid-glow/panel"
	"fluid-glow/platform"
	"fluid-glow/render"
	"fluid-glow/view"
)

type Options struct {
	Config *config.Config
	// ConfigPath is where S saves the current tunables; empty disables saving.
	ConfigPath string
	// Loader overrides asset loading from disk.
	Loader view.Loader
	// Title receives the keyboard panel's status line.
	Title func(string)
	// Tunables delivers reloaded tunables, normally from config.Watch.
	Tunables <-chan config.Tunables
	// Quit is called on Escape.
	Quit func()
}

// App owns every controller. All methods except Start's background load run
// on the render thread.
type App struct {
	cfg        *config.Config
	configPath string

	World  *controller.WorldController
	View   *view.SceneView
	Camera *controller.CameraController
	Scene  *controller.SceneController
	Render *render.Manager
	Panel  *controller.PanelController

	Keyboard *panel.Keyboard
	Remote   *panel.Remote // nil unless the remote panel is enabled
	ui       panel.Multi

	ready    chan error
	isReady  bool
	tunables <-chan config.Tunables
	quit     func()
}

// New builds the world, the views and the controllers, in that order.
func New(device render.Device, opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		ready:      make(chan error, 1),
		tunables:   opts.Tunables,
		quit:       opts.Quit,
	}

	a.World = controller.NewWorldController(device, opts.Loader)

	a.View = view.NewSceneView(a.World, a.World.Camera, cfg.Assets)
	a.World.Scene.Add(a.View.Group)

	a.Keyboard = panel.NewKeyboard(cfg.Window.Title, opts.Title)
	a.ui = panel.Multi{a.Keyboard}
	if cfg.Panel.Remote {
		a.Remote = panel.NewRemote(cfg.Panel.Addr)
		a.ui = append(a.ui, a.Remote)
	}

	a.Camera = controller.NewCameraController(a.World.Camera)
	a.Scene = controller.NewSceneController(a.View)
	a.Render = render.NewManager(device, a.World.Scene, a.World.Camera, renderOptions(cfg.Tunables, a.World.Aspect))
	a.Render.SetEnabled(cfg.Tunables.PostProcessing)
	a.Panel = controller.NewPanelController(a.Render)

	return a
}

func renderOptions(t config.Tunables, aspect *core.Uniform) render.Options {
	opts := render.DefaultOptions()
	opts.LuminosityThreshold = t.LuminosityThreshold
	opts.LuminositySmoothing = t.LuminositySmoothing
	opts.BloomStrength = t.BloomStrength
	opts.BloomRadius = t.BloomRadius
	opts.BloomDistortion = t.BloomDistortion
	opts.Fluid.Iterations = t.Iterations
	opts.Fluid.DensityDissipation = t.DensityDissipation
	opts.Fluid.VelocityDissipation = t.VelocityDissipation
	opts.Fluid.PressureDissipation = t.PressureDissipation
	opts.Fluid.CurlStrength = t.CurlStrength
	opts.Fluid.Radius = t.Radius
	opts.Aspect = aspect
	return opts
}

// Start loads the scene content in the background and starts the remote
// panel. Update finishes the hand-off once loading is done.
func (a *App) Start(ctx context.Context) {
	if a.Remote != nil {
		a.Remote.Start(ctx)
	}
	go func() {
		a.ready <- a.Scene.Ready(ctx)
	}()
}

// Ready reports whether the scene content has been mounted.
func (a *App) Ready() bool {
	return a.isReady
}

// Resize takes the logical size and device pixel ratio.
func (a *App) Resize(width, height int, dpr float64) {
	a.World.Resize(width, height, dpr)
	a.Camera.Resize(width, height)
	a.Scene.Resize(width, height)
	a.Render.Resize(width, height, dpr)
}

// Update advances one frame.
func (a *App) Update(f core.Frame) {
	a.poll()

	a.World.Update(f.Time/1000, f.Delta, f.Number)
	a.Camera.Update()
	a.Scene.Update()
	a.Render.Update()
	a.ui.Update(float32(f.Delta))
}

func (a *App) poll() {
	select {
	case err := <-a.ready:
		a.onReady(err)
	default:
	}

	if a.tunables == nil {
		return
	}
	select {
	case t, ok := <-a.tunables:
		if !ok {
			a.tunables = nil
			return
		}
		a.Panel.Apply(t)
		log.Info().Msg("tunables reloaded")
	default:
	}
}

// onReady mounts whatever loaded and reveals the scene. A load error is
// logged; the views that did load are still shown.
func (a *App) onReady(err error) {
	if err != nil {
		log.Error().Err(err).Msg("scene load")
	}
	a.Scene.Mount()
	a.Panel.Init(a.ui)
	a.Camera.AnimateIn()
	a.Scene.AnimateIn()
	a.isReady = true
	log.Info().Msg("scene ready")
}

func (a *App) OnPointerDown(x, y float32) {
	a.Camera.OnPointerDown(x, y)
	a.Render.OnPointerDown(x, y)
}

func (a *App) OnPointerMove(x, y float32) {
	a.Camera.OnPointerMove(x, y)
	a.Render.OnPointerMove(x, y)
}

func (a *App) OnPointerUp(x, y float32) {
	a.Camera.OnPointerUp(x, y)
	a.Render.OnPointerUp(x, y)
}

func (a *App) OnKey(key platform.Key, mods platform.Mods) {
	switch key {
	case platform.KeyEscape:
		if a.quit != nil {
			a.quit()
		}
	case platform.KeyP:
		a.Panel.TogglePost()
	case platform.KeyR:
		a.Panel.Apply(config.DefaultTunables())
		log.Info().Msg("tunables reset")
	case platform.KeyS:
		if err := a.save(); err != nil {
			log.Error().Err(err).Msg("config save")
		}
	case platform.KeyTab:
		if mods.Has(platform.ModShift) {
			a.Keyboard.Prev()
		} else {
			a.Keyboard.Next()
		}
	case platform.KeyUp:
		a.Keyboard.Prev()
	case platform.KeyDown:
		a.Keyboard.Next()
	case platform.KeyLeft:
		a.Keyboard.Decrease()
	case platform.KeyRight:
		a.Keyboard.Increase()
	}
}

// save writes the config with the live tunables.
func (a *App) save() error {
	if a.configPath == "" {
		return errors.New("no config path")
	}
	a.cfg.Tunables = a.Panel.Tunables()
	if err := config.Save(a.configPath, a.cfg); err != nil {
		return fmt.Errorf("save %s: %w", a.configPath, err)
	}
	log.Info().Str("path", a.configPath).Msg("config saved")
	return nil
}

// Dispose releases the pipeline's GPU storage and stops the remote panel.
func (a *App) Dispose() {
	a.Render.Dispose()
	if a.Remote != nil {
		a.Remote.Close()
	}
}
