package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"fluid-glow/config"
	"fluid-glow/core"
	"fluid-glow/internal/opengl"
	"fluid-glow/platform"
)

// Run opens the window and drives frames until the window closes or ctx is
// done. configPath, when set, is watched for tunable changes and is where
// S saves.
func Run(ctx context.Context, cfg *config.Config, configPath string) error {
	win, err := platform.NewWindow(platform.Config{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  true,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	device, err := opengl.NewDevice()
	if err != nil {
		return err
	}
	defer device.Destroy()

	var tunables <-chan config.Tunables
	if configPath != "" {
		ch, err := config.Watch(ctx, configPath)
		if err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("config watch disabled")
		} else {
			tunables = ch
		}
	}

	a := New(device, Options{
		Config:     cfg,
		ConfigPath: configPath,
		Title:      win.SetTitle,
		Tunables:   tunables,
		Quit:       win.Close,
	})
	defer a.Dispose()

	for _, m := range a.Render.Materials() {
		if err := device.Compile(m.Program); err != nil {
			return fmt.Errorf("%s shader: %w", m.Name, err)
		}
	}

	win.SetHandlers(platform.Handlers{
		OnResize:      a.Resize,
		OnPointerDown: a.OnPointerDown,
		OnPointerMove: a.OnPointerMove,
		OnPointerUp:   a.OnPointerUp,
		OnKey:         a.OnKey,
	})
	a.Resize(win.Size())
	a.Start(ctx)

	ticker := core.NewTicker()
	for !win.ShouldClose() && ctx.Err() == nil {
		win.PollEvents()
		a.Update(ticker.Tick())
		win.SwapBuffers()
	}
	log.Info().Msg("shutting down")
	return nil
}
