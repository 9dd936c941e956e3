package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fluid-glow/app"
	"fluid-glow/config"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		logLevel   = flag.String("log", "", "log level (debug, info, warn, error); overrides config")
		width      = flag.Int("width", 0, "window width; overrides config")
		height     = flag.Int("height", 0, "window height; overrides config")
		fullscreen = flag.Bool("fullscreen", false, "fullscreen on the primary monitor")
		remote     = flag.Bool("remote", false, "serve the remote panel")
		addr       = flag.String("addr", "", "remote panel listen address; overrides config")
		model      = flag.String("model", "", "optional glTF model to place in the scene")
		writeCfg   = flag.Bool("write-config", false, "write the effective config to -config and exit")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", *configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	case err != nil:
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}

	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *width > 0 {
		cfg.Window.Width = *width
	}
	if *height > 0 {
		cfg.Window.Height = *height
	}
	if *fullscreen {
		cfg.Window.Fullscreen = true
	}
	if *remote {
		cfg.Panel.Remote = true
	}
	if *addr != "" {
		cfg.Panel.Addr = *addr
	}
	if *model != "" {
		cfg.Assets.Model = *model
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Err(err).Str("level", cfg.Log.Level).Msg("bad log level; using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if *writeCfg {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, *configPath); err != nil {
		log.Fatal().Err(err).Msg("fluidglow")
	}
}
