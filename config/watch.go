package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch reloads path whenever it is written and sends the new tunables on
// the returned channel. The directory is watched rather than the file so
// editors that replace the file on save keep working. Invalid files are
// logged and skipped. The channel closes when ctx is done.
func Watch(ctx context.Context, path string) (<-chan Tunables, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan Tunables, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				// truncate-then-write shows up as an empty file first
				if fi, err := os.Stat(abs); err != nil || fi.Size() == 0 {
					continue
				}
				c, err := Load(abs)
				if err != nil {
					log.Warn().Err(err).Str("path", abs).Msg("config reload failed")
					continue
				}
				log.Info().Str("path", abs).Msg("config reloaded")
				// keep only the newest value
				select {
				case <-out:
				default:
				}
				out <- c.Tunables
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher")
			}
		}
	}()
	return out, nil
}
