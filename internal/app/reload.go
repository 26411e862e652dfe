package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// reloadDebounce is the quiet period after the last write before reloading.
const reloadDebounce = 500 * time.Millisecond

// Reloader watches the config file and re-applies it on change.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	load    func() (Config, error)
	apply   func(Config) error
}

// NewReloader watches path. load rebuilds the full Config (file, env and
// flags); apply installs it. The parent directory is watched so editors
// that replace the file by rename are still seen.
func NewReloader(path string, load func() (Config, error), apply func(Config) error) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}
	return &Reloader{watcher: watcher, path: abs, load: load, apply: apply}, nil
}

// Run blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (r *Reloader) reload() {
	cfg, err := r.load()
	if err == nil {
		err = ValidateConfig(cfg)
	}
	if err == nil {
		err = r.apply(cfg)
	}
	if err != nil {
		log.Error().Err(err).Str("path", r.path).Msg("config reload failed; keeping previous settings")
		return
	}
	log.Info().Str("path", r.path).Msg("config reloaded")
}
