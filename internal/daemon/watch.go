package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/config"
)

const reloadDebounce = 250 * time.Millisecond

// WatchConfig reloads the config file whenever it changes and hands the
// result to apply. The parent directory is watched so editors that replace
// the file on save are picked up. It blocks until ctx is canceled.
func WatchConfig(ctx context.Context, path string, apply func(config.Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors often emit several events per save.
			pending = time.After(reloadDebounce)
		case <-pending:
			pending = nil
			cfg, err := config.LoadFile(path)
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("config reload failed; keeping previous settings")
				continue
			}
			apply(cfg)
			log.WithField("path", path).Info("config reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}
