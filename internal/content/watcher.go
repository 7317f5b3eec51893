package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the content root and reloads the
// store when content files change, until ctx is cancelled. Bursts of
// events (editor save patterns, directory moves) are debounced into a
// single reload. New directories created at runtime are added to the
// watch list.
func Watch(ctx context.Context, store *Store, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.FS().Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDebounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := store.Reload(); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Debug("watcher: store reloaded")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleReload()
					continue
				}
			}

			if strings.HasSuffix(ev.Name, store.FS().Ext()) {
				scheduleReload()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// addDirsRecursive adds dir and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
