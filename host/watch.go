package host

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// WatchProject reloads the project file at path into the active session
// whenever it is written, until ctx ends. The directory is watched too so
// atomic saves (write to temp, rename) are seen.
func (l *Loop) WatchProject(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	l.log.Info("watching project", zap.String("path", path))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce = time.After(reloadDebounce)
			}

		case <-debounce:
			debounce = nil
			res, err := l.Execute(ctx, fmt.Sprintf("project.load %q", path))
			if err != nil {
				return nil
			}
			if res.OK() {
				l.log.Info("project reloaded", zap.String("path", path))
			} else {
				l.log.Warn("project reload failed", zap.String("path", path), zap.String("reason", res.Message))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Error("file watcher error", zap.Error(err))
		}
	}
}
