package slots

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mj1618/rotator/internal/logfields"
)

// Watcher reloads the slot document into a registry when it changes on disk.
type Watcher struct {
	path     string
	registry *Registry
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func()
}

// NewWatcher creates a watcher for path. onReload, if non-nil, runs after
// each successful reload.
func NewWatcher(path string, r *Registry, onReload func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve slot document path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		registry: r,
		watcher:  fw,
		debounce: 250 * time.Millisecond,
		onReload: onReload,
	}, nil
}

// Run watches until ctx is cancelled. The parent directory is watched
// because editors often replace the file instead of writing it.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Info("Watching slot document", logfields.Path(w.path))

	name := filepath.Base(w.path)
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := Load(w.path, w.registry); err != nil {
				slog.Error("Failed to reload slot document", logfields.Path(w.path), logfields.Error(err))
				continue
			}
			if w.onReload != nil {
				w.onReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Slot watcher error", logfields.Error(err))
		}
	}
}
