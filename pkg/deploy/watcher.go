package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TemplateWatcher watches a templates directory and triggers a redeploy
// when template files change. Changes are debounced so an editor writing
// several files (or writing one file in several syscalls) produces a
// single run.
type TemplateWatcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// NewTemplateWatcher creates a watcher over the given templates directory.
// A non-positive debounce falls back to one second; policy deployments are
// slow enough that there is no point reacting faster.
func NewTemplateWatcher(dir string, debounce time.Duration, logger *slog.Logger) *TemplateWatcher {
	if debounce <= 0 {
		debounce = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateWatcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
	}
}

// Watch blocks, invoking onChange after each debounced burst of template
// file changes, until the context is cancelled. Errors from onChange are
// logged and watching continues.
func (w *TemplateWatcher) Watch(ctx context.Context, onChange func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info("watching templates",
		"dir", w.dir,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("template change detected", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := onChange(ctx); err != nil {
				w.logger.Error("redeploy after change failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant filters events down to writes of JSON template files.
func (w *TemplateWatcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}
