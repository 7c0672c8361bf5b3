package highlight

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs an fsnotify watcher over the spec directory until ctx is
// cancelled, reloading the registry when a .phl file changes. Changes are
// debounced: editors typically fire several events per save. cb, if non-nil,
// is called after each reload.
func Watch(ctx context.Context, reg *Registry, dir string, log *slog.Logger, cb func()) error {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info("highlighter: watching spec directory", slog.String("dir", dir))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			log.Info("highlighter: watcher stopped")
			return nil

		case <-reloadCh:
			reg.Reload()
			log.Debug("highlighter: specs reloaded")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, SpecExt) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("highlighter: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
