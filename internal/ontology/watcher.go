package ontology

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after the watcher swapped in a new ontology.
type ReloadCallback func(o *Ontology)

const reloadDebounce = 200 * time.Millisecond

// Watch observes the ontology file and reloads it into h when its content
// changes, until ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors that
// save by writing a temp file and renaming it are picked up. Bursts of
// events are debounced; a reload whose checksum matches the active ontology
// is dropped. A reload that fails to parse keeps the previous ontology.
func Watch(ctx context.Context, h *Holder, path string, logger *slog.Logger, cb ReloadCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("ontology watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("ontology watcher: stopped")
			return nil

		case <-timerCh:
			reload(h, abs, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				logger.Debug("ontology watcher: change", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("ontology watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reload(h *Holder, path string, logger *slog.Logger, cb ReloadCallback) {
	o, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Removed or mid-rename; keep serving the current ontology.
		logger.Debug("ontology watcher: file unavailable", slog.String("error", err.Error()))
		return
	}
	if err != nil {
		logger.Warn("ontology watcher: reload failed, keeping previous", slog.String("error", err.Error()))
		return
	}
	if cur := h.Current(); cur != nil && cur.Checksum != "" && cur.Checksum == o.Checksum {
		return
	}
	h.Set(o)
	o.LogSummary(logger)
	if cb != nil {
		cb(o)
	}
}
