package simsession

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchPollInterval = 100 * time.Millisecond

// settingsWatcher reports file writes under the settings location.
type settingsWatcher struct {
	dir      string
	interval time.Duration
	onChange func(path string)
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// startWatcher watches the settings location until Release. It uses fsnotify
// and falls back to polling when fsnotify is unavailable.
func (h *handle) startWatcher() {
	w := &settingsWatcher{
		dir:      h.cfg.SettingsLocation,
		interval: watchPollInterval,
		onChange: h.settingsChanged,
		logger:   h.logger,
	}
	h.watcher = w

	if !h.lib.forcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(w.dir); err == nil {
				w.fsw = fsw
				h.wg.Add(1)
				go func() {
					defer h.wg.Done()
					w.watch(h.done)
				}()
				return
			}
			fsw.Close()
		}
		h.logger.Debug("fsnotify unavailable, polling settings", slog.Any("error", err))
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		w.poll(h.done)
	}()
}

func (w *settingsWatcher) watch(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.onChange(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Usually recoverable; keep watching.
			w.logger.Debug("settings watcher error", slog.Any("error", err))
		}
	}
}

func (w *settingsWatcher) poll(done <-chan struct{}) {
	seen := w.scan()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			current := w.scan()
			for path, mod := range current {
				if prev, ok := seen[path]; !ok || !prev.Equal(mod) {
					w.onChange(path)
				}
			}
			seen = current
		}
	}
}

// scan returns the modification time of every regular file in dir.
func (w *settingsWatcher) scan() map[string]time.Time {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil
	}

	out := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out[filepath.Join(w.dir, e.Name())] = info.ModTime()
	}
	return out
}

// Close releases the fsnotify watcher, if any.
func (w *settingsWatcher) Close() error {
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
