package envconf

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a Supplier's config file and invalidates the cached
// snapshot when the file changes, so implementation switches driven by
// configuration edits become visible without a process restart. The
// onChange callback runs after each invalidation; callers typically pass
// the registry's ResetAll so affected capabilities re-resolve.
type Watcher struct {
	fsw      *fsnotify.Watcher
	supplier *Supplier
	onChange func()
	log      *slog.Logger
	done     chan struct{}
}

// Watch starts watching the supplier's config file. Close releases the
// watcher. A nil logger defaults to slog.Default.
func Watch(s *Supplier, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("envconf: create watcher: %w", err)
	}
	// Watch the parent directory, not the file: tools that replace the
	// config via write-to-temp-plus-rename would otherwise drop the watch.
	dir := filepath.Dir(s.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("envconf: watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:      fsw,
		supplier: s,
		onChange: onChange,
		log:      logger,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(w.supplier.path) {
				continue
			}
			w.log.Debug("config change detected", "file", event.Name, "op", event.Op.String())
			if err := w.supplier.reload(); err != nil {
				w.log.Warn("config reload failed, keeping previous values", "error", err)
				continue
			}
			w.supplier.Invalidate()
			if w.onChange != nil {
				w.onChange()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}
