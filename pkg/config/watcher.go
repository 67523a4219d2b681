package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	filePath string
	onChange func(*Config)
	done     chan struct{}
	stopped  chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		logger:   logger,
		filePath: path,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked with every successfully
// reloaded configuration. Invalid files are logged and skipped.
func (w *Watcher) SetChangeCallback(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start begins watching the config file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	// Watch the directory containing the file; editors replace files on save.
	if err := w.watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}
	w.running = true

	go w.watch()
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	defer close(w.stopped)
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.filePath)
	if err != nil {
		w.logger.Warn("failed to reload config", "path", w.filePath, "error", err)
		return
	}

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	w.logger.Info("config file changed, reloading", "path", w.filePath)
	if callback != nil {
		callback(cfg)
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.stopped
	return err
}
