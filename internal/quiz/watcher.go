package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hirescore/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Catalog when its bank file changes on disk
type Watcher struct {
	mu sync.Mutex

	catalog       *Catalog
	file          string
	lastModTime   time.Time
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	logger     *errors.Logger
	running    bool
}

// NewWatcher creates a watcher for the catalog's bank file
func NewWatcher(catalog *Catalog, debounceDelay time.Duration, logger *errors.Logger) (*Watcher, error) {
	if catalog.Path() == "" {
		return nil, fmt.Errorf("catalog uses the embedded bank, nothing to watch")
	}
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}

	return &Watcher{
		catalog:       catalog,
		file:          catalog.Path(),
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}, nil
}

// Start begins watching the bank file
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("question bank watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	if stat, err := os.Stat(w.file); err == nil {
		w.lastModTime = stat.ModTime()
	}

	// Watch the directory so editors that replace the file by rename are seen
	dir := filepath.Dir(w.file)
	if err := w.fsWatcher.Add(dir); err != nil {
		_ = w.fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	// Each run gets its own stop channel so the watcher can be restarted
	w.stopChan = make(chan struct{})
	w.running = true
	go w.watchLoop(w.fsWatcher, w.stopChan)

	w.logger.Info("Question bank watcher started", "file", w.file, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops watching
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	w.logger.Info("Question bank watcher stopped")
	return nil
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "File watcher error")

		case <-w.reloadChan:
			if w.hasFileChanged() {
				_ = w.catalog.Reload()
			}

		case <-stop:
			return
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.file) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) hasFileChanged() bool {
	stat, err := os.Stat(w.file)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !stat.ModTime().Equal(w.lastModTime) {
		w.lastModTime = stat.ModTime()
		return true
	}
	return false
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
