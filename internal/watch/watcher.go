package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"imgview/internal/errors"
	"imgview/internal/log"
	"imgview/internal/scan"

	"github.com/fsnotify/fsnotify"
)

// relevantOps are the operations that can change a directory's image set
const relevantOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename | fsnotify.Write

// Handler is called with the watched directory once changes settle
type Handler func(dir string)

// Watcher monitors a single directory for image files appearing,
// disappearing or changing, using fsnotify.
type Watcher struct {
	filter   *scan.Filter
	debounce time.Duration
	handler  Handler

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Channel to signal stop
	stopChan chan struct{}

	// Guards everything below
	mutex   sync.RWMutex
	dir     string
	timer   *time.Timer
	running bool
	closed  bool
}

// New creates a watcher. handler runs on a timer goroutine, debounce after
// the last relevant event.
func New(filter *scan.Filter, debounce time.Duration, handler Handler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if filter == nil {
		filter = scan.MustFilter()
	}

	return &Watcher{
		filter:    filter,
		debounce:  debounce,
		handler:   handler,
		fsWatcher: fsWatcher,
		stopChan:  make(chan struct{}),
	}, nil
}

// Watch replaces the watched directory with dir
func (w *Watcher) Watch(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("directory not found", dir, errors.FileNotFound, err)
		}
		return errors.NewFileError("error accessing directory", dir, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return errors.NewFileError("not a directory", dir, errors.InvalidPath, nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return errors.New("watcher stopped")
	}
	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		if err := w.fsWatcher.Remove(w.dir); err != nil {
			log.LogWithFields(log.F("directory", w.dir)).WithError(err).Debug("Removing previous watch")
		}
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return errors.NewFileError("failed to watch directory", dir, errors.FileAccessDenied, err)
	}
	w.dir = dir
	w.stopTimer()

	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Directory returns the watched directory, or ""
func (w *Watcher) Directory() string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.dir
}

// IsRunning reports whether the event loop is active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Start begins processing fsnotify events
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return errors.New("watcher stopped")
	}
	if w.running {
		return errors.New("watcher already running")
	}
	w.running = true

	go w.loop()

	log.Debug("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithError(err).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&relevantOps == 0 {
		return
	}
	if !w.filter.Match(event.Name) {
		return
	}
	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
		// The entry may already be gone again; Remove/Rename follow then.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return
		}
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed || filepath.Dir(event.Name) != w.dir {
		return
	}

	log.LogWithFields(log.F("file", event.Name), log.F("op", event.Op.String())).Debug("Image file changed")

	dir := w.dir
	w.stopTimer()
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mutex.RLock()
		current := !w.closed && w.dir == dir
		w.mutex.RUnlock()
		if current && w.handler != nil {
			w.handler(dir)
		}
	})
}

// stopTimer must be called with the mutex held
func (w *Watcher) stopTimer() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop halts the watcher and releases the fsnotify instance. A stopped
// watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.running = false
	w.stopTimer()
	close(w.stopChan)

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithError(err).Error("Error closing fsnotify watcher")
	}

	log.Debug("Watcher stopped")
}
