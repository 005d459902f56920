package viewer

import (
	"context"
	"sync/atomic"

	"imgview/internal/errors"
	"imgview/internal/log"
	"imgview/internal/scan"
)

// Displayer shows one image. Errors are logged by the controller and never
// undo a cursor move.
type Displayer interface {
	Display(path string) error
}

// Listener receives controller notifications on the control thread
type Listener interface {
	ScanStarted(dir string)
	ScanFinished(Outcome)
	ImageChanged(State)
}

// Poster runs fn on the control thread. It must not run fn synchronously
// on the calling goroutine.
type Poster func(fn func())

// DirWatcher follows the directory whose images are being shown
type DirWatcher interface {
	Watch(dir string) error
	Stop()
}

// Outcome describes how a scan ended
type Outcome struct {
	Dir   string
	Count int
	Err   error
}

// Cancelled reports a scan the user cancelled
func (o Outcome) Cancelled() bool {
	return errors.IsCancelled(o.Err)
}

// Failed reports a scan that ended with an error other than cancellation
func (o Outcome) Failed() bool {
	return o.Err != nil && !o.Cancelled()
}

// Option configures a Controller
type Option func(*Controller)

// WithWatcher points w at every successfully scanned directory
func WithWatcher(w DirWatcher) Option {
	return func(c *Controller) {
		c.watcher = w
	}
}

// Controller owns the viewer State. Apart from DirectoryChanged and Close,
// its methods must be called on the control thread.
type Controller struct {
	loader   *scan.Loader
	display  Displayer
	listener Listener
	post     Poster
	watcher  DirWatcher

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	state   State
	dir     string
	pending *scan.Request
	// keep is the path to stay on when the pending scan completes
	keep string
	// rescan is set when the directory of the pending scan changed after
	// the scan began
	rescan bool
}

// NewController wires a loader, a display and a listener together. post
// must re-enter the thread the other methods are called on.
func NewController(loader *scan.Loader, display Displayer, listener Listener, post Poster, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		loader:   loader,
		display:  display,
		listener: listener,
		post:     post,
		ctx:      ctx,
		cancel:   cancel,
		state:    NewState(nil),
	}
	if c.listener == nil {
		c.listener = nopListener{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open scans the directory named by path, or the directory containing it
// when path is a file. A path that cannot be resolved is reported through
// ScanFinished and returned.
func (c *Controller) Open(path string) error {
	dir, err := scan.ResolveDirectory(c.loader.FS(), path)
	if err != nil {
		log.LogWithError(err).Warn("Cannot open path")
		c.listener.ScanFinished(Outcome{Dir: path, Err: err})
		return err
	}
	c.start(dir, "")
	return nil
}

// Rescan scans the current directory again. It returns false when no
// directory has been opened yet.
func (c *Controller) Rescan() bool {
	dir := c.dir
	if dir == "" && c.pending != nil {
		dir = c.pending.Dir
	}
	if dir == "" {
		return false
	}
	c.start(dir, "")
	return true
}

// CancelScan cancels the pending scan. The listener still receives a
// cancelled Outcome once the worker stops.
func (c *Controller) CancelScan() bool {
	if c.pending == nil {
		return false
	}
	return c.loader.Cancel()
}

// MoveNext selects the next image, wrapping around
func (c *Controller) MoveNext() {
	c.move(c.state.Next())
}

// MovePrevious selects the previous image, wrapping around
func (c *Controller) MovePrevious() {
	c.move(c.state.Previous())
}

// State returns the current viewer state
func (c *Controller) State() State {
	return c.state
}

// Directory returns the directory of the image set on display
func (c *Controller) Directory() string {
	return c.dir
}

// Scanning reports whether a scan is pending
func (c *Controller) Scanning() bool {
	return c.pending != nil
}

// DirectoryChanged requests a rescan of dir if it is still the directory
// on display. A change during a scan of dir is replayed once that scan
// completes. It may be called from any goroutine.
func (c *Controller) DirectoryChanged(dir string) {
	if c.closed.Load() {
		return
	}
	c.post(func() {
		if c.closed.Load() {
			return
		}
		if c.pending != nil {
			if c.pending.Dir == dir {
				c.rescan = true
			}
			return
		}
		if dir != c.dir {
			return
		}
		log.LogWithFields(log.F("directory", dir)).Info("Directory changed, rescanning")
		keep, _ := c.state.Current()
		c.start(dir, keep)
	})
}

// Close cancels any scan, waits for the worker and stops the watcher
func (c *Controller) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.loader.Close()
	if c.watcher != nil {
		c.watcher.Stop()
	}
}

func (c *Controller) start(dir, keep string) {
	c.keep = keep
	c.rescan = false
	c.listener.ScanStarted(dir)
	c.pending = c.loader.Start(c.ctx, dir, func(res scan.Result) {
		if c.closed.Load() {
			return
		}
		c.post(func() { c.apply(res) })
	})
}

func (c *Controller) apply(res scan.Result) {
	if c.closed.Load() {
		return
	}
	if res.Request != c.pending {
		log.LogWithFields(log.F("request", res.Request.ID)).Debug("Dropping result of superseded scan")
		return
	}
	c.pending = nil
	dir := res.Request.Dir
	again := c.rescan
	c.rescan = false

	if res.Err != nil {
		if !res.Cancelled() {
			log.LogWithError(res.Err).Warn("Scan failed, keeping current images")
		}
		c.listener.ScanFinished(Outcome{Dir: dir, Err: res.Err})
		return
	}

	next := NewState(res.Images)
	if c.keep != "" {
		for i, path := range res.Images {
			if path == c.keep {
				next.Cursor = i
				break
			}
		}
	}
	c.keep = ""
	c.dir = dir
	c.state = next

	c.listener.ScanFinished(Outcome{Dir: dir, Count: len(res.Images)})
	c.show()
	c.listener.ImageChanged(c.state)

	if c.watcher != nil {
		if err := c.watcher.Watch(dir); err != nil {
			log.LogWithError(err).Warn("Cannot watch directory")
		}
	}

	if again {
		log.LogWithFields(log.F("directory", dir)).Info("Directory changed during scan, rescanning")
		keep, _ := c.state.Current()
		c.start(dir, keep)
	}
}

func (c *Controller) move(next State) {
	if next.Empty() {
		return
	}
	c.state = next
	c.show()
	c.listener.ImageChanged(c.state)
}

func (c *Controller) show() {
	path, ok := c.state.Current()
	if !ok || c.display == nil {
		return
	}
	if err := c.display.Display(path); err != nil {
		log.LogWithError(err).With(log.F("cursor", c.state.Cursor)).Warn("Cannot display image, keeping previous frame")
	}
}

type nopListener struct{}

func (nopListener) ScanStarted(string)   {}
func (nopListener) ScanFinished(Outcome) {}
func (nopListener) ImageChanged(State)   {}
