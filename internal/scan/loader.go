package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"imgview/internal/errors"
	"imgview/internal/log"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
)

// State is the lifecycle state of a scan request
type State int32

const (
	Idle State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is the handle of one scan
type Request struct {
	ID      string
	Dir     string
	Started time.Time

	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
}

// State returns the current lifecycle state
func (r *Request) State() State {
	return State(r.state.Load())
}

// Done is closed once the request has finished and its callback returned
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Result is delivered to the callback passed to Loader.Start
type Result struct {
	Request *Request
	Images  ImageSet
	Err     error
}

// Cancelled reports whether the scan was cancelled or superseded
func (r Result) Cancelled() bool {
	return errors.IsCancelled(r.Err)
}

// Loader runs scans on a worker goroutine. Starting a scan cancels the one
// in flight, so at most one request is ever current.
type Loader struct {
	fs     afero.Fs
	filter *Filter

	mu      sync.Mutex
	current *Request

	wg conc.WaitGroup
}

// NewLoader creates a loader over fs. A nil filter uses DefaultExtensions.
func NewLoader(fs afero.Fs, filter *Filter) *Loader {
	if filter == nil {
		filter = MustFilter()
	}
	return &Loader{fs: fs, filter: filter}
}

// FS returns the filesystem scans run against
func (l *Loader) FS() afero.Fs {
	return l.fs
}

// Filter returns the extension filter
func (l *Loader) Filter() *Filter {
	return l.filter
}

// Start cancels the current request, if any, and scans dir in the
// background. done runs on the worker goroutine.
func (l *Loader) Start(ctx context.Context, dir string, done func(Result)) *Request {
	reqCtx, cancel := context.WithCancel(ctx)
	req := &Request{
		ID:      uuid.NewString(),
		Dir:     dir,
		Started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	req.state.Store(int32(Running))

	l.mu.Lock()
	if prev := l.current; prev != nil {
		prev.cancel()
		log.LogWithFields(log.F("request", prev.ID), log.F("superseded_by", req.ID)).Debug("Cancelling previous scan")
	}
	l.current = req
	l.mu.Unlock()

	log.LogWithFields(log.F("request", req.ID), log.F("directory", dir)).Debug("Scan started")

	l.wg.Go(func() {
		l.run(reqCtx, req, done)
	})
	return req
}

func (l *Loader) run(ctx context.Context, req *Request, done func(Result)) {
	defer close(req.done)

	images, err := Scan(ctx, l.fs, req.Dir, l.filter)

	// A request that is no longer current, or whose context was cancelled,
	// ends Cancelled even when enumeration had already finished.
	l.mu.Lock()
	cancelled := l.current != req || ctx.Err() != nil
	if l.current == req {
		l.current = nil
	}
	l.mu.Unlock()
	req.cancel()

	fields := []log.Field{
		log.F("request", req.ID),
		log.F("directory", req.Dir),
		log.F("elapsed", time.Since(req.Started).String()),
	}
	switch {
	case cancelled || errors.IsCancelled(err):
		images = nil
		if !errors.IsCancelled(err) {
			err = errors.Wrap(errors.ErrCancelled, req.Dir)
		}
		req.state.Store(int32(Cancelled))
		log.LogWithFields(fields...).Debug("Scan cancelled")
	case err != nil:
		req.state.Store(int32(Failed))
		log.LogWithFields(fields...).WithError(err).Warn("Scan failed")
	default:
		req.state.Store(int32(Completed))
		log.LogWithFields(append(fields, log.F("images", len(images)))...).Info("Scan completed")
	}

	if done != nil {
		done(Result{Request: req, Images: images, Err: err})
	}
}

// Cancel cancels the current request. It returns false when no scan is
// running.
func (l *Loader) Cancel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return false
	}
	l.current.cancel()
	log.LogWithFields(log.F("request", l.current.ID)).Debug("Scan cancel requested")
	l.current = nil
	return true
}

// Current returns the running request, or nil
func (l *Loader) Current() *Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Wait blocks until every started scan has finished
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels the running scan and waits for the worker to exit
func (l *Loader) Close() {
	l.Cancel()
	l.Wait()
}
