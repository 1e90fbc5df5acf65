// Package watcher monitors the issue snapshot file and triggers the full
// graph rebuild cycle when it changes. Events are debounced because tracker
// exports rewrite the file in several bursts.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dvermeulen86/pertview/pkg/debug"
)

// DefaultDebounce is the default quiet period before a change fires.
const DefaultDebounce = 250 * time.Millisecond

// DefaultPollInterval is the polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("watcher already started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll forces polling mode even when fsnotify is available. Network
// filesystems do not deliver inotify events reliably.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one file using fsnotify with a polling fallback.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	mu        sync.Mutex
	started   bool
	stop      chan struct{}
	done      chan struct{}
	timer     *time.Timer
	lastMtime time.Time
	lastSize  int64
}

// New creates a watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:         path,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch goroutine is running.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	}

	if w.forcePoll {
		go w.pollLoop()
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		debug.Log("fsnotify unavailable (%v), falling back to polling", err)
		go w.pollLoop()
		return nil
	}
	// Watch the directory rather than the file: editors and exporters
	// replace the file by rename, which drops a direct file watch.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		debug.Log("fsnotify add failed (%v), falling back to polling", err)
		go w.pollLoop()
		return nil
	}
	go w.eventLoop(fw)
	return nil
}

// Stop halts watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()
	<-done
}

func (w *Watcher) eventLoop(fw *fsnotify.Watcher) {
	defer close(w.done)
	defer fw.Close()

	base := filepath.Base(w.path)
	for {
		select {
		case <-w.stop:
			w.cancelTimer()
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.fireDebounced()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) pollLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			w.cancelTimer()
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := info.ModTime() != w.lastMtime || info.Size() != w.lastSize
			w.lastMtime = info.ModTime()
			w.lastSize = info.Size()
			w.mu.Unlock()
			if changed {
				w.fireDebounced()
			}
		}
	}
}

func (w *Watcher) fireDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) cancelTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
