// Package watch wraps fsnotify with per-path debouncing and fans
// change events out to any number of subscribers.
package watch

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"chimera/internal/chimeraerr"
)

// Kind classifies a ChangeEvent.
type Kind int

const (
	Created Kind = iota
	Modified
	Removed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// ChangeEvent describes one debounced filesystem change.
type ChangeEvent struct {
	Path string
	Kind Kind
}

// Watcher watches a set of directories and publishes debounced
// change events to subscribers. The zero value is not usable; build
// one with New.
type Watcher struct {
	logger *slog.Logger
	fsw    *fsnotify.Watcher
	debounce time.Duration

	mu        sync.Mutex
	pending   map[string]Kind
	timers    map[string]*time.Timer
	subs      []chan ChangeEvent
	closed    bool
}

// New creates a Watcher with the given debounce window.
func New(logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginWatcher, "failed to create fsnotify watcher", err)
	}

	if debounce <= 0 {
		debounce = time.Second
	}

	w := &Watcher{
		logger:   logger,
		fsw:      fsw,
		debounce: debounce,
		pending:  make(map[string]Kind),
		timers:   make(map[string]*time.Timer),
	}

	go w.loop()

	return w, nil
}

// Add registers path (a directory) for watching. Add is idempotent:
// watching an already-watched path is a no-op. Failures are logged
// and swallowed, since a single unreadable subdirectory shouldn't
// take the whole watcher down.
func (w *Watcher) Add(path string) {
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch: failed to add path", "path", path, "error", err)
	}
}

// AddRecursive walks root and calls Add on root and every
// subdirectory beneath it.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("watch: walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			w.Add(path)
		}
		return nil
	})
}

// Subscribe returns a channel of debounced change events. The
// channel is buffered; a slow subscriber drops events rather than
// blocking the watcher loop.
func (w *Watcher) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, 64)

	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()

	return ch
}

// Close stops the underlying fsnotify watcher and closes all
// subscriber channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	subs := w.subs
	w.subs = nil
	w.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}

	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.schedule(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ev fsnotify.Event) {
	kind := Modified
	switch {
	case ev.Has(fsnotify.Create):
		kind = Created
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		kind = Removed
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Chmod):
		kind = Modified
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.pending[ev.Name] = kind

	if t, ok := w.timers[ev.Name]; ok {
		t.Reset(w.debounce)
		return
	}

	path := ev.Name
	w.timers[ev.Name] = time.AfterFunc(w.debounce, func() {
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	kind, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	subs := append([]chan ChangeEvent(nil), w.subs...)
	closed := w.closed
	w.mu.Unlock()

	if !ok || closed {
		return
	}

	ev := ChangeEvent{Path: path, Kind: kind}
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			w.logger.Warn("watch: subscriber channel full, dropping event", "path", path)
		}
	}
}
