package watch_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chimera/internal/watch"
)

func newTestWatcher(t *testing.T, debounce time.Duration) *watch.Watcher {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := watch.New(logger, debounce)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	return w
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, 50*time.Millisecond)
	w.Add(dir)

	events := w.Subscribe()

	path := filepath.Join(dir, "doc.md")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case ev := <-events:
		if ev.Path != path {
			t.Errorf("got path %q; want %q", ev.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced change event")
	}

	select {
	case ev, ok := <-events:
		if ok {
			t.Errorf("unexpected second event: %+v", ev)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSubscribersAreIndependent(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, 20*time.Millisecond)
	w.Add(dir)

	a := w.Subscribe()
	b := w.Subscribe()

	path := filepath.Join(dir, "a.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	for _, ch := range []<-chan watch.ChangeEvent{a, b} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for change event on subscriber")
		}
	}
}

func TestWatcherCloseClosesSubscribers(t *testing.T) {
	w := newTestWatcher(t, 20*time.Millisecond)
	ch := w.Subscribe()

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, ok := <-ch; ok {
		t.Errorf("expected subscriber channel to be closed after Close()")
	}
}
