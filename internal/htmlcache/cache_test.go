package htmlcache_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chimera/internal/htmlcache"
)

func newTestCache(t *testing.T, maxSize int64) *htmlcache.Cache {
	t.Helper()
	c := htmlcache.New(slog.New(slog.NewTextHandler(io.Discard, nil)), maxSize)
	t.Cleanup(c.Close)
	return c
}

func writeTestFile(t *testing.T, path, content string) time.Time {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	return info.ModTime()
}

func TestCacheAddThenGetHit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	modTime := writeTestFile(t, path, "hello")

	c := newTestCache(t, 1<<20)
	c.Add(path, "<p>hello</p>", modTime, `"abc"`)

	html, ok := c.Get(path)
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if html != "<p>hello</p>" {
		t.Errorf("Get() = %q", html)
	}
}

func TestCacheGetMissesWhenSourceChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	modTime := writeTestFile(t, path, "hello")

	c := newTestCache(t, 1<<20)
	c.Add(path, "<p>hello</p>", modTime, `"abc"`)

	time.Sleep(10 * time.Millisecond)
	writeTestFile(t, path, "hello again")

	if _, ok := c.Get(path); ok {
		t.Error("Get() hit after source modtime changed, want miss")
	}
}

func TestCacheClearDropsEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	modTime := writeTestFile(t, path, "hello")

	c := newTestCache(t, 1<<20)
	c.Add(path, "<p>hello</p>", modTime, `"abc"`)
	c.Clear()

	if _, ok := c.Get(path); ok {
		t.Error("Get() hit after Clear(), want miss")
	}
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("Stats().Entries = %d, want 0", stats.Entries)
	}
}

func TestCacheCompactsOldestEntriesWhenOverBudget(t *testing.T) {
	dir := t.TempDir()

	c := newTestCache(t, 10)

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, string(rune('a'+i))+".md")
		modTime := writeTestFile(t, path, "x")
		c.Add(path, "0123456789", modTime, "")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Stats().Size <= 10 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if stats := c.Stats(); stats.Size > 10 {
		t.Errorf("Stats().Size = %d, want <= 10 after compaction", stats.Size)
	}
}
