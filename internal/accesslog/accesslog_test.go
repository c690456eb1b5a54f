package accesslog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chimera/internal/accesslog"
)

func TestLogAppendsCommonLogFormatRecord(t *testing.T) {
	dir := t.TempDir()

	w, err := accesslog.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	w.Log("203.0.113.5", "GET", "/home/index.md", "HTTP/1.1", 200, 1234, "test-agent", "https://example.com/")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}

	line := string(data)
	for _, want := range []string{
		"203.0.113.5 - - [",
		`"GET /home/index.md HTTP/1.1"`,
		" 200 1234 ",
		`"https://example.com/"`,
		`"test-agent"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line = %q, want it to contain %q", line, want)
		}
	}
}

func TestLogUsesDashForEmptyFields(t *testing.T) {
	dir := t.TempDir()

	w, err := accesslog.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	w.Log("203.0.113.5", "GET", "/", "HTTP/1.1", 200, 0, "", "")

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))

	if !strings.Contains(string(data), `"-" "-"`) {
		t.Errorf("log line = %q, want dashes for empty referer/user-agent", string(data))
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "log")

	if _, err := accesslog.Open(dir); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory to be created: %v", err)
	}
}

func TestFileNameIncludesDate(t *testing.T) {
	dir := t.TempDir()

	w, err := accesslog.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	w.Log("127.0.0.1", "GET", "/", "HTTP/1.1", 200, 0, "", "")

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	want := "access-" + time.Now().Format("2006-01-02") + ".log"
	if entries[0].Name() != want {
		t.Errorf("file name = %q, want %q", entries[0].Name(), want)
	}
}
