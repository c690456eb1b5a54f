// Package accesslog appends one Common Log Format record per request
// to a file that rotates at local midnight, grounded on the teacher's
// structured logAccess middleware (cmd/web/middleware.go) and on the
// original implementation's access_log_format.rs, which names the
// persisted log/ directory's format explicitly (spec.md §6).
package accesslog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer appends Common Log Format lines, rotating to a new file
// whenever the local date changes.
type Writer struct {
	dir string

	mu   sync.Mutex
	day  string
	file *os.File
}

// Open prepares a Writer rooted at dir, creating dir if it doesn't
// yet exist.
func Open(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("accesslog: cannot create log directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Log appends one record for a completed request. referer and
// userAgent are written as "-" when empty, per CLF convention.
func (w *Writer) Log(remoteAddr, method, requestURI, proto string, status, bytesWritten int, userAgent, referer string) {
	now := time.Now()

	line := fmt.Sprintf("%s - - [%s] %q %d %d %q %q\n",
		orDash(remoteAddr),
		now.Format("02/Jan/2006:15:04:05 -0700"),
		fmt.Sprintf("%s %s %s", method, requestURI, proto),
		status,
		bytesWritten,
		orDash(referer),
		orDash(userAgent),
	)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotateIfNeeded(now); err != nil {
		return
	}
	if w.file != nil {
		w.file.WriteString(line)
	}
}

func (w *Writer) rotateIfNeeded(now time.Time) error {
	day := now.Format("2006-01-02")
	if day == w.day && w.file != nil {
		return nil
	}

	if w.file != nil {
		w.file.Close()
	}

	path := filepath.Join(w.dir, "access-"+day+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.file = f
	w.day = day
	return nil
}

// Close closes the currently open log file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
