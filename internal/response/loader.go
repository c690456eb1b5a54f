package response

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// twoRootLoader implements jet.Loader over two roots: overrideDir is
// tried first so a site can replace any built-in template, and
// fallbackFS (the embedded built-in set) is tried second. The first
// occurrence wins.
type twoRootLoader struct {
	overrideDir string
	fallbackFS  fs.FS
}

func newTwoRootLoader(overrideDir string, fallbackFS fs.FS) *twoRootLoader {
	return &twoRootLoader{overrideDir: overrideDir, fallbackFS: fallbackFS}
}

func (l *twoRootLoader) Open(name string) (io.ReadCloser, error) {
	if l.overrideDir != "" {
		f, err := os.Open(filepath.Join(l.overrideDir, name))
		if err == nil {
			return f, nil
		}
	}

	return l.fallbackFS.Open(fsPath(name))
}

func (l *twoRootLoader) Exists(name string) bool {
	if l.overrideDir != "" {
		if _, err := os.Stat(filepath.Join(l.overrideDir, name)); err == nil {
			return true
		}
	}

	f, err := l.fallbackFS.Open(fsPath(name))
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// fsPath converts a jet loader path (always slash-separated, often
// absolute, e.g. "/error.jet") into the relative form io/fs.FS
// requires ("error.jet").
func fsPath(name string) string {
	return strings.TrimPrefix(name, "/")
}
