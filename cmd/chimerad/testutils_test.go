package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"chimera/internal/config"
)

// newTestApplication builds a fully wired application against a fresh
// temporary site directory, seeded with a single home/index.md.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default(root)

	if err := os.MkdirAll(cfg.HomeDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.HomeDir(), cfg.IndexFile), []byte("# Home\n\nWelcome.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newApplication(logger, &cfg)
	if err != nil {
		t.Fatalf("newApplication() error = %v", err)
	}
	t.Cleanup(app.close)

	return app
}

// writeDocument writes a Markdown file at relPath (slash-separated,
// relative to the test application's document root) and returns its
// absolute on-disk path.
func writeDocument(t *testing.T, app *application, relPath, body string) string {
	t.Helper()

	abs := filepath.Join(app.cfg.HomeDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	return abs
}

func newTestRequest(t *testing.T, method, path string) *http.Request {
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		t.Fatal(err)
	}

	req.Form = url.Values{}
	return req
}

type testResponse struct {
	*http.Response
	Body string
}

func send(t *testing.T, req *http.Request, h http.Handler) testResponse {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()

	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	return testResponse{
		Response: res,
		Body:     strings.TrimSpace(string(resBody)),
	}
}

func containsText(body, substr string) bool {
	return strings.Contains(body, substr)
}

func containsHTMLNode(t *testing.T, htmlBody string, cssSelector string) bool {
	_, found := getHTMLNode(t, htmlBody, cssSelector)
	return found
}

func getHTMLNode(t *testing.T, htmlBody string, cssSelector string) (*html.Node, bool) {
	doc, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		t.Fatal(err)
	}

	selector, err := cascadia.Compile(cssSelector)
	if err != nil {
		t.Fatal(err)
	}

	node := cascadia.Query(doc, selector)
	if node == nil {
		return nil, false
	}

	return node, true
}
