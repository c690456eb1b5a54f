package main

import (
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chimera/assets"
	"chimera/internal/config"
)

// assetsStaticFS is the built-in static asset tree embedded in the
// binary, the last-resort root for GET /static/{path} once a site's
// own www and www-internal directories have both missed.
var assetsStaticFS fs.FS

func init() {
	sub, err := fs.Sub(assets.EmbeddedFiles, "static")
	if err != nil {
		panic(err)
	}
	assetsStaticFS = sub
}

func newStaticFileServer() http.Handler {
	return http.FileServer(http.FS(assetsStaticFS))
}

// contentTypeFor returns the content type cache_control entries match
// against, derived from path's extension the same way the HTTP
// response's own Content-Type would be.
func contentTypeFor(path string) string {
	ext := filepath.Ext(path)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cacheControlFor returns the Cache-Control header value for
// contentType, using the first matching prefix in entries (file
// order, per spec.md §6) and falling back to "no-cache" when nothing
// matches.
func cacheControlFor(entries []config.CacheControlEntry, contentType string) string {
	for _, e := range entries {
		if strings.HasPrefix(contentType, e.ContentTypePrefix) {
			return "public, max-age=" + strconv.Itoa(e.MaxAgeSeconds)
		}
	}
	return "no-cache"
}

// maxAgeFor returns the configured max-age duration for contentType,
// or zero when no cache_control entry matches (SetCacheHeaders then
// emits "no-cache").
func (app *application) maxAgeFor(contentType string) time.Duration {
	for _, e := range app.cfg.CacheControl {
		if strings.HasPrefix(contentType, e.ContentTypePrefix) {
			return time.Duration(e.MaxAgeSeconds) * time.Second
		}
	}
	return 0
}
