package htmlcache

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ResponseCapture buffers a handler's response so it can be inspected
// (and stored in the cache) before anything is written to the real
// ResponseWriter.
type ResponseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

// NewResponseCapture wraps w.
func NewResponseCapture(w http.ResponseWriter) *ResponseCapture {
	return &ResponseCapture{ResponseWriter: w, body: new(bytes.Buffer), statusCode: http.StatusOK}
}

// WriteHeader records the status code without forwarding it yet.
func (rc *ResponseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
}

// Write buffers the response body.
func (rc *ResponseCapture) Write(data []byte) (int, error) {
	return rc.body.Write(data)
}

// Flush writes the captured status and body to the underlying
// ResponseWriter.
func (rc *ResponseCapture) Flush() error {
	rc.ResponseWriter.WriteHeader(rc.statusCode)
	_, err := rc.ResponseWriter.Write(rc.body.Bytes())
	return err
}

// Captured returns the buffered body and status code.
func (rc *ResponseCapture) Captured() (string, int) {
	return rc.body.String(), rc.statusCode
}

// ShouldBypass reports whether a request opted out of caching.
func ShouldBypass(r *http.Request) bool {
	if r.URL.Query().Get("nocache") == "1" {
		return true
	}
	return r.Header.Get("X-Bypass-Cache") == "1"
}

// KeyFor builds the cache key for a request: the document path it
// resolves to, on disk. ResultCache is keyed directly by path per
// spec.md §4.E, so this is a thin normalizer rather than a hash.
func KeyFor(docPath string) string {
	return docPath
}

// GenerateETag derives a strong ETag (the quoted MD5 hex digest) from
// rendered content.
func GenerateETag(content string) string {
	hash := md5.Sum([]byte(content))
	return fmt.Sprintf(`"%x"`, hash)
}

// SetCacheHeaders sets ETag, Last-Modified, and Cache-Control on the
// response for a cache entry.
func SetCacheHeaders(w http.ResponseWriter, entry *Entry, maxAge time.Duration) {
	w.Header().Set("ETag", entry.ETag)
	w.Header().Set("Last-Modified", entry.ModTime.UTC().Format(http.TimeFormat))

	if maxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}

	w.Header().Set("Vary", "Accept-Encoding")
}

// HandleConditionalRequest answers a conditional GET with 304 when
// the entry matches the request's If-None-Match/If-Modified-Since
// headers, and reports whether it did so.
func HandleConditionalRequest(w http.ResponseWriter, r *http.Request, entry *Entry) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" && entry.ETag != "" {
		for _, etag := range strings.Split(inm, ",") {
			if strings.TrimSpace(etag) == entry.ETag {
				w.Header().Set("ETag", entry.ETag)
				w.WriteHeader(http.StatusNotModified)
				return true
			}
		}
	}

	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if since, err := http.ParseTime(ims); err == nil && !entry.ModTime.After(since) {
			w.Header().Set("Last-Modified", entry.ModTime.UTC().Format(http.TimeFormat))
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}

	return false
}
