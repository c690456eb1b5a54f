package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tomasen/realip"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			pv := recover()
			if pv != nil {
				app.serverError(w, r, fmt.Errorf("%v", pv))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")

		next.ServeHTTP(w, r)
	})
}

// metricsResponseWriter records the status code and byte count of a
// response so logAccess can report them after the handler returns.
type metricsResponseWriter struct {
	http.ResponseWriter
	StatusCode  int
	BytesCount  int
	wroteHeader bool
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (mw *metricsResponseWriter) WriteHeader(statusCode int) {
	if !mw.wroteHeader {
		mw.StatusCode = statusCode
		mw.wroteHeader = true
	}
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !mw.wroteHeader {
		mw.wroteHeader = true
	}
	n, err := mw.ResponseWriter.Write(b)
	mw.BytesCount += n
	return n, err
}

// logAccess logs every request as a structured slog line and, when
// accessLog is configured, appends a Common Log Format record under
// log/.
func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := newMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.logger.Info("access", userAttrs, requestAttrs, responseAttrs)

		if app.accessLog != nil {
			app.accessLog.Log(ip, method, r.URL.RequestURI(), proto, mw.StatusCode, mw.BytesCount, r.UserAgent(), r.Referer())
		}
	})
}
