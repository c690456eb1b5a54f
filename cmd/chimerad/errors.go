package main

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// reportServerError logs an error without writing any response,
// useful where a response has already been partially written.
func (app *application) reportServerError(r *http.Request, err error) {
	requestAttrs := slog.Group("request", "method", r.Method, "url", r.URL.String())
	app.logger.Error(err.Error(), requestAttrs, "trace", string(debug.Stack()))
}

// serverError logs err and renders the 500 error page.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.reportServerError(r, err)
	app.renderErrorPage(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong. Please try again later.")
}

// notFound renders the 404 error page.
func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.renderErrorPage(w, http.StatusNotFound, "Not Found", "The page you requested could not be found.")
}

// badRequest renders the 400 error page, including err's message
// (unlike serverError, a bad request's cause is safe to surface).
func (app *application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.renderErrorPage(w, http.StatusBadRequest, "Bad Request", err.Error())
}

// renderErrorPage writes status and a rendering of the shared error
// template. If the template itself fails to render, a plain-text
// fallback is written instead so a broken theme never leaves the
// client with nothing.
func (app *application) renderErrorPage(w http.ResponseWriter, status int, heading, message string) {
	body, err := app.renderer.RenderError(status, heading, message)
	if err != nil {
		app.logger.Error("failed to render error page", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(heading + ": " + message))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
