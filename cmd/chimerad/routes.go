package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes builds the chi router. middleware.StripSlashes is
// deliberately not used: /home/ must itself redirect, which
// StripSlashes would swallow before the handler ever saw it.
func (app *application) routes() http.Handler {
	mux := chi.NewRouter()
	mux.NotFound(app.notFound)

	mux.Use(app.recoverPanic)
	mux.Use(app.securityHeaders)
	mux.Use(app.logAccess)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Compress(5))

	mux.Get("/", app.redirectHome)
	mux.Get("/home", app.redirectHome)
	mux.Get("/home/", app.redirectHome)
	mux.Get("/home/*", app.home)

	mux.Get("/search", app.search)

	mux.Get("/*", app.static)

	return mux
}
