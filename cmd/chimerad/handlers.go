package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"chimera/internal/htmlcache"
	"chimera/internal/response"
)

// redirectHome sends GET / and GET /home/ to the configured index
// file under /home/.
func (app *application) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home/"+app.cfg.IndexFile, http.StatusMovedPermanently)
}

// home serves GET /home/{path...}: a known redirect, a rendered
// Markdown document, a directory (redirected to its index), or a
// static file from the document root, in that priority order.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	if reqPath == "" {
		app.redirectHome(w, r)
		return
	}

	if target, ok := app.cfg.Redirects["/home/"+reqPath]; ok {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	docPath := filepath.Join(app.cfg.HomeDir(), filepath.FromSlash(reqPath))

	info, err := os.Stat(docPath)
	if err != nil {
		app.notFound(w, r)
		return
	}

	if info.IsDir() {
		app.serveDirectory(w, r, docPath, reqPath)
		return
	}

	if isMarkdownPath(docPath) {
		app.serveDocument(w, r, docPath, reqPath, info)
		return
	}

	app.serveStaticFile(w, r, docPath)
}

// serveDirectory redirects to a directory's own index file when one
// exists, otherwise renders a generated listing page when
// generate_index is enabled.
func (app *application) serveDirectory(w http.ResponseWriter, r *http.Request, dir, reqPath string) {
	indexPath := filepath.Join(dir, app.cfg.IndexFile)
	if _, err := os.Stat(indexPath); err == nil {
		target := "/home/" + path.Join(reqPath, app.cfg.IndexFile)
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	if !app.cfg.GenerateIndex {
		app.notFound(w, r)
		return
	}

	peerInfo := app.peerIndex.ListDirectory(dir)

	body, err := app.renderer.RenderIndex(reqPath, peerInfo, app.cfg.IndexFile)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	writeHTML(w, http.StatusOK, body)
}

// serveDocument renders a Markdown document, consulting the HTML
// cache first and populating it on a miss.
func (app *application) serveDocument(w http.ResponseWriter, r *http.Request, docPath, reqPath string, info os.FileInfo) {
	bypass := htmlcache.ShouldBypass(r)

	var body string
	if app.cache != nil && !bypass {
		if cached, ok := app.cache.Get(docPath); ok {
			body = cached
		}
	}

	if body == "" {
		raw, err := os.ReadFile(docPath)
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		htmlBody, scrape, err := app.parser.Parse(raw)
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		peerInfo := app.peerIndex.FindPeers(docPath)

		body, err = app.renderer.RenderMarkdown(reqPath, htmlBody, scrape, peerInfo, app.cfg.IndexFile, scrape.Metadata["template"])
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		if app.cache != nil && !bypass {
			app.cache.Add(docPath, body, info.ModTime(), htmlcache.GenerateETag(body))
		}
	}

	entry := &htmlcache.Entry{HTML: body, ModTime: info.ModTime(), ETag: htmlcache.GenerateETag(body)}
	if htmlcache.HandleConditionalRequest(w, r, entry) {
		return
	}

	htmlcache.SetCacheHeaders(w, entry, app.maxAgeFor("text/html"))
	writeHTML(w, http.StatusOK, body)
}

// searchForm is the decoded shape of GET /search's query string.
type searchForm struct {
	Query string `form:"query"`
}

// search serves GET /search. An empty or absent query renders a
// blank search page; a query that fails to parse also degrades to a
// blank page rather than an error, per spec.md §7.
func (app *application) search(w http.ResponseWriter, r *http.Request) {
	var form searchForm
	if err := app.formDecoder.Decode(&form, r.URL.Query()); err != nil {
		app.writeSearchPage(w, r, "", nil)
		return
	}

	query := strings.TrimSpace(form.Query)

	if query == "" {
		app.writeSearchPage(w, r, "", nil)
		return
	}

	hits, err := app.searchIndex.Search(query)
	if err != nil {
		app.logger.Warn("search: query failed", "query", query, "error", err)
		app.writeSearchPage(w, r, "", nil)
		return
	}

	results := make([]response.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, response.SearchResult{
			URL:     "/home/" + h.Link,
			Title:   h.Title,
			Snippet: h.Snippet,
		})
	}

	app.writeSearchPage(w, r, query, results)
}

func (app *application) writeSearchPage(w http.ResponseWriter, r *http.Request, query string, results []response.SearchResult) {
	body, err := app.renderer.RenderSearch(query, results)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// static serves GET /{path} outside /home/, trying the site's own www
// override, then the on-disk built-in www-internal root, then the
// assets embedded in the binary.
func (app *application) static(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(r.URL.Path, "/")
	if reqPath == "" || strings.Contains(reqPath, "..") {
		app.notFound(w, r)
		return
	}

	for _, root := range []string{app.cfg.WWWDir(), app.cfg.WWWInternalDir()} {
		p := filepath.Join(root, filepath.FromSlash(reqPath))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			app.serveStaticFile(w, r, p)
			return
		}
	}

	if name, ok := strings.CutPrefix(reqPath, "static/"); ok {
		if f, err := assetsStaticFS.Open(name); err == nil {
			f.Close()
			http.StripPrefix("/static", app.staticFileServer).ServeHTTP(w, r)
			return
		}
	}

	app.notFound(w, r)
}

func (app *application) serveStaticFile(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Cache-Control", cacheControlFor(app.cfg.CacheControl, contentTypeFor(path)))
	http.ServeFile(w, r, path)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func isMarkdownPath(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".md" || ext == ".markdown"
}
