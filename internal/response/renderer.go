// Package response renders the final HTML page for a document,
// directory listing, search result set, or error, via a Jet template
// set backed by a two-root loader (site override, then built-in).
package response

import (
	"bytes"
	"html/template"
	"io/fs"
	"time"

	"github.com/CloudyKit/jet/v6"

	"chimera/assets"
	"chimera/internal/chimeraerr"
	"chimera/internal/config"
	"chimera/internal/content"
	"chimera/internal/imagesize"
	"chimera/internal/peers"
	"chimera/internal/version"
)

// requiredTemplates are the named templates HtmlRenderer depends on;
// a missing one is a fatal initialization error.
var requiredTemplates = []string{"document.jet", "directory-index.jet", "search.jet", "error.jet"}

// SearchResult is one hit rendered on the search results page.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

// HtmlRenderer renders every page the server serves.
type HtmlRenderer struct {
	views          *jet.Set
	siteTitle      string
	siteLang       string
	highlightStyle string
	menu           []config.MenuEntry
	imageSizer     *imagesize.Cache
}

// SetImageSizer installs the image-dimensions cache used to fill in
// missing width/height attributes on rendered <img> tags. A nil sizer
// (the default) disables the feature.
func (r *HtmlRenderer) SetImageSizer(sizer *imagesize.Cache) {
	r.imageSizer = sizer
}

// New builds an HtmlRenderer. overrideDir is the site's own template
// directory, checked before the embedded built-in set.
func New(overrideDir string, cfg *config.Config) (*HtmlRenderer, error) {
	embeddedTemplates, err := fs.Sub(assets.EmbeddedFiles, "templates")
	if err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginTemplate, "embedded template root is missing", err)
	}

	loader := newTwoRootLoader(overrideDir, embeddedTemplates)
	views := jet.NewSet(loader, jet.InDevelopmentMode())
	addJetFunctions(views)

	for _, name := range requiredTemplates {
		if !loader.Exists(name) {
			return nil, chimeraerr.New(chimeraerr.OriginTemplate, "missing required template: "+name)
		}
	}

	return &HtmlRenderer{
		views:          views,
		siteTitle:      cfg.SiteTitle,
		siteLang:       cfg.SiteLang,
		highlightStyle: cfg.HighlightStyle,
		menu:           cfg.Menu,
	}, nil
}

func (r *HtmlRenderer) baseVars() jet.VarMap {
	vars := make(jet.VarMap)
	vars.Set("site_title", r.siteTitle)
	vars.Set("site_lang", r.siteLang)
	vars.Set("highlight_style", r.highlightStyle)
	vars.Set("menu", r.menu)
	return vars
}

func (r *HtmlRenderer) render(templateName string, vars jet.VarMap) (string, error) {
	tmpl, err := r.views.GetTemplate(templateName)
	if err != nil {
		return "", chimeraerr.Wrap(chimeraerr.OriginTemplate, "failed to load template "+templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars, nil); err != nil {
		return "", chimeraerr.Wrap(chimeraerr.OriginTemplate, "failed to execute template "+templateName, err)
	}

	return buf.String(), nil
}

// RenderMarkdown is the primary document page. relPath is the
// document path relative to the document root. templateOverride, if
// non-empty (scrape.Metadata["template"]), names a template used
// instead of the default document template.
func (r *HtmlRenderer) RenderMarkdown(relPath, htmlBody string, scrape content.Scrape, peerInfo *peers.Info, indexFile string, templateOverride string) (string, error) {
	skipFirst := !scrape.StartsWithHeading
	body := injectAnchors(htmlBody, scrape.InternalLinks, skipFirst)
	body = injectImageSizes(body, r.imageSizer)

	vars := r.baseVars()
	vars.Set("title", scrape.Title)
	vars.Set("has_code", scrape.HasCodeBlocks)
	vars.Set("body", body)
	vars.Set("doclinks", scrape.InternalLinks)
	vars.Set("peers", peerInfo)
	vars.Set("code_languages", scrape.CodeLanguages)
	vars.Set("breadcrumbs", buildBreadcrumbs(relPath, indexFile, r.siteTitle))
	vars.Set("url", relPath)

	for k, v := range scrape.Metadata {
		vars.Set(k, v)
	}

	templateName := "document.jet"
	if templateOverride != "" {
		templateName = templateOverride + ".jet"
	}

	return r.render(templateName, vars)
}

// RenderIndex renders a generated directory listing page.
func (r *HtmlRenderer) RenderIndex(relPath string, peerInfo *peers.Info, indexFile string) (string, error) {
	vars := r.baseVars()
	vars.Set("title", relPath)
	vars.Set("has_code", false)
	vars.Set("peers", peerInfo)
	vars.Set("breadcrumbs", buildBreadcrumbs(relPath, indexFile, r.siteTitle))
	vars.Set("url", relPath)

	return r.render("directory-index.jet", vars)
}

// RenderSearch renders the results page for a non-empty query.
func (r *HtmlRenderer) RenderSearch(query string, results []SearchResult) (string, error) {
	vars := r.baseVars()
	vars.Set("title", "Search")
	vars.Set("has_code", false)
	vars.Set("query", query)
	vars.Set("results", results)

	return r.render("search.jet", vars)
}

// RenderSearchBlank renders the search page before any query has
// been submitted.
func (r *HtmlRenderer) RenderSearchBlank() (string, error) {
	return r.RenderSearch("", nil)
}

// RenderError renders the error page for the given status code.
func (r *HtmlRenderer) RenderError(code int, heading, message string) (string, error) {
	vars := r.baseVars()
	vars.Set("title", heading)
	vars.Set("has_code", false)
	vars.Set("code", code)
	vars.Set("heading", heading)
	vars.Set("message", message)

	return r.render("error.jet", vars)
}

func addJetFunctions(views *jet.Set) {
	views.AddGlobal("version", func() string {
		return version.Get()
	})

	views.AddGlobal("now", func() time.Time {
		return time.Now()
	})

	views.AddGlobal("formatDate", func(t time.Time, layout string) string {
		return t.Format(layout)
	})

	views.AddGlobal("safeHTML", func(s string) template.HTML {
		return template.HTML(s)
	})

	views.AddGlobal("truncate", func(s string, length int) string {
		if len(s) <= length {
			return s
		}
		return s[:length] + "..."
	})

}
