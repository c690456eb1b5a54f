// Package content converts a Markdown byte stream into rendered HTML
// while scraping the heading outline, detected code-block languages,
// YAML front-matter, and the document title the renderer and search
// index need.
package content

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
	"go.abhg.dev/goldmark/mermaid"

	"chimera/internal/chimeraerr"
)

// Parser converts Markdown into HTML and a Scrape, using the event
// producer described in spec.md §4.C: tables, smart punctuation, and
// YAML-style front-matter blocks are all enabled.
type Parser struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// New builds a Parser. highlightStyle names the chroma style used
// for local syntax highlighting of fenced code blocks.
func New(logger *slog.Logger, highlightStyle string) *Parser {
	if highlightStyle == "" {
		highlightStyle = "autumn"
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					html.WithClasses(false),
					html.WithLineNumbers(true),
				),
			),
			&mermaid.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkHTML.WithUnsafe(),
		),
	)

	return &Parser{md: md, sanitizer: newSanitizer(), logger: logger}
}

// newSanitizer builds the HTML allowlist policy. It permits the `id`
// attribute globally so that HtmlRenderer's anchor injection can
// attach it to heading tags that don't already carry one, and the
// line-numbering/class-free span markup chroma emits for highlighted
// code.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "strong", "em", "u", "s", "del", "ins", "mark")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("ul", "ol", "li", "dl", "dt", "dd")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a", "img", "figure", "figcaption")
	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowElements("div", "span", "section", "article", "header", "footer", "main")

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("style").OnElements("pre", "code", "span")
	p.AllowAttrs("class").Matching(mermaidClassPattern).OnElements("pre", "div")
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").Globally()

	return p
}

var mermaidClassPattern = regexp.MustCompile(`^mermaid$`)

var rawHeadingRe = regexp.MustCompile(`(?i)<h([1-6])\s*([^<]*)>([^<]*)</h[1-6]>`)
var rawHeadingIDRe = regexp.MustCompile(`id="([^"]+)"`)

// Parse converts md into an HTML body and a Scrape describing its
// headings, code languages, and front-matter.
func (p *Parser) Parse(md []byte) (string, Scrape, error) {
	ctx := parser.NewContext()
	reader := text.NewReader(md)

	doc := p.md.Parser().Parse(reader, parser.WithContext(ctx))

	scrape := Scrape{Metadata: map[string]string{}}
	if first := doc.FirstChild(); first != nil {
		_, scrape.StartsWithHeading = first.(*ast.Heading)
	}

	p.walk(doc, md, &scrape)

	if !scrape.StartsWithHeading {
		scrape.InternalLinks = append([]InternalLink{{Anchor: "top", Name: "Top", Level: 1}}, scrape.InternalLinks...)
	}

	// A repeated anchor gets a numeric suffix ("intro", "intro-1") so
	// every anchor stays unique within the document.
	seenAnchors := map[string]int{}
	for i := range scrape.InternalLinks {
		anchor := scrape.InternalLinks[i].Anchor
		if n := seenAnchors[anchor]; n > 0 {
			scrape.InternalLinks[i].Anchor = anchor + "-" + strconv.Itoa(n)
		}
		seenAnchors[anchor]++
	}

	normalizeHeadingLevels(scrape.InternalLinks)

	if fm := frontmatter.Get(ctx); fm != nil {
		raw := map[string]any{}
		if err := fm.Decode(&raw); err != nil {
			p.logger.Warn("content: malformed front-matter", "error", err)
		} else {
			for k, v := range raw {
				s, ok := v.(string)
				if !ok {
					continue
				}
				scrape.Metadata[k] = s
			}
		}
	}

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, md, doc); err != nil {
		return "", scrape, chimeraerr.Wrap(chimeraerr.OriginIO, "failed to render markdown", err)
	}

	return p.sanitizer.Sanitize(buf.String()), scrape, nil
}

func (p *Parser) walk(doc ast.Node, source []byte, scrape *Scrape) {
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := headingText(node, source)
			level := node.Level
			anchor := Slugify(headingText)

			scrape.InternalLinks = append(scrape.InternalLinks, InternalLink{
				Anchor: anchor,
				Name:   headingText,
				Level:  level,
			})

			if scrape.Title == "" {
				scrape.Title = headingText
			}

			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			scrape.HasCodeBlocks = true
			lang := strings.ToLower(string(node.Language(source)))
			if codeLanguageAllowlist[lang] {
				scrape.CodeLanguages = append(scrape.CodeLanguages, lang)
			}

		case *ast.HTMLBlock:
			p.scrapeRawHeadings(node, source, scrape)
		}

		return ast.WalkContinue, nil
	})
}

func (p *Parser) scrapeRawHeadings(node *ast.HTMLBlock, source []byte, scrape *Scrape) {
	var raw strings.Builder
	for i := 0; i < node.Lines().Len(); i++ {
		seg := node.Lines().At(i)
		raw.Write(seg.Value(source))
	}

	for _, m := range rawHeadingRe.FindAllStringSubmatch(raw.String(), -1) {
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		headingText := m[3]
		anchor := headingText
		if idMatch := rawHeadingIDRe.FindStringSubmatch(m[2]); idMatch != nil {
			anchor = idMatch[1]
		} else {
			anchor = Slugify(headingText)
		}

		scrape.InternalLinks = append(scrape.InternalLinks, InternalLink{
			Anchor: anchor,
			Name:   headingText,
			Level:  level,
		})

		if scrape.Title == "" {
			scrape.Title = headingText
		}
	}
}

// headingText concatenates all text content found under a heading
// node, descending through inline formatting.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, source, &b)
	}
	return b.String()
}

func collectText(n ast.Node, source []byte, b *strings.Builder) {
	switch node := n.(type) {
	case *ast.Text:
		b.Write(node.Segment.Value(source))
	case *ast.String:
		b.Write(node.Value)
	case *ast.CodeSpan:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			collectText(c, source, b)
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			collectText(c, source, b)
		}
	}
}
