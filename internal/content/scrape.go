package content

// InternalLink represents one heading inside a document: anchor is a
// slugified, URL-safe identifier unique within the document, name is
// the human-readable heading text, and level is the heading depth
// after normalization.
type InternalLink struct {
	Anchor string
	Name   string
	Level  int
}

// Scrape is the parser's output alongside the rendered HTML body.
type Scrape struct {
	Title             string
	InternalLinks     []InternalLink
	CodeLanguages     []string
	Metadata          map[string]string
	HasCodeBlocks     bool
	StartsWithHeading bool
}

// codeLanguageAllowlist mirrors the fixed set of fenced-code
// languages the renderer knows how to request a highlight.js grammar
// for. Unlisted language tokens are still highlighted locally by
// chroma but are not recorded in CodeLanguages.
var codeLanguageAllowlist = map[string]bool{
	"applescript": true, "bash": true, "c": true, "cpp": true,
	"csharp": true, "erlang": true, "fortran": true, "go": true,
	"haskell": true, "html": true, "ini": true, "java": true,
	"js": true, "make": true, "markdown": true, "objectivec": true,
	"perl": true, "php": true, "python": true, "r": true,
	"rust": true, "sql": true, "text": true, "xml": true, "yaml": true,
}

// normalizeHeadingLevels rewrites link levels in place so that depth
// never jumps by more than one step from one heading to the next. A
// heading deeper than the previous heading's actual level is placed
// one step below the previous output level; a heading at the same
// actual level keeps the previous output level; a shallower heading
// keeps its actual level, capped at one step below the previous
// output level.
func normalizeHeadingLevels(links []InternalLink) {
	lastSeen := 0
	lastUsed := 0

	for i := range links {
		actual := links[i].Level

		switch {
		case actual > lastSeen:
			lastUsed++
		case actual < lastSeen:
			lastUsed = min(actual, lastUsed+1)
		default:
			// actual == lastSeen: level unchanged, lastUsed unchanged.
		}

		lastSeen = actual
		links[i].Level = lastUsed
	}
}
