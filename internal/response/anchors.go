package response

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"chimera/internal/content"
)

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// injectAnchors walks body and, for every heading tag lacking an id
// attribute, assigns the next unused anchor from links in document
// order. When skipFirst is true (the parser synthesized a leading
// "Top" link that has no corresponding heading tag), the first link
// is not consumed by any heading.
func injectAnchors(body string, links []content.InternalLink, skipFirst bool) string {
	if len(links) == 0 {
		return body
	}

	idx := 0
	if skipFirst {
		idx = 1
	}

	nodes, err := html.ParseFragment(strings.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return body
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && headingAtoms[n.DataAtom] {
			if idx < len(links) {
				if !hasAttr(n, "id") {
					n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: links[idx].Anchor})
				}
				idx++
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range nodes {
		walk(n)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return body
		}
	}

	return buf.String()
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
