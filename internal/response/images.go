package response

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"chimera/internal/imagesize"
)

// injectImageSizes walks body and, for every <img> tag missing a
// width or height attribute, fills both in from sizer using the src
// attribute as the lookup key. Tags with no known dimensions, or
// already carrying both attributes, are left untouched.
func injectImageSizes(body string, sizer *imagesize.Cache) string {
	if sizer == nil {
		return body
	}

	nodes, err := html.ParseFragment(strings.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return body
	}

	changed := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			if setImageDimensions(n, sizer) {
				changed = true
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range nodes {
		walk(n)
	}

	if !changed {
		return body
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return body
		}
	}

	return buf.String()
}

func setImageDimensions(n *html.Node, sizer *imagesize.Cache) bool {
	if hasAttr(n, "width") && hasAttr(n, "height") {
		return false
	}

	src := attrValue(n, "src")
	if src == "" {
		return false
	}

	dims, ok := sizer.Get(src)
	if !ok {
		return false
	}

	if !hasAttr(n, "width") {
		n.Attr = append(n.Attr, html.Attribute{Key: "width", Val: strconv.Itoa(dims.Width)})
	}
	if !hasAttr(n, "height") {
		n.Attr = append(n.Attr, html.Attribute{Key: "height", Val: strconv.Itoa(dims.Height)})
	}

	return true
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
