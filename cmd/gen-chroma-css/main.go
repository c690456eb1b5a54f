// Command gen-chroma-css writes the stylesheet for one chroma style to
// assets/static/css, so it can be referenced by name as a site's
// highlight_style config value.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

func main() {
	styleName := flag.String("style", "autumn", "chroma style name (see cmd/list-styles)")
	outDir := flag.String("out", "assets/static/css", "output directory for the generated stylesheet")
	flag.Parse()

	style := styles.Get(*styleName)
	if style == nil {
		fmt.Fprintf(os.Stderr, "style %q not found\n", *styleName)
		os.Exit(1)
	}

	formatter := html.New(html.WithClasses(true), html.WithLineNumbers(true))

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, style); err != nil {
		fmt.Fprintf(os.Stderr, "error generating CSS: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(*outDir, *styleName+".css")
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing CSS file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", outPath)
}
