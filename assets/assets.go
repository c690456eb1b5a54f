// Package assets embeds the built-in template set and static files
// shipped with the binary, used whenever a site's own template or
// www directory doesn't override them.
package assets

import "embed"

//go:embed templates static
var EmbeddedFiles embed.FS
