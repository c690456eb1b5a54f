package response

import (
	"path/filepath"
	"strings"

	"chimera/internal/peers"
)

// buildBreadcrumbs turns a document path, relative to the document
// root, into a breadcrumb trail: the first crumb always links home,
// intermediate segments link to their cumulative path, and the final
// segment is a bare label. The configured index filename never gets
// its own crumb, since it represents the directory itself.
func buildBreadcrumbs(relPath, indexFile, homeName string) []peers.ExternalLink {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.Trim(relPath, "/")

	var segments []string
	if relPath != "" {
		segments = strings.Split(relPath, "/")
	}

	if n := len(segments); n > 0 && segments[n-1] == indexFile {
		segments = segments[:n-1]
	}

	crumbs := []peers.ExternalLink{{URL: "/", Name: homeName}}

	cumulative := ""
	for i, seg := range segments {
		cumulative += "/" + seg
		if i == len(segments)-1 {
			crumbs = append(crumbs, peers.ExternalLink{Name: seg})
			continue
		}
		crumbs = append(crumbs, peers.ExternalLink{URL: cumulative, Name: seg})
	}

	return crumbs
}
