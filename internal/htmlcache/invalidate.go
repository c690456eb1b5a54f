package htmlcache

import (
	"path/filepath"
	"strings"

	"chimera/internal/watch"
)

// cacheRelevantExtensions are the file kinds whose change should
// invalidate the whole cache: markdown sources and the template
// files every rendered page implicitly depends on.
var cacheRelevantExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".jet":      true,
}

// WatchInvalidation subscribes to a FileWatcher's change events and
// clears the cache whenever a Markdown or template file changes.
// Since any cached page may depend on any template, the response is
// conservative: a full wipe rather than a per-key invalidation.
func (c *Cache) WatchInvalidation(events <-chan watch.ChangeEvent) {
	go func() {
		for ev := range events {
			ext := strings.ToLower(filepath.Ext(ev.Path))
			if cacheRelevantExtensions[ext] {
				c.signalNonBlocking(actionClean)
			}
		}
	}()
}
