// Package imagesize maintains a lookup table of image dimensions so
// the renderer can fill in width/height attributes on <img> tags
// without decoding images on every request. Grounded on the original
// implementation's image_size_cache.rs, reworked into the TOML-backed
// reload idiom the rest of this module uses for its persisted state
// (internal/search's ft.toml, internal/config).
package imagesize

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"chimera/internal/watch"
)

// Dimensions is one image's pixel width and height.
type Dimensions struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type fileFormat struct {
	Images map[string]Dimensions `toml:"images"`
}

// Cache is a read-through lookup table of image dimensions, keyed by
// the site-relative image path used in rendered <img src> attributes.
// The zero value is empty but usable.
type Cache struct {
	logger *slog.Logger
	path   string

	mu     sync.RWMutex
	images map[string]Dimensions
}

// Load reads an image-dimensions table from path. A missing or
// unparsable file yields an empty, still-usable Cache: image-size
// injection is a presentational nicety, not a hard dependency, so a
// load failure is logged rather than fatal.
func Load(logger *slog.Logger, path string) *Cache {
	c := &Cache{logger: logger, path: path, images: map[string]Dimensions{}}
	c.reload()
	return c
}

// Get looks up the dimensions recorded for an image's site-relative
// path.
func (c *Cache) Get(img string) (Dimensions, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.images[img]
	return d, ok
}

// WatchInvalidation reloads the table whenever a change event targets
// its backing file.
func (c *Cache) WatchInvalidation(events <-chan watch.ChangeEvent) {
	go func() {
		for ev := range events {
			if filepath.Clean(ev.Path) == filepath.Clean(c.path) {
				c.reload()
			}
		}
	}()
}

func (c *Cache) reload() {
	var doc fileFormat

	if _, err := os.Stat(c.path); err != nil {
		if !os.IsNotExist(err) && c.logger != nil {
			c.logger.Warn("imagesize: cannot stat table", "path", c.path, "error", err)
		}
		c.mu.Lock()
		c.images = map[string]Dimensions{}
		c.mu.Unlock()
		return
	}

	if _, err := toml.DecodeFile(c.path, &doc); err != nil {
		if c.logger != nil {
			c.logger.Warn("imagesize: cannot parse table", "path", c.path, "error", err)
		}
		return
	}

	if doc.Images == nil {
		doc.Images = map[string]Dimensions{}
	}

	c.mu.Lock()
	c.images = doc.Images
	c.mu.Unlock()
}
