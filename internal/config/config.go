// Package config loads the server's TOML configuration file and
// supplies the defaults and derived directory paths every other
// package needs.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"chimera/internal/chimeraerr"
)

// MenuEntry is one ordered entry of the site navigation menu. TOML
// maps have no stable iteration order, so the config file encodes
// `menu` as an array of tables instead, preserving file order.
type MenuEntry struct {
	Label string `toml:"label"`
	URL   string `toml:"url"`
}

// CacheControlEntry maps a content-type prefix to a max-age in
// seconds, in the order the config file lists them (first match
// wins), for the same reason MenuEntry is a slice rather than a map.
type CacheControlEntry struct {
	ContentTypePrefix string `toml:"content_type_prefix"`
	MaxAgeSeconds      int    `toml:"max_age_seconds"`
}

// Config is the top-level, flat key/value configuration table
// described in spec.md §6.
type Config struct {
	ChimeraRoot    string              `toml:"chimera_root"`
	SiteTitle      string              `toml:"site_title"`
	SiteLang       string              `toml:"site_lang"`
	HighlightStyle string              `toml:"highlight_style"`
	IndexFile      string              `toml:"index_file"`
	GenerateIndex  bool                `toml:"generate_index"`
	MaxCacheSize   int64               `toml:"max_cache_size"`
	Port           int                 `toml:"port"`
	LogLevel       string              `toml:"log_level"`
	Redirects      map[string]string   `toml:"redirects"`
	Menu           []MenuEntry         `toml:"menu"`
	CacheControl   []CacheControlEntry `toml:"cache_control"`
	ImageSizeFile  string              `toml:"image_size_file"`

	// SearchAnalyzer resolves the Open Question in spec.md §9: the
	// bleve analyzer used for the body field. "en" (English stemming)
	// is the default; any other value is passed to bleve as an
	// analyzer name, and no custom n-gram analyzer is registered.
	SearchAnalyzer string `toml:"search_analyzer"`

	// WatchDebounceMS is the FileWatcher's debounce window in
	// milliseconds; spec.md §4.A's design default is one second.
	WatchDebounceMS int `toml:"watch_debounce_ms"`
}

// Default returns a Config populated with the defaults named in
// spec.md §6, rooted at root.
func Default(root string) Config {
	return Config{
		ChimeraRoot:     root,
		SiteTitle:       "chimera",
		SiteLang:        "en",
		HighlightStyle:  "autumn",
		IndexFile:       "index.md",
		GenerateIndex:   true,
		MaxCacheSize:    64 * 1024 * 1024,
		Port:            8080,
		LogLevel:        "info",
		Redirects:       map[string]string{},
		SearchAnalyzer:  "en",
		WatchDebounceMS: 1000,
	}
}

// Load reads and decodes a TOML configuration file at path, applying
// defaults for any key the file omits.
func Load(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))

	if _, err := os.Stat(path); err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginConfig, "config file not found: "+path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginConfig, "failed to parse config file: "+path, err)
	}

	if cfg.ChimeraRoot == "" {
		cfg.ChimeraRoot = filepath.Dir(path)
	}
	if cfg.Redirects == nil {
		cfg.Redirects = map[string]string{}
	}
	if cfg.SearchAnalyzer == "" {
		cfg.SearchAnalyzer = "en"
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = 1000
	}

	return &cfg, nil
}

// HomeDir is the document root: the tree of Markdown files served
// under /home/.
func (c *Config) HomeDir() string { return filepath.Join(c.ChimeraRoot, "home") }

// TemplateDir is the user-override template root, consulted before
// the built-in templates embedded in the binary.
func (c *Config) TemplateDir() string { return filepath.Join(c.ChimeraRoot, "template") }

// TemplateInternalDir is the template-internal directory under
// ChimeraRoot. The renderer does not read templates from it; a
// template missing from TemplateDir comes from the embedded set.
func (c *Config) TemplateInternalDir() string { return filepath.Join(c.ChimeraRoot, "template-internal") }

// WWWDir is the user-override static asset root.
func (c *Config) WWWDir() string { return filepath.Join(c.ChimeraRoot, "www") }

// WWWInternalDir is the built-in static asset root.
func (c *Config) WWWInternalDir() string { return filepath.Join(c.ChimeraRoot, "www-internal") }

// SearchDir holds the persistent full-text index and its modtime map.
func (c *Config) SearchDir() string { return filepath.Join(c.ChimeraRoot, "search") }

// LogDir holds the daily-rotated access logs.
func (c *Config) LogDir() string { return filepath.Join(c.ChimeraRoot, "log") }
