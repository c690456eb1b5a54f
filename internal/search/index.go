// Package search is the full-text index over the document corpus: a
// persistent bleve index kept current by a single-consumer scanner
// fed from startup reconciliation and ongoing file-change events.
package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"chimera/internal/chimeraerr"
	"chimera/internal/watch"
)

const modtimeFileName = "ft.toml"

// Result is one search hit.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Index is the full-text index. The zero value is not usable;
// build one with Open.
type Index struct {
	logger  *slog.Logger
	bi      bleve.Index
	dir     string
	docRoot string // set by Scan; used to compute the site-relative "link" field

	mu       sync.Mutex
	modtimes map[string]int64 // path -> unix nanos, persisted to ft.toml

	queue chan string
	done  chan struct{}
	wg    sync.WaitGroup
}

// Open opens the bleve index at indexDir, creating it (and its
// schema) if it doesn't yet exist. An inaccessible index directory is
// a fatal initialization error, per spec.md §4.F.
func Open(logger *slog.Logger, indexDir, analyzerName string) (*Index, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginSearch, "cannot create search index directory", err)
	}

	bleveDir := filepath.Join(indexDir, "bleve")

	bi, err := bleve.Open(bleveDir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		bi, err = bleve.New(bleveDir, buildMapping(analyzerName))
	}
	if err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginSearch, "cannot open search index", err)
	}

	idx := &Index{
		logger:   logger,
		bi:       bi,
		dir:      indexDir,
		modtimes: loadModtimes(indexDir),
		queue:    make(chan string, 256),
		done:     make(chan struct{}),
	}

	idx.wg.Add(1)
	go idx.scannerLoop()

	return idx, nil
}

func buildMapping(analyzerName string) mapping.IndexMapping {
	if analyzerName == "" {
		analyzerName = en.AnalyzerName
	}

	title := bleve.NewTextFieldMapping()
	title.Analyzer = "keyword"
	title.Store = true
	title.Index = false
	title.IncludeInAll = false

	link := bleve.NewTextFieldMapping()
	link.Analyzer = "keyword"
	link.Store = true
	link.Index = true
	link.IncludeInAll = false

	body := bleve.NewTextFieldMapping()
	body.Analyzer = analyzerName
	body.Store = true
	body.IncludeTermVectors = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("title", title)
	doc.AddFieldMappingsAt("link", link)
	doc.AddFieldMappingsAt("body", body)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = analyzerName

	return m
}

// Close stops the scanner and closes the underlying index.
func (idx *Index) Close() error {
	close(idx.done)
	idx.wg.Wait()
	return idx.bi.Close()
}

// Scan reconciles the persisted modtime map against the on-disk
// corpus (deleting index entries for files that no longer exist),
// then submits every current Markdown file to the scanner queue.
// documentRoot anchors the site-relative "link" field every indexed
// document carries; it must be set before WatchChanges starts
// delivering events.
func (idx *Index) Scan(documentRoot string, allMarkdown []string) {
	idx.docRoot = documentRoot

	present := make(map[string]bool, len(allMarkdown))
	for _, p := range allMarkdown {
		present[p] = true
	}

	idx.mu.Lock()
	var stale []string
	for p := range idx.modtimes {
		if !present[p] {
			stale = append(stale, p)
		}
	}
	idx.mu.Unlock()

	for _, p := range stale {
		idx.deleteDocument(p)
	}

	for _, p := range allMarkdown {
		idx.Submit(p)
	}
}

// Submit enqueues path for (re)indexing. Submit blocks if the queue
// is full, providing backpressure to the caller.
func (idx *Index) Submit(path string) {
	select {
	case idx.queue <- path:
	case <-idx.done:
	}
}

// WatchChanges subscribes to a FileWatcher's events and submits any
// changed Markdown file to the scanner.
func (idx *Index) WatchChanges(events <-chan watch.ChangeEvent) {
	go func() {
		for ev := range events {
			ext := filepath.Ext(ev.Path)
			if ext != ".md" && ext != ".markdown" {
				continue
			}
			if ev.Kind == watch.Removed {
				idx.deleteDocument(ev.Path)
				idx.mu.Lock()
				delete(idx.modtimes, ev.Path)
				idx.mu.Unlock()
				continue
			}
			idx.Submit(ev.Path)
		}
	}()
}

const commitBatchSize = 20

func (idx *Index) scannerLoop() {
	defer idx.wg.Done()

	unsynced := 0
	commitTimer := time.NewTimer(time.Hour)
	commitTimer.Stop()

	for {
		select {
		case path := <-idx.queue:
			if idx.indexOne(path) {
				unsynced++
			}
			if unsynced >= commitBatchSize {
				idx.persist()
				unsynced = 0
			} else if unsynced > 0 && !commitTimer.Stop() {
				select {
				case <-commitTimer.C:
				default:
				}
			}
			if unsynced > 0 {
				commitTimer.Reset(200 * time.Millisecond)
			}

		case <-commitTimer.C:
			if unsynced > 0 {
				idx.persist()
				unsynced = 0
			}

		case <-idx.done:
			if unsynced > 0 {
				idx.persist()
			}
			return
		}
	}
}

// indexOne reindexes path if its modtime changed since last indexed.
// It returns true if a document was (re)written.
func (idx *Index) indexOne(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		idx.logger.Warn("search: cannot stat file", "path", path, "error", err)
		return false
	}

	mtime := info.ModTime().UnixNano()

	idx.mu.Lock()
	last, ok := idx.modtimes[path]
	idx.mu.Unlock()
	if ok && last == mtime {
		return false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		idx.logger.Warn("search: cannot read file", "path", path, "error", err)
		return false
	}

	idx.deleteDocument(path)

	doc := map[string]any{
		"title": filepath.Base(path),
		"link":  idx.siteRelativeLink(path),
		"body":  string(raw),
	}

	if err := idx.bi.Index(path, doc); err != nil {
		idx.logger.Warn("search: cannot index document", "path", path, "error", err)
		return false
	}

	idx.mu.Lock()
	idx.modtimes[path] = mtime
	idx.mu.Unlock()

	return true
}

// siteRelativeLink converts an on-disk path into the slash-separated
// path relative to the document root, falling back to the original
// path if it isn't reachable from docRoot (e.g. docRoot unset yet).
func (idx *Index) siteRelativeLink(path string) string {
	if idx.docRoot == "" {
		return path
	}
	rel, err := filepath.Rel(idx.docRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (idx *Index) deleteDocument(path string) {
	if err := idx.bi.Delete(path); err != nil {
		idx.logger.Debug("search: delete of absent document", "path", path, "error", err)
	}
}

func (idx *Index) persist() {
	idx.mu.Lock()
	snapshot := make(map[string]int64, len(idx.modtimes))
	for k, v := range idx.modtimes {
		snapshot[k] = v
	}
	idx.mu.Unlock()

	path := filepath.Join(idx.dir, modtimeFileName)
	f, err := os.Create(path)
	if err != nil {
		idx.logger.Warn("search: cannot persist modtime map", "path", path, "error", err)
		return
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(struct {
		Modtimes map[string]int64 `toml:"modtimes"`
	}{Modtimes: snapshot}); err != nil {
		idx.logger.Warn("search: cannot encode modtime map", "path", path, "error", err)
	}
}

func loadModtimes(indexDir string) map[string]int64 {
	var doc struct {
		Modtimes map[string]int64 `toml:"modtimes"`
	}

	path := filepath.Join(indexDir, modtimeFileName)
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return map[string]int64{}
	}
	if doc.Modtimes == nil {
		return map[string]int64{}
	}

	return doc.Modtimes
}

// Search runs query against the body field and returns up to 10
// results in bleve's relevance order, each with a highlighted
// snippet built from the merged, disjoint match ranges within body.
func (idx *Index) Search(query string) ([]Result, error) {
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = 10
	req.Fields = []string{"title", "link", "body"}
	req.IncludeLocations = true

	res, err := idx.bi.Search(req)
	if err != nil {
		return nil, chimeraerr.Wrap(chimeraerr.OriginQuery, "search query failed", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		title, _ := hit.Fields["title"].(string)
		link, _ := hit.Fields["link"].(string)
		body, _ := hit.Fields["body"].(string)

		var ranges []byteRange
		for _, locs := range hit.Locations["body"] {
			for _, loc := range locs {
				ranges = append(ranges, byteRange{start: int(loc.Start), end: int(loc.End)})
			}
		}

		results = append(results, Result{
			Title:   title,
			Link:    link,
			Snippet: buildSnippet(body, mergeRanges(ranges)),
		})
	}

	return results, nil
}
