// Package peers discovers, for a given Markdown document, the
// sibling documents and subfolders worth linking to from a page's
// peer list, and enumerates the whole corpus for the search indexer.
package peers

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExternalLink is a named hyperlink, used for breadcrumbs and peer
// lists.
type ExternalLink struct {
	URL  string
	Name string
}

// Info is the sorted sibling set of a document.
type Info struct {
	Files   []ExternalLink
	Folders []ExternalLink
}

// Empty reports whether the Info carries neither files nor folders.
func (i *Info) Empty() bool {
	return i == nil || (len(i.Files) == 0 && len(i.Folders) == 0)
}

const maxWalkDepth = 2

// Index answers peer queries against a document root.
type Index struct {
	root      string
	indexFile string
}

// New builds an Index rooted at root. indexFile names the file that
// sorts first among peer files; it is listed like any other peer.
func New(root, indexFile string) *Index {
	return &Index{root: root, indexFile: indexFile}
}

// FindPeers returns the sorted sibling Markdown files and immediate
// subfolders containing Markdown, relative to docPath's parent
// directory. It returns nil when the directory carries no Markdown
// besides docPath itself.
func (idx *Index) FindPeers(docPath string) *Info {
	dir := filepath.Dir(docPath)
	canon, err := filepath.EvalSymlinks(dir)
	if err == nil {
		dir = canon
	}

	self := filepath.Base(docPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []ExternalLink
	var folders []ExternalLink

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if idx.folderHasMarkdown(filepath.Join(dir, name), 1) {
				folders = append(folders, ExternalLink{URL: name, Name: name})
			}
			continue
		}

		if !isMarkdown(name) {
			continue
		}
		if name == self {
			continue
		}
		files = append(files, ExternalLink{URL: name, Name: name})
	}

	if len(files) == 0 && len(folders) == 0 {
		return nil
	}

	sortFiles(files, idx.indexFile)
	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})

	return &Info{Files: files, Folders: folders}
}

// ListDirectory returns the sorted Markdown files and subfolders
// directly inside dir, used to render a directory-index page when the
// directory carries no index document of its own. Unlike FindPeers,
// nothing is excluded as "self".
func (idx *Index) ListDirectory(dir string) *Info {
	canon, err := filepath.EvalSymlinks(dir)
	if err == nil {
		dir = canon
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []ExternalLink
	var folders []ExternalLink

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if idx.folderHasMarkdown(filepath.Join(dir, name), 1) {
				folders = append(folders, ExternalLink{URL: name, Name: name})
			}
			continue
		}

		if !isMarkdown(name) {
			continue
		}
		files = append(files, ExternalLink{URL: name, Name: name})
	}

	if len(files) == 0 && len(folders) == 0 {
		return nil
	}

	sortFiles(files, idx.indexFile)
	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})

	return &Info{Files: files, Folders: folders}
}

func (idx *Index) folderHasMarkdown(dir string, depth int) bool {
	if depth > maxWalkDepth {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	for _, e := range entries {
		if !e.IsDir() && isMarkdown(e.Name()) {
			return true
		}
	}

	for _, e := range entries {
		if e.IsDir() && idx.folderHasMarkdown(filepath.Join(dir, e.Name()), depth+1) {
			return true
		}
	}

	return false
}

// ListAllMarkdown walks the entire document root and returns every
// Markdown file path found, used once at startup to seed the search
// index.
func ListAllMarkdown(root string) ([]string, error) {
	var out []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && isMarkdown(info.Name()) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

func sortFiles(files []ExternalLink, indexFile string) {
	sort.Slice(files, func(i, j int) bool {
		iIsIndex := files[i].Name == indexFile
		jIsIndex := files[j].Name == indexFile
		if iIsIndex != jIsIndex {
			return iIsIndex
		}
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
}
