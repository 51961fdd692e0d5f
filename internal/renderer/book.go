package renderer

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/quantmind-br/folio/internal/cache"
	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/utils"
)

// Page is a source page together with its place in the output tree
type Page struct {
	Source *domain.Entry
	// Path is the slash separated output path
	Path     string
	Fragment *domain.Fragment
}

// Dir returns the output directory of the page
func (p *Page) Dir() string {
	dir := path.Dir(p.Path)
	if dir == "." {
		return ""
	}
	return dir
}

// Depth returns the number of directories above the page
func (p *Page) Depth() int {
	return strings.Count(p.Path, "/")
}

// Level returns the nesting level of the page in a table of contents.
// Directory index pages sit one level above their siblings.
func (p *Page) Level() int {
	level := p.Depth()
	isIndex := isIndexName(path.Base(p.Path)) || (p.Source != nil && p.Source.IsReadme())
	if isIndex && level > 0 {
		level--
	}
	return level
}

// SourcePath returns the source file of the page, or its output path for
// generated pages
func (p *Page) SourcePath() string {
	if p.Source == nil {
		return p.Path
	}
	return p.Source.RelativePath
}

// Book is a manifest with every page routed to its output path
type Book struct {
	Config domain.BuildConfig
	Pages  []*Page
	Assets []*domain.Entry
	routes map[string]string
}

// pathFunc maps a page entry to its output path. indexDirs holds the
// directories that carry an explicit index page.
type pathFunc func(entry *domain.Entry, indexDirs map[string]bool) string

// NewBook routes the pages of a manifest. Two pages routed to the same
// output path fail with a RenderError naming the second one.
func NewBook(manifest *domain.Manifest, cfg domain.BuildConfig, route pathFunc) (*Book, error) {
	indexDirs := make(map[string]bool)
	for _, entry := range manifest.Pages() {
		if isIndexName(path.Base(entry.RelativePath)) {
			indexDirs[entry.Dir()] = true
		}
	}

	book := &Book{
		Config: cfg,
		routes: make(map[string]string),
	}
	owners := make(map[string]string)

	for i := range manifest.Entries {
		entry := &manifest.Entries[i]
		if !entry.ContentType.IsPage() {
			book.Assets = append(book.Assets, entry)
			continue
		}

		out := route(entry, indexDirs)
		if owner, taken := owners[out]; taken {
			return nil, domain.NewRenderError(entry.RelativePath,
				fmt.Errorf("%w: %s is also produced by %s", domain.ErrDuplicatePath, out, owner))
		}
		owners[out] = entry.RelativePath
		book.routes[entry.RelativePath] = out
		book.Pages = append(book.Pages, &Page{Source: entry, Path: out})
	}
	return book, nil
}

// Route maps a source path to its output path
func (b *Book) Route(source string) (string, bool) {
	out, ok := b.routes[source]
	return out, ok
}

// RoutesDigest summarizes the routing table for cache keys
func (b *Book) RoutesDigest() string {
	pairs := make([]string, 0, len(b.routes))
	for src, out := range b.routes {
		pairs = append(pairs, src+"="+out)
	}
	sort.Strings(pairs)
	return cache.RoutesDigest(pairs)
}

// Page returns the page written at an output path
func (b *Book) Page(out string) *Page {
	for _, p := range b.Pages {
		if p.Path == out {
			return p
		}
	}
	return nil
}

// Ordered returns the pages with the page at rootPath first, then the
// rest in manifest order
func (b *Book) Ordered(rootPath string) []*Page {
	ordered := make([]*Page, 0, len(b.Pages))
	if root := b.Page(rootPath); root != nil {
		ordered = append(ordered, root)
	}
	for _, p := range b.Pages {
		if p.Path != rootPath {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func isIndexName(base string) bool {
	name := strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
	return name == "index"
}

// sitePath routes pages to HTML files. A directory README becomes the
// directory index unless the directory has its own index page.
func sitePath(entry *domain.Entry, indexDirs map[string]bool) string {
	if entry.IsReadme() && !indexDirs[entry.Dir()] {
		return path.Join(entry.Dir(), "index.html")
	}
	return utils.ReplaceExt(entry.RelativePath, ".html")
}

// markdownPath keeps markdown pages in place and gives every other page
// a .md extension
func markdownPath(entry *domain.Entry, _ map[string]bool) string {
	if entry.ContentType == domain.ContentMarkdown {
		return entry.RelativePath
	}
	return utils.ReplaceExt(entry.RelativePath, ".md")
}
