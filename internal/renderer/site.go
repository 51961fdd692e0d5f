package renderer

import (
	"context"
	"html/template"
	"strings"

	"github.com/quantmind-br/folio/internal/converter"
	"github.com/quantmind-br/folio/internal/domain"
)

// Files the site format writes besides pages and assets
const (
	SiteIndexFile    = "index.html"
	SiteNotFoundFile = "404.html"
	SiteStyleFile    = "style.css"
	SitemapFile      = "sitemap.xml"
	SearchIndexFile  = "search_index.json"
)

var indexTemplate = template.Must(template.New("index").Parse(`<h1>{{.Title}}</h1>
{{- with .Intro}}
<p>{{.}}</p>
{{- end}}
<ul class="toc">
{{- range .Entries}}
<li class="depth-{{.Depth}}"><a href="{{.URL}}">{{.Title}}</a></li>
{{- end}}
</ul>
`))

// SiteRenderer renders a browsable HTML website
type SiteRenderer struct {
	deps *Dependencies
}

// NewSiteRenderer creates a new site renderer
func NewSiteRenderer(deps *Dependencies) *SiteRenderer {
	return &SiteRenderer{deps: deps}
}

// Name returns the format name
func (r *SiteRenderer) Name() string {
	return "site"
}

// Description returns a one line summary
func (r *SiteRenderer) Description() string {
	return "HTML website with sidebar navigation, sitemap and search index"
}

// Render builds the complete site
func (r *SiteRenderer) Render(ctx context.Context, manifest *domain.Manifest, cfg domain.BuildConfig) (*domain.OutputTree, error) {
	theme, err := LoadTheme(cfg.ThemePath)
	if err != nil {
		return nil, err
	}

	book, err := NewBook(manifest, cfg, sitePath)
	if err != nil {
		return nil, err
	}
	if err := r.deps.renderFragments(ctx, r.Name(), book); err != nil {
		return nil, err
	}

	pages := book.Ordered(SiteIndexFile)
	if book.Page(SiteIndexFile) == nil {
		home, err := generatedIndex(book)
		if err != nil {
			return nil, err
		}
		pages = append([]*Page{home}, pages...)
	}

	tree := domain.NewOutputTree()
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := page.Dir()
		view := newPageView(book, pages, i, strings.Repeat("../", page.Depth()), func(target string) string {
			return converter.RelativePath(dir, target)
		})
		data, err := theme.RenderPage(view)
		if err != nil {
			return nil, domain.NewRenderError(page.SourcePath(), err)
		}
		if err := addFile(tree, page.SourcePath(), page.Path, data); err != nil {
			return nil, err
		}
	}

	if err := copyAssets(tree, book); err != nil {
		return nil, err
	}

	if err := r.addExtras(tree, theme, book, pages); err != nil {
		return nil, err
	}

	r.deps.Logger.Debug().
		Int("pages", len(pages)).
		Int("assets", len(book.Assets)).
		Msg("Site assembled")
	return tree, nil
}

// addExtras writes the generated files. Source files of the same name win.
func (r *SiteRenderer) addExtras(tree *domain.OutputTree, theme *Theme, book *Book, pages []*Page) error {
	if err := addGenerated(tree, SiteStyleFile, theme.Style()); err != nil {
		return err
	}

	notFound, err := theme.RenderPage(notFoundView(book, pages))
	if err != nil {
		return domain.NewRenderError(SiteNotFoundFile, err)
	}
	if err := addGenerated(tree, SiteNotFoundFile, notFound); err != nil {
		return err
	}

	sitemap, err := buildSitemap(book.Config, pages)
	if err != nil {
		return domain.NewRenderError(SitemapFile, err)
	}
	if err := addGenerated(tree, SitemapFile, sitemap); err != nil {
		return err
	}

	feed, err := buildAtomFeed(book.Config, pages)
	if err != nil {
		return domain.NewRenderError(AtomFile, err)
	}
	if feed != nil {
		if err := addGenerated(tree, AtomFile, feed); err != nil {
			return err
		}
	}

	if err := r.addTagPages(tree, theme, book, pages); err != nil {
		return err
	}

	index, err := buildSearchIndex(book.Pages)
	if err != nil {
		return domain.NewRenderError(SearchIndexFile, err)
	}
	return addGenerated(tree, SearchIndexFile, index)
}

// newPageView builds the template data for pages[current]. link maps an
// output path to a URL usable from the page.
func newPageView(book *Book, pages []*Page, current int, root string, link func(string) string) *pageView {
	cfg := book.Config
	view := &pageView{
		BookTitle: cfg.Title,
		Root:      root,
		Home:      link(SiteIndexFile),
		RepoURL:   cfg.RepoURL(),
	}

	for i, p := range pages {
		view.Nav = append(view.Nav, navLink{
			Title:  p.Fragment.Title,
			URL:    link(p.Path),
			Depth:  p.Level(),
			Active: i == current,
		})
	}

	if current < 0 {
		return view
	}

	page := pages[current]
	view.Title = page.Fragment.Title
	view.Description = page.Fragment.Summary
	view.Content = template.HTML(page.Fragment.HTML)
	if page.Source != nil {
		view.EditURL = cfg.EditURL(page.Source.RelativePath)
	}
	if current > 0 {
		prev := view.Nav[current-1]
		view.Prev = &prev
	}
	if current < len(pages)-1 {
		next := view.Nav[current+1]
		view.Next = &next
	}
	return view
}

// notFoundView is served for any missing path, so every link is absolute
func notFoundView(book *Book, pages []*Page) *pageView {
	view := newPageView(book, pages, -1, "/", func(target string) string {
		return "/" + target
	})
	view.Title = "Page not found"
	view.Content = template.HTML(`<h1>Page not found</h1>
<p>The page you are looking for does not exist. <a href="/">Back to ` +
		template.HTMLEscapeString(book.Config.Title) + `</a></p>`)
	return view
}

// generatedIndex builds the home page of a book without a root README
func generatedIndex(book *Book) (*Page, error) {
	type tocEntry struct {
		Title string
		URL   string
		Depth int
	}
	data := struct {
		Title   string
		Intro   string
		Entries []tocEntry
	}{
		Title: book.Config.Title,
		Intro: book.Config.Intro,
	}
	for _, p := range book.Pages {
		data.Entries = append(data.Entries, tocEntry{Title: p.Fragment.Title, URL: p.Path, Depth: p.Level()})
	}

	var buf strings.Builder
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, domain.NewRenderError(SiteIndexFile, err)
	}
	return &Page{
		Path: SiteIndexFile,
		Fragment: &domain.Fragment{
			HTML:    buf.String(),
			Title:   book.Config.Title,
			Summary: book.Config.Intro,
		},
	}, nil
}
