package renderer

import (
	"encoding/xml"
	"html/template"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/quantmind-br/folio/internal/converter"
	"github.com/quantmind-br/folio/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Generated feed and tag listing files of the site format
const (
	AtomFile      = "atom.xml"
	TagsDir       = "tags"
	TagsIndexFile = "tags/index.html"

	// FeedSize is the number of pages the atom feed carries
	FeedSize = 10

	atomNamespace = "http://www.w3.org/2005/Atom"
)

// dateLayouts are tried in order on the published and updated head fields
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// parseDate reads a head block date. Dates without a zone are UTC.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// datedPage is a source page with its head block dates parsed
type datedPage struct {
	page      *Page
	published time.Time
	updated   time.Time
}

// lastmod is the updated date, or the published date when the page was
// never updated
func (d datedPage) lastmod() time.Time {
	if !d.updated.IsZero() {
		return d.updated
	}
	return d.published
}

// issued is the published date, or the updated date of a page that was
// never given one
func (d datedPage) issued() time.Time {
	if !d.published.IsZero() {
		return d.published
	}
	return d.updated
}

// datePage parses the dates of a non draft source page. ok is false when
// the page has neither date.
func datePage(p *Page) (datedPage, bool) {
	if p.Source == nil || p.Source.Meta.IsDraft() {
		return datedPage{}, false
	}
	d := datedPage{page: p}
	d.published, _ = parseDate(p.Source.Meta.Published)
	d.updated, _ = parseDate(p.Source.Meta.Updated)
	if d.published.IsZero() && d.updated.IsZero() {
		return datedPage{}, false
	}
	return d, true
}

// sortByDate orders pages newest first by key, then by output path
func sortByDate(pages []datedPage, key func(datedPage) time.Time) {
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := key(pages[i]), key(pages[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return pages[i].page.Path < pages[j].page.Path
	})
}

// publishedPages returns the dated non draft pages, most recently
// published first
func publishedPages(pages []*Page) []datedPage {
	var dated []datedPage
	for _, p := range pages {
		if d, ok := datePage(p); ok {
			dated = append(dated, d)
		}
	}
	sortByDate(dated, datedPage.issued)
	return dated
}

type atomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title     string      `xml:"title"`
	ID        string      `xml:"id"`
	Link      atomLink    `xml:"link"`
	Updated   string      `xml:"updated"`
	Published string      `xml:"published,omitempty"`
	Author    *atomAuthor `xml:"author,omitempty"`
	Summary   string      `xml:"summary,omitempty"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Links   []atomLink  `xml:"link"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

// buildAtomFeed lists the FeedSize most recently modified pages. Every
// timestamp comes from the head blocks, so the feed is nil when no page
// is dated.
func buildAtomFeed(cfg domain.BuildConfig, pages []*Page) ([]byte, error) {
	dated := publishedPages(pages)
	if len(dated) == 0 {
		return nil, nil
	}
	sortByDate(dated, datedPage.lastmod)
	if len(dated) > FeedSize {
		dated = dated[:FeedSize]
	}

	base := SiteBaseURL(cfg)
	feed := atomFeed{
		Xmlns: atomNamespace,
		Title: cfg.Title,
		ID:    base + AtomFile,
		Links: []atomLink{
			{Rel: "self", Type: "application/atom+xml", Href: base + AtomFile},
			{Rel: "alternate", Type: "text/html", Href: base},
		},
		Updated: dated[0].lastmod().Format(time.RFC3339),
	}
	for _, d := range dated {
		loc := base + escapeURLPath(pageURL(d.page.Path))
		entry := atomEntry{
			Title:   d.page.Fragment.Title,
			ID:      loc,
			Link:    atomLink{Href: loc},
			Updated: d.lastmod().Format(time.RFC3339),
			Summary: d.page.Fragment.Summary,
		}
		if !d.published.IsZero() {
			entry.Published = d.published.Format(time.RFC3339)
		}
		if author := strings.TrimSpace(d.page.Source.Meta.Author); author != "" {
			entry.Author = &atomAuthor{Name: author}
		}
		feed.Entries = append(feed.Entries, entry)
	}

	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

var tagListTemplate = template.Must(template.New("tags").Parse(`<h1>{{.Title}}</h1>
<ul class="tags">
{{- range .Links}}
<li><a href="{{.URL}}">{{.Title}}</a>{{with .Date}} <time>{{.}}</time>{{end}}</li>
{{- end}}
</ul>
`))

type tagLink struct {
	Title string
	URL   string
	Date  string
}

// tagSlug turns a tag into a file name: lower case letters and digits
// with dashes between words
func tagSlug(tag string) string {
	var b strings.Builder
	dash := false
	for _, r := range cases.Lower(language.Und).String(strings.TrimSpace(tag)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// tagPath is the output path of the listing for tag
func tagPath(tag string) string {
	slug := tagSlug(tag)
	if slug+".html" == path.Base(TagsIndexFile) {
		slug += "-tag"
	}
	return path.Join(TagsDir, slug+".html")
}

// collectTags groups the non draft pages by tag slug. The first spelling
// of a tag names the group.
func collectTags(pages []*Page) (names map[string]string, tagged map[string][]*Page) {
	names = make(map[string]string)
	tagged = make(map[string][]*Page)
	for _, p := range pages {
		if p.Source == nil || p.Source.Meta.IsDraft() {
			continue
		}
		seen := make(map[string]bool)
		for _, tag := range p.Source.Meta.Tags {
			slug := tagSlug(tag)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			if _, ok := names[slug]; !ok {
				names[slug] = strings.TrimSpace(tag)
			}
			tagged[slug] = append(tagged[slug], p)
		}
	}
	return names, tagged
}

// addTagPages writes tags/index.html and one listing per tag. Pages in a
// listing are ordered by published date, undated pages last in book order.
func (r *SiteRenderer) addTagPages(tree *domain.OutputTree, theme *Theme, book *Book, pages []*Page) error {
	names, tagged := collectTags(pages)
	if len(names) == 0 {
		return nil
	}

	slugs := make([]string, 0, len(names))
	for slug := range names {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	link := func(target string) string {
		return converter.RelativePath(TagsDir, target)
	}
	render := func(rel, title string, links []tagLink) error {
		var buf strings.Builder
		if err := tagListTemplate.Execute(&buf, struct {
			Title string
			Links []tagLink
		}{title, links}); err != nil {
			return domain.NewRenderError(rel, err)
		}
		view := newPageView(book, pages, -1, "../", link)
		view.Title = title
		view.Content = template.HTML(buf.String())
		data, err := theme.RenderPage(view)
		if err != nil {
			return domain.NewRenderError(rel, err)
		}
		return addGenerated(tree, rel, data)
	}

	var index []tagLink
	for _, slug := range slugs {
		rel := tagPath(names[slug])
		index = append(index, tagLink{Title: names[slug], URL: link(rel)})

		var links []tagLink
		listed := make(map[*Page]bool)
		for _, d := range publishedPages(tagged[slug]) {
			listed[d.page] = true
			links = append(links, tagLink{
				Title: d.page.Fragment.Title,
				URL:   link(d.page.Path),
				Date:  d.issued().Format("2006-01-02"),
			})
		}
		for _, p := range tagged[slug] {
			if !listed[p] {
				links = append(links, tagLink{Title: p.Fragment.Title, URL: link(p.Path)})
			}
		}
		if err := render(rel, "Tagged "+names[slug], links); err != nil {
			return err
		}
	}
	return render(TagsIndexFile, "Tags", index)
}
