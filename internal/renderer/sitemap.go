package renderer

import (
	"encoding/json"
	"encoding/xml"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/quantmind-br/folio/internal/domain"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists every page URL in output path order. lastmod comes
// from the head block dates only, so identical sources give identical
// bytes.
func buildSitemap(cfg domain.BuildConfig, pages []*Page) ([]byte, error) {
	base := SiteBaseURL(cfg)

	sorted := make([]*Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	set := sitemapURLSet{Xmlns: sitemapNamespace}
	for _, p := range sorted {
		u := sitemapURL{Loc: base + escapeURLPath(pageURL(p.Path))}
		if d, ok := datePage(p); ok {
			u.LastMod = d.lastmod().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// SiteBaseURL returns the URL the site is published under. Books of
// github.com repositories are assumed to live on GitHub Pages; anything
// else gets root relative URLs.
func SiteBaseURL(cfg domain.BuildConfig) string {
	owner, repo, ok := strings.Cut(cfg.RepoRef, "/")
	if !ok || owner == "" || repo == "" {
		return "/"
	}

	host := cfg.GitHubHost
	if host == "" {
		host = domain.DefaultGitHubHost
	}
	u, err := url.Parse(host)
	if err != nil || strings.TrimPrefix(strings.ToLower(u.Host), "www.") != "github.com" {
		return "/"
	}

	if strings.EqualFold(repo, owner+".github.io") {
		return "https://" + strings.ToLower(repo) + "/"
	}
	return "https://" + strings.ToLower(owner) + ".github.io/" + repo + "/"
}

// pageURL drops a trailing index.html so directories get clean URLs
func pageURL(p string) string {
	if path.Base(p) == SiteIndexFile {
		return strings.TrimSuffix(p, SiteIndexFile)
	}
	return p
}

// escapeURLPath percent encodes every segment of a slash separated path
func escapeURLPath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

type searchDoc struct {
	Title    string   `json:"title"`
	Path     string   `json:"path"`
	Summary  string   `json:"summary,omitempty"`
	Headings []string `json:"headings,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// buildSearchIndex lists the source pages in manifest order
func buildSearchIndex(pages []*Page) ([]byte, error) {
	docs := make([]searchDoc, 0, len(pages))
	for _, p := range pages {
		doc := searchDoc{
			Title:   p.Fragment.Title,
			Path:    p.Path,
			Summary: p.Fragment.Summary,
		}
		if p.Source != nil {
			doc.Tags = p.Source.Meta.Tags
		}
		for _, h := range p.Fragment.Headings {
			doc.Headings = append(doc.Headings, h.Text)
		}
		docs = append(docs, doc)
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
