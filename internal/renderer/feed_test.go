package renderer

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datedEntry(rel string, meta domain.Meta) domain.Entry {
	e := mdEntry(rel, "# "+meta.Title+"\n\nAbout "+meta.Title+".\n")
	e.Meta = meta
	return e
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"2014-04-17", "2014-04-17T00:00:00Z", true},
		{"17-04-2014", "2014-04-17T00:00:00Z", true},
		{" 2014-04-17 10:30:00 ", "2014-04-17T10:30:00Z", true},
		{"2014-04-17T10:30:00+02:00", "2014-04-17T08:30:00Z", true},
		{"17 Apr 2014", "2014-04-17T00:00:00Z", true},
		{"", "", false},
		{"someday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseDate(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02T15:04:05Z07:00"))
			}
		})
	}
}

func TestSiteRenderer_AtomFeed(t *testing.T) {
	manifest := &domain.Manifest{Entries: []domain.Entry{
		mdEntry("README.md", "# Projects\n"),
		datedEntry("old.md", domain.Meta{Title: "Old", Published: "2014-04-17", Author: "Ada"}),
		datedEntry("fresh.md", domain.Meta{Title: "Fresh", Published: "2013-01-01", Updated: "2015-06-01"}),
		datedEntry("new.md", domain.Meta{Title: "New", Published: "2015-01-01"}),
		datedEntry("wip.md", domain.Meta{Title: "Wip", Published: "2016-01-01", Status: domain.StatusDraft}),
		datedEntry("undated.md", domain.Meta{Title: "Undated"}),
	}}
	cfg := testConfig(t, func(c *domain.BuildConfig) { c.RepoRef = "acme/book" })

	tree, err := NewSiteRenderer(newDeps(nil)).Render(context.Background(), manifest, cfg)
	require.NoError(t, err)

	raw := file(t, tree, AtomFile)
	assert.True(t, strings.HasPrefix(raw, `<?xml version="1.0" encoding="UTF-8"?>`))

	var feed atomFeed
	require.NoError(t, xml.Unmarshal([]byte(raw), &feed))
	assert.Equal(t, "My Book", feed.Title)
	assert.Equal(t, "2015-06-01T00:00:00Z", feed.Updated)
	assert.Contains(t, feed.Links, atomLink{Rel: "self", Type: "application/atom+xml", Href: "https://acme.github.io/book/atom.xml"})

	var titles []string
	for _, e := range feed.Entries {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Fresh", "New", "Old"}, titles)

	old := feed.Entries[2]
	assert.Equal(t, "https://acme.github.io/book/old.html", old.ID)
	assert.Equal(t, "2014-04-17T00:00:00Z", old.Updated)
	assert.Equal(t, "2014-04-17T00:00:00Z", old.Published)
	require.NotNil(t, old.Author)
	assert.Equal(t, "Ada", old.Author.Name)
	assert.Nil(t, feed.Entries[0].Author)

	again, err := NewSiteRenderer(newDeps(nil)).Render(context.Background(), manifest, cfg)
	require.NoError(t, err)
	assert.Equal(t, raw, file(t, again, AtomFile))
}

func TestSiteRenderer_AtomFeedKeepsNewestPages(t *testing.T) {
	manifest := &domain.Manifest{}
	for day := 1; day <= FeedSize+3; day++ {
		manifest.Entries = append(manifest.Entries, datedEntry(
			fmt.Sprintf("post%02d.md", day),
			domain.Meta{Title: fmt.Sprintf("Post %d", day), Published: fmt.Sprintf("2020-03-%02d", day)},
		))
	}

	tree, err := NewSiteRenderer(newDeps(nil)).Render(context.Background(), manifest, testConfig(t))
	require.NoError(t, err)

	var feed atomFeed
	require.NoError(t, xml.Unmarshal([]byte(file(t, tree, AtomFile)), &feed))
	require.Len(t, feed.Entries, FeedSize)
	assert.Equal(t, "Post 13", feed.Entries[0].Title)
	assert.Equal(t, "Post 4", feed.Entries[FeedSize-1].Title)
	assert.Equal(t, "/post13.html", feed.Entries[0].ID)
}

func TestSiteRenderer_SitemapLastmodAndEscaping(t *testing.T) {
	manifest := &domain.Manifest{Entries: []domain.Entry{
		mdEntry("README.md", "# Home\n"),
		datedEntry("my notes/été.md", domain.Meta{Title: "Summer", Published: "2014-04-17"}),
		datedEntry("log.md", domain.Meta{Title: "Log", Published: "2014-04-17", Updated: "17-05-2014"}),
	}}

	tree, err := NewSiteRenderer(newDeps(nil)).Render(context.Background(), manifest, testConfig(t))
	require.NoError(t, err)

	sitemap := file(t, tree, SitemapFile)
	assert.Contains(t, sitemap, "<loc>/my%20notes/%C3%A9t%C3%A9.html</loc>\n    <lastmod>2014-04-17</lastmod>")
	assert.Contains(t, sitemap, "<loc>/log.html</loc>\n    <lastmod>2014-05-17</lastmod>")
	assert.Contains(t, sitemap, "<loc>/</loc>\n  </url>")
}

func TestSiteRenderer_TagPages(t *testing.T) {
	manifest := &domain.Manifest{Entries: []domain.Entry{
		mdEntry("README.md", "# Home\n"),
		datedEntry("a.md", domain.Meta{Title: "Alpha", Published: "2014-01-01", Tags: []string{"Game AI", "python"}}),
		datedEntry("b.md", domain.Meta{Title: "Beta", Published: "2015-01-01", Tags: []string{"python", "Python"}}),
		datedEntry("c.md", domain.Meta{Title: "Gamma", Tags: []string{"python"}}),
		datedEntry("d.md", domain.Meta{Title: "Delta", Status: domain.StatusDraft, Tags: []string{"secret"}}),
		datedEntry("e.md", domain.Meta{Title: "Epsilon", Tags: []string{"index"}}),
	}}

	tree, err := NewSiteRenderer(newDeps(nil)).Render(context.Background(), manifest, testConfig(t))
	require.NoError(t, err)

	assert.Subset(t, tree.Paths(), []string{"tags/index.html", "tags/game-ai.html", "tags/python.html", "tags/index-tag.html"})
	assert.NotContains(t, tree.Paths(), "tags/secret.html")

	index := file(t, tree, TagsIndexFile)
	assert.Contains(t, index, "<title>Tags · My Book</title>")
	assert.Contains(t, index, `<li><a href="game-ai.html">Game AI</a></li>`)
	assert.Less(t, strings.Index(index, "game-ai.html"), strings.Index(index, "python.html"))
	assert.Contains(t, index, `href="../style.css"`)

	python := file(t, tree, "tags/python.html")
	assert.Contains(t, python, `<li><a href="../b.html">Beta</a> <time>2015-01-01</time></li>`)
	beta := strings.Index(python, `<li><a href="../b.html">`)
	alpha := strings.Index(python, `<li><a href="../a.html">`)
	gamma := strings.Index(python, `<li><a href="../c.html">Gamma</a></li>`)
	require.True(t, beta >= 0 && alpha >= 0 && gamma >= 0)
	assert.Less(t, beta, alpha)
	assert.Less(t, alpha, gamma)
	assert.Equal(t, 1, strings.Count(python, `<li><a href="../b.html">Beta</a>`))

	var docs []searchDoc
	require.NoError(t, json.Unmarshal([]byte(file(t, tree, SearchIndexFile)), &docs))
	for _, doc := range docs {
		if doc.Path == "a.html" {
			assert.Equal(t, []string{"Game AI", "python"}, doc.Tags)
		}
	}
}

func TestTagSlug(t *testing.T) {
	tests := map[string]string{
		"Python":        "python",
		" Game  AI ":    "game-ai",
		"C++":           "c",
		"Été/Hiver":     "été-hiver",
		"--":            "",
		"machine_learn": "machine-learn",
	}
	for tag, want := range tests {
		assert.Equal(t, want, tagSlug(tag), tag)
	}
}
