package renderer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRenderer_Render(t *testing.T) {
	cfg := testConfig(t, func(c *domain.BuildConfig) {
		c.Intro = "Intro text"
		c.RepoRef = "acme/book"
	})
	manifest := scenarioManifest()
	manifest.Entries[1].Meta = domain.Meta{Author: "Ada", Tags: []string{"start"}}

	tree, err := NewJSONRenderer(newDeps(nil)).Render(context.Background(), manifest, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{JSONBookFile}, tree.Paths())

	var book JSONBook
	require.NoError(t, json.Unmarshal([]byte(file(t, tree, JSONBookFile)), &book))

	assert.Equal(t, "My Book", book.Title)
	assert.Equal(t, "Intro text", book.Intro)
	assert.Equal(t, "acme/book", book.Repo)
	assert.Equal(t, []string{"img/logo.png"}, book.Assets)

	require.Len(t, book.Pages, 2)
	assert.Equal(t, "README.md", book.Pages[0].Path)
	assert.Equal(t, "index.html", book.Pages[0].URL)
	assert.Equal(t, "My Book", book.Pages[0].Title)

	intro := book.Pages[1]
	assert.Equal(t, "chapter1/intro.md", intro.Path)
	assert.Equal(t, "chapter1/intro.html", intro.URL)
	assert.Equal(t, "Ada", intro.Meta.Author)
	assert.Equal(t, []string{"start"}, intro.Meta.Tags)
	assert.Contains(t, intro.HTML, `<a href="../index.html">home</a>`)
	assert.Equal(t, []domain.Heading{{Level: 1, ID: "intro", Text: "Intro"}}, intro.Headings)
	assert.Equal(t, "https://github.com/acme/book/blob/HEAD/chapter1/intro.md", intro.EditURL)
	assert.Greater(t, intro.WordCount, 0)
}

func TestJSONRenderer_EmptyManifest(t *testing.T) {
	tree, err := NewJSONRenderer(newDeps(nil)).Render(context.Background(), &domain.Manifest{}, testConfig(t))
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"My Book","pages":[],"assets":[]}`, file(t, tree, JSONBookFile))
}

func TestJSONRenderer_Idempotent(t *testing.T) {
	r := NewJSONRenderer(newDeps(nil))
	cfg := testConfig(t)

	first, err := r.Render(context.Background(), scenarioManifest(), cfg)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), scenarioManifest(), cfg)
	require.NoError(t, err)

	assertSameTree(t, first, second)
}
