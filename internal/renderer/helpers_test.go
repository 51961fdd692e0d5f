package renderer

import (
	"testing"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mdEntry(rel, body string) domain.Entry {
	return domain.Entry{RelativePath: rel, Raw: []byte(body), ContentType: domain.ContentMarkdown, Body: body}
}

func htmlEntry(rel, body string) domain.Entry {
	return domain.Entry{RelativePath: rel, Raw: []byte(body), ContentType: domain.ContentHTML, Body: body}
}

func semilitEntry(rel, raw, body string) domain.Entry {
	return domain.Entry{RelativePath: rel, Raw: []byte(raw), ContentType: domain.ContentSemilit, Body: body, Language: "python"}
}

func assetEntry(rel, data string) domain.Entry {
	return domain.Entry{RelativePath: rel, Raw: []byte(data), ContentType: domain.ContentAsset}
}

// scenarioManifest is a README plus one nested chapter and an image
func scenarioManifest() *domain.Manifest {
	return &domain.Manifest{Entries: []domain.Entry{
		mdEntry("README.md", "# My Book\n\nWelcome.\n\nStart with [the intro](chapter1/intro.md).\n"),
		mdEntry("chapter1/intro.md", "# Intro\n\nFirst chapter. Back [home](../README.md).\n\n![logo](../img/logo.png)\n"),
		assetEntry("img/logo.png", "\x89PNG"),
	}}
}

func testConfig(t *testing.T, mutate ...func(*domain.BuildConfig)) domain.BuildConfig {
	t.Helper()
	cfg := domain.BuildConfig{SourceDir: "my-book", Workers: 2}
	for _, m := range mutate {
		m(&cfg)
	}
	resolved, err := cfg.Resolve(t.TempDir())
	require.NoError(t, err)
	return resolved
}

func newDeps(c domain.Cache) *Dependencies {
	return NewDependencies(Dependencies{Cache: c})
}

func file(t *testing.T, tree *domain.OutputTree, rel string) string {
	t.Helper()
	data, ok := tree.Get(rel)
	require.True(t, ok, "missing %s", rel)
	return string(data)
}

func assertSameTree(t *testing.T, want, got *domain.OutputTree) {
	t.Helper()
	require.Equal(t, want.Paths(), got.Paths())
	for _, p := range want.Paths() {
		a, _ := want.Get(p)
		b, _ := got.Get(p)
		assert.Equal(t, string(a), string(b), p)
	}
}
