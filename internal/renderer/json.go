package renderer

import (
	"context"
	"encoding/json"

	"github.com/quantmind-br/folio/internal/domain"
)

// JSONBookFile is the single file written by the json format
const JSONBookFile = "book.json"

// JSONBook is the document written to book.json
type JSONBook struct {
	Title  string     `json:"title"`
	Intro  string     `json:"intro,omitempty"`
	Repo   string     `json:"repo,omitempty"`
	Pages  []JSONPage `json:"pages"`
	Assets []string   `json:"assets"`
}

// JSONPage is one rendered page of a JSONBook
type JSONPage struct {
	Path      string           `json:"path"`
	URL       string           `json:"url"`
	Title     string           `json:"title"`
	Summary   string           `json:"summary,omitempty"`
	Meta      domain.Meta      `json:"meta"`
	HTML      string           `json:"html"`
	Headings  []domain.Heading `json:"headings,omitempty"`
	WordCount int              `json:"word_count"`
	EditURL   string           `json:"edit_url,omitempty"`
}

// JSONRenderer writes the whole book as one JSON document
type JSONRenderer struct {
	deps *Dependencies
}

// NewJSONRenderer creates a new json renderer
func NewJSONRenderer(deps *Dependencies) *JSONRenderer {
	return &JSONRenderer{deps: deps}
}

// Name returns the format name
func (r *JSONRenderer) Name() string {
	return "json"
}

// Description returns a one line summary
func (r *JSONRenderer) Description() string {
	return "single book.json with metadata and rendered HTML per page"
}

// Render builds book.json. Page URLs and rewritten links follow the
// layout of the site format.
func (r *JSONRenderer) Render(ctx context.Context, manifest *domain.Manifest, cfg domain.BuildConfig) (*domain.OutputTree, error) {
	book, err := NewBook(manifest, cfg, sitePath)
	if err != nil {
		return nil, err
	}
	if err := r.deps.renderFragments(ctx, r.Name(), book); err != nil {
		return nil, err
	}

	doc := JSONBook{
		Title:  cfg.Title,
		Intro:  cfg.Intro,
		Repo:   cfg.RepoRef,
		Pages:  make([]JSONPage, 0, len(book.Pages)),
		Assets: make([]string, 0, len(book.Assets)),
	}
	for _, p := range book.Pages {
		doc.Pages = append(doc.Pages, JSONPage{
			Path:      p.Source.RelativePath,
			URL:       p.Path,
			Title:     p.Fragment.Title,
			Summary:   p.Fragment.Summary,
			Meta:      p.Source.Meta,
			HTML:      p.Fragment.HTML,
			Headings:  p.Fragment.Headings,
			WordCount: p.Fragment.WordCount,
			EditURL:   cfg.EditURL(p.Source.RelativePath),
		})
	}
	for _, a := range book.Assets {
		doc.Assets = append(doc.Assets, a.RelativePath)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, domain.NewRenderError(JSONBookFile, err)
	}

	tree := domain.NewOutputTree()
	if err := addFile(tree, JSONBookFile, JSONBookFile, append(data, '\n')); err != nil {
		return nil, err
	}
	return tree, nil
}
