package renderer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/quantmind-br/folio/internal/converter"
	"github.com/quantmind-br/folio/internal/domain"
)

// SummaryFile is the table of contents written by the markdown format
const SummaryFile = "SUMMARY.md"

// MarkdownRenderer writes a normalized markdown tree
type MarkdownRenderer struct {
	deps      *Dependencies
	converter *converter.MarkdownConverter
}

// NewMarkdownRenderer creates a new markdown renderer
func NewMarkdownRenderer(deps *Dependencies) *MarkdownRenderer {
	return &MarkdownRenderer{
		deps:      deps,
		converter: converter.NewMarkdownConverter(),
	}
}

// Name returns the format name
func (r *MarkdownRenderer) Name() string {
	return "markdown"
}

// Description returns a one line summary
func (r *MarkdownRenderer) Description() string {
	return "markdown tree with YAML front matter and a SUMMARY.md"
}

// Render re-emits every page as markdown with front matter
func (r *MarkdownRenderer) Render(ctx context.Context, manifest *domain.Manifest, cfg domain.BuildConfig) (*domain.OutputTree, error) {
	book, err := NewBook(manifest, cfg, markdownPath)
	if err != nil {
		return nil, err
	}
	if err := r.deps.renderFragments(ctx, r.Name(), book); err != nil {
		return nil, err
	}

	tree := domain.NewOutputTree()
	for _, page := range book.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := r.page(page)
		if err != nil {
			return nil, domain.NewRenderError(page.Source.RelativePath, err)
		}
		if err := addFile(tree, page.Source.RelativePath, page.Path, data); err != nil {
			return nil, err
		}
	}

	if err := copyAssets(tree, book); err != nil {
		return nil, err
	}
	if err := addGenerated(tree, SummaryFile, buildSummary(book)); err != nil {
		return nil, err
	}
	return tree, nil
}

func (r *MarkdownRenderer) page(page *Page) ([]byte, error) {
	body := page.Source.Body
	if page.Source.ContentType == domain.ContentHTML {
		md, err := r.converter.Convert(page.Fragment.HTML)
		if err != nil {
			return nil, err
		}
		body = md
	}

	out, err := converter.AddFrontmatter(strings.TrimSpace(body)+"\n", converter.NewFrontmatter(page.Source, page.Fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to write front matter: %w", err)
	}
	return []byte(out), nil
}

// buildSummary writes a nested list of every page, root README first
func buildSummary(book *Book) []byte {
	rootReadme := ""
	for _, p := range book.Pages {
		if p.Source.IsReadme() && p.Source.Dir() == "" {
			rootReadme = p.Path
			break
		}
	}

	var b strings.Builder
	b.WriteString("# Summary\n\n")
	for _, p := range book.Ordered(rootReadme) {
		if path.Base(p.Path) == SummaryFile && p.Dir() == "" {
			continue
		}
		fmt.Fprintf(&b, "%s- [%s](%s)\n", strings.Repeat("  ", p.Level()), escapeLinkText(p.Fragment.Title), p.Path)
	}
	return []byte(b.String())
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
