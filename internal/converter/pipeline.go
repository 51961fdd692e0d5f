package converter

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/folio/internal/domain"
)

// Pipeline turns one source entry into a themable HTML fragment
type Pipeline struct {
	sanitizer *Sanitizer
	router    Router
}

// PipelineOptions contains options for the conversion pipeline
type PipelineOptions struct {
	// Router rewrites links to source files; nil leaves links untouched
	Router           Router
	RemoveNavigation bool
}

// NewPipeline creates a new conversion pipeline
func NewPipeline(opts PipelineOptions) *Pipeline {
	return &Pipeline{
		sanitizer: NewSanitizer(SanitizerOptions{
			RemoveNavigation: opts.RemoveNavigation,
			Router:           opts.Router,
		}),
		router: opts.Router,
	}
}

// Convert renders a page entry to a Fragment
func (p *Pipeline) Convert(ctx context.Context, entry *domain.Entry) (*domain.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 1: Produce raw HTML
	var (
		raw      string
		docTitle string
		docDesc  string
		err      error
	)
	switch entry.ContentType {
	case domain.ContentMarkdown, domain.ContentSemilit:
		raw, err = MarkdownToHTML(entry.Body)
	case domain.ContentHTML:
		raw, docTitle, docDesc, err = ExtractBody(entry.Body)
	default:
		return nil, fmt.Errorf("%s content is not a page", entry.ContentType)
	}
	if err != nil {
		return nil, err
	}

	// Step 2: Parse, sanitize hand-written HTML, rewrite links
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	body := doc.Find("body")

	if entry.ContentType == domain.ContentHTML {
		p.sanitizer.SanitizeSelection(body, entry.Dir())
	} else {
		RewriteLinks(body, entry.Dir(), p.router)
	}

	html, err := body.Html()
	if err != nil {
		return nil, err
	}

	// Step 3: Extract metadata
	headings := ExtractHeadings(body)

	return &domain.Fragment{
		HTML:      strings.TrimSpace(html),
		Title:     pageTitle(entry, headings, docTitle),
		Summary:   pageSummary(entry, body, docDesc),
		Headings:  headings,
		WordCount: CountWords(body.Text()),
	}, nil
}

// pageTitle prefers metadata, then the first h1, then the file name
func pageTitle(entry *domain.Entry, headings []domain.Heading, docTitle string) string {
	if t := strings.TrimSpace(entry.Meta.Title); t != "" {
		return t
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	if docTitle != "" {
		return docTitle
	}
	if entry.IsReadme() {
		if entry.Dir() == "" {
			return "Introduction"
		}
		return domain.TitleFromName(path.Base(entry.Dir()))
	}
	base := path.Base(entry.RelativePath)
	return domain.TitleFromName(strings.TrimSuffix(base, path.Ext(base)))
}

// pageSummary prefers metadata, then an HTML meta description, then the
// first paragraph
func pageSummary(entry *domain.Entry, body *goquery.Selection, description string) string {
	if s := strings.TrimSpace(entry.Meta.Summary); s != "" {
		return Truncate(strings.Join(strings.Fields(StripMarkdown(s)), " "), MaxSummaryLength)
	}
	if description != "" {
		return Truncate(strings.Join(strings.Fields(description), " "), MaxSummaryLength)
	}
	return firstParagraph(body)
}
