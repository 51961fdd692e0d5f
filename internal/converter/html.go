package converter

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/folio/internal/domain"
)

// MaxSummaryLength bounds extracted summaries, in runes
const MaxSummaryLength = 300

// Router maps a slash separated source path to its output path
type Router func(source string) (string, bool)

// ExtractBody returns the inner HTML of <body> along with the document
// title and meta description
func ExtractBody(html string) (body, title, description string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", "", err
	}

	title = extractTitle(doc)
	description = ExtractDescription(doc)

	body, err = doc.Find("body").First().Html()
	if err != nil {
		return "", title, description, err
	}
	return body, title, description, nil
}

// extractTitle extracts the page title
func extractTitle(doc *goquery.Document) string {
	// Try <title> tag
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		return title
	}

	// Try <h1> tag
	h1 := strings.TrimSpace(doc.Find("h1").First().Text())
	if h1 != "" {
		return h1
	}

	// Try og:title meta tag
	ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content")
	if exists && ogTitle != "" {
		return ogTitle
	}

	return ""
}

// ExtractDescription extracts the page description from meta tags
func ExtractDescription(doc *goquery.Document) string {
	desc, exists := doc.Find("meta[name='description']").Attr("content")
	if exists && desc != "" {
		return strings.TrimSpace(desc)
	}

	ogDesc, exists := doc.Find("meta[property='og:description']").Attr("content")
	if exists && ogDesc != "" {
		return strings.TrimSpace(ogDesc)
	}

	return ""
}

// ExtractHeadings returns h1-h3 headings in document order
func ExtractHeadings(sel *goquery.Selection) []domain.Heading {
	var headings []domain.Heading
	sel.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		text := strings.Join(strings.Fields(h.Text()), " ")
		if text == "" {
			return
		}
		id, _ := h.Attr("id")
		headings = append(headings, domain.Heading{
			Level: int(goquery.NodeName(h)[1] - '0'),
			ID:    id,
			Text:  text,
		})
	})
	return headings
}

// firstParagraph returns the text of the first non-empty paragraph
func firstParagraph(sel *goquery.Selection) string {
	var text string
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text = strings.Join(strings.Fields(p.Text()), " ")
		return text == ""
	})
	return Truncate(text, MaxSummaryLength)
}

// Truncate shortens s to at most n runes, ending with "..."
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}

// RewriteLinks rewrites every a[href] in sel that points at a routed
// source file. fromDir is the slash separated directory of the page.
func RewriteLinks(sel *goquery.Selection, fromDir string, route Router) {
	if route == nil {
		return
	}
	findWithRoot(sel, "a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if rewritten := RewriteHref(fromDir, href, route); rewritten != href {
			a.SetAttr("href", rewritten)
		}
	})
}

// RewriteHref maps a link to a source file onto the file's output path.
// External, fragment-only and unknown links are returned unchanged.
func RewriteHref(fromDir, href string, route Router) string {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return href
	}

	absolute := strings.HasPrefix(u.Path, "/")
	var target string
	if absolute {
		target = strings.TrimPrefix(path.Clean(u.Path), "/")
	} else {
		target = path.Join(fromDir, u.Path)
	}
	if target == ".." || strings.HasPrefix(target, "../") {
		return href
	}

	out, ok := route(target)
	if !ok {
		return href
	}

	if absolute {
		u.Path = "/" + out
	} else {
		u.Path = RelativePath(fromDir, out)
	}
	return u.String()
}

// RelativePath returns the slash path of to relative to directory fromDir
func RelativePath(fromDir, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash("/"+fromDir), filepath.FromSlash("/"+to))
	if err != nil {
		return to
	}
	return filepath.ToSlash(rel)
}

// findWithRoot matches selector against sel itself and its descendants
func findWithRoot(sel *goquery.Selection, selector string) *goquery.Selection {
	return sel.Filter(selector).AddSelection(sel.Find(selector))
}
