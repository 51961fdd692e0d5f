package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TagsToRemove are HTML tags that should be completely removed
var TagsToRemove = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"object",
	"embed",
	"applet",
	"base",
	"link",
	"meta",
}

// ClassesToRemove are CSS classes that indicate non-content elements
var ClassesToRemove = []string{
	"sidebar",
	"navigation",
	"nav",
	"menu",
}

// IDsToRemove are element IDs that indicate non-content elements
var IDsToRemove = []string{
	"sidebar",
	"navigation",
	"nav",
	"menu",
}

// Sanitizer cleans hand-written HTML pages before they are themed
type Sanitizer struct {
	removeNavigation bool
	router           Router
}

// SanitizerOptions contains options for the sanitizer
type SanitizerOptions struct {
	// RemoveNavigation drops the page's own menus so the theme's sidebar
	// is the only navigation
	RemoveNavigation bool
	Router           Router
}

// NewSanitizer creates a new sanitizer
func NewSanitizer(opts SanitizerOptions) *Sanitizer {
	return &Sanitizer{
		removeNavigation: opts.RemoveNavigation,
		router:           opts.Router,
	}
}

// SanitizeSelection cleans a selection in place.
func (s *Sanitizer) SanitizeSelection(sel *goquery.Selection, fromDir string) *goquery.Selection {
	if sel == nil {
		return nil
	}

	for _, tag := range TagsToRemove {
		findWithRoot(sel, tag).Remove()
	}

	if s.removeNavigation {
		for _, class := range ClassesToRemove {
			findWithRoot(sel, "."+class).Remove()
		}
		for _, id := range IDsToRemove {
			findWithRoot(sel, "#"+id).Remove()
		}
		findWithRoot(sel, "nav").Remove()
	}

	// Inline event handlers never survive into the site
	findWithRoot(sel, "*").Each(func(_ int, node *goquery.Selection) {
		var handlers []string
		for _, attr := range node.Get(0).Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				handlers = append(handlers, attr.Key)
			}
		}
		for _, key := range handlers {
			node.RemoveAttr(key)
		}
	})

	RewriteLinks(sel, fromDir, s.router)

	s.removeEmptyElementsFromSelection(sel)
	return sel
}

func (s *Sanitizer) removeEmptyElementsFromSelection(sel *goquery.Selection) {
	findWithRoot(sel, "p").Each(func(_ int, node *goquery.Selection) {
		if strings.TrimSpace(node.Text()) == "" && node.Children().Length() == 0 {
			node.Remove()
		}
	})
}
