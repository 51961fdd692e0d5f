package app

import (
	"github.com/quantmind-br/folio/internal/format"
	"github.com/quantmind-br/folio/internal/renderer"
)

// Built-in output format names
const (
	FormatSite     = "site"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// CreateRenderer creates the built-in renderer for a format name.
// It returns nil for names that are not built in.
func CreateRenderer(name string, deps *renderer.Dependencies) renderer.Format {
	switch name {
	case FormatSite:
		return renderer.NewSiteRenderer(deps)
	case FormatJSON:
		return renderer.NewJSONRenderer(deps)
	case FormatMarkdown:
		return renderer.NewMarkdownRenderer(deps)
	default:
		return nil
	}
}

// GetAllFormats returns one instance of every built-in renderer
func GetAllFormats(deps *renderer.Dependencies) []renderer.Format {
	names := []string{FormatSite, FormatJSON, FormatMarkdown}
	formats := make([]renderer.Format, 0, len(names))
	for _, name := range names {
		formats = append(formats, CreateRenderer(name, deps))
	}
	return formats
}

// DefaultRegistry returns a registry holding the built-in formats
func DefaultRegistry(deps *renderer.Dependencies) *format.Registry {
	if deps == nil {
		deps = renderer.NewDependencies(renderer.Dependencies{})
	}
	reg := format.NewRegistry()
	for _, f := range GetAllFormats(deps) {
		reg.Register(f.Name(), format.Descriptor{
			Description: f.Description(),
			Renderer:    f,
		})
	}
	return reg
}
